package models

import (
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Seller is a professional shop on the marketplace. A nil TVANumber marks a
// micro-entreprise, which changes the legal mentions on its invoices.
type Seller struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	ShopName       string          `gorm:"column:shop_name;not null"`
	LegalName      string          `gorm:"column:legal_name;not null"`
	SIRET          string          `gorm:"column:siret;not null"`
	TVANumber      *string         `gorm:"column:tva_number"`
	Address        types.Address   `gorm:"column:address;type:jsonb;serializer:json"`
	DefaultTVARate decimal.Decimal `gorm:"column:default_tva_rate;type:numeric(5,2);not null;default:20"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
