package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry sold by a seller. PriceTTC is the public price
// including tax.
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID  uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;index"`
	Name      string          `gorm:"column:name;not null"`
	Category  string          `gorm:"column:category;not null;index"`
	PriceTTC  decimal.Decimal `gorm:"column:price_ttc;type:numeric(12,2);not null"`
	TVARate   decimal.Decimal `gorm:"column:tva_rate;type:numeric(5,2);not null;default:20"`
	Stock     int             `gorm:"column:stock;not null;default:0"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
