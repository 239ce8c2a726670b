package models

import (
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AffiliateLink ties an affiliate user to a seller shop through a shareable
// code. One link per (affiliate, seller) pair.
type AffiliateLink struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AffiliateID      uuid.UUID       `gorm:"column:affiliate_id;type:uuid;not null;uniqueIndex:uniq_affiliate_seller"`
	SellerID         uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;uniqueIndex:uniq_affiliate_seller"`
	Code             string          `gorm:"column:code;not null;uniqueIndex"`
	ClicksCount      int64           `gorm:"column:clicks_count;not null;default:0"`
	ConversionsCount int64           `gorm:"column:conversions_count;not null;default:0"`
	TotalEarnings    decimal.Decimal `gorm:"column:total_earnings;type:numeric(12,2);not null;default:0"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// AffiliateClick records one visit through an affiliate link.
type AffiliateClick struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	LinkID    uuid.UUID `gorm:"column:link_id;type:uuid;not null;index"`
	Converted bool      `gorm:"column:converted;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// AffiliateEarning is the points grant produced by a converted order. The
// unique (order, affiliate) pair makes order processing idempotent.
type AffiliateEarning struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex:uniq_order_affiliate"`
	AffiliateID uuid.UUID           `gorm:"column:affiliate_id;type:uuid;not null;uniqueIndex:uniq_order_affiliate"`
	LinkID      uuid.UUID           `gorm:"column:link_id;type:uuid;not null;index"`
	Points      int64               `gorm:"column:points;not null"`
	Status      enums.EarningStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ConfirmedAt *time.Time          `gorm:"column:confirmed_at"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// AffiliateBalance is the per-user points wallet.
type AffiliateBalance struct {
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	PendingPoints int64     `gorm:"column:pending_points;not null;default:0"`
	TotalPoints   int64     `gorm:"column:total_points;not null;default:0"`
	TotalEarned   int64     `gorm:"column:total_earned;not null;default:0"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// PointTransaction is the append-only audit trail of balance movements.
type PointTransaction struct {
	ID           uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID                  `gorm:"column:user_id;type:uuid;not null;index"`
	EarningID    *uuid.UUID                 `gorm:"column:earning_id;type:uuid"`
	Type         enums.PointTransactionType `gorm:"column:type;type:text;not null"`
	Delta        int64                      `gorm:"column:delta;not null"`
	BalanceAfter int64                      `gorm:"column:balance_after;not null"`
	CreatedAt    time.Time                  `gorm:"column:created_at;autoCreateTime"`
}
