package models

import (
	"time"

	dbtypes "github.com/ayoubterari/entrecoiffeur-backend/pkg/db/types"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Coupon is a platform-wide (SellerID nil) or seller-scoped discount code.
// Codes are stored uppercase; uniqueness per scope is enforced by partial
// unique indexes in the schema.
type Coupon struct {
	ID                     uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID               *uuid.UUID               `gorm:"column:seller_id;type:uuid;index"`
	Code                   string                   `gorm:"column:code;not null;index"`
	Description            string                   `gorm:"column:description"`
	DiscountType           enums.CouponDiscountType `gorm:"column:discount_type;type:text;not null"`
	DiscountValue          decimal.Decimal          `gorm:"column:discount_value;type:numeric(12,2);not null"`
	MaximumDiscount        *decimal.Decimal         `gorm:"column:maximum_discount;type:numeric(12,2)"`
	MinimumAmount          *decimal.Decimal         `gorm:"column:minimum_amount;type:numeric(12,2)"`
	UsageLimit             *int                     `gorm:"column:usage_limit"`
	UsageLimitPerUser      *int                     `gorm:"column:usage_limit_per_user"`
	UsageCount             int                      `gorm:"column:usage_count;not null;default:0"`
	ValidFrom              time.Time                `gorm:"column:valid_from;not null"`
	ValidUntil             time.Time                `gorm:"column:valid_until;not null"`
	IsActive               bool                     `gorm:"column:is_active;not null;default:true"`
	ApplicableToAllProduct bool                     `gorm:"column:applicable_to_all_products;not null;default:true"`
	ProductIDs             dbtypes.UUIDArray        `gorm:"column:product_ids;type:uuid[];not null;default:ARRAY[]::uuid[]"`
	Categories             pq.StringArray           `gorm:"column:categories;type:text[];not null;default:ARRAY[]::text[]"`
	ApplicableToAllUsers   bool                     `gorm:"column:applicable_to_all_users;not null;default:true"`
	UserTypes              pq.StringArray           `gorm:"column:user_types;type:text[];not null;default:ARRAY[]::text[]"`
	CreatedAt              time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// CouponRedemption records one successful application of a coupon to an order.
type CouponRedemption struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CouponID       uuid.UUID       `gorm:"column:coupon_id;type:uuid;not null;index;uniqueIndex:uniq_coupon_order"`
	UserID         uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	OrderID        uuid.UUID       `gorm:"column:order_id;type:uuid;not null;uniqueIndex:uniq_coupon_order"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
