package models

import (
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a buyer's purchase from a single seller. Monetary fields are TTC
// and immutable after creation; only the two status columns move.
type Order struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID         uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null;index"`
	SellerID        uuid.UUID           `gorm:"column:seller_id;type:uuid;not null;index"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	Subtotal        decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	ShippingFee     decimal.Decimal     `gorm:"column:shipping_fee;type:numeric(12,2);not null;default:0"`
	DiscountAmount  decimal.Decimal     `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	TaxAmount       decimal.Decimal     `gorm:"column:tax_amount;type:numeric(12,2);not null;default:0"`
	Total           decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	CouponCode      *string             `gorm:"column:coupon_code"`
	AffiliateCode   *string             `gorm:"column:affiliate_code"`
	BillingAddress  types.Address       `gorm:"column:billing_address;type:jsonb;serializer:json"`
	ShippingAddress *types.Address      `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	DeliveredAt     *time.Time          `gorm:"column:delivered_at"`
	CancelledAt     *time.Time          `gorm:"column:cancelled_at"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem snapshots one product line at purchase time.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	Category  string          `gorm:"column:category;not null"`
	UnitTTC   decimal.Decimal `gorm:"column:unit_ttc;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	TotalTTC  decimal.Decimal `gorm:"column:total_ttc;type:numeric(12,2);not null"`
	TVARate   decimal.Decimal `gorm:"column:tva_rate;type:numeric(5,2);not null;default:20"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
