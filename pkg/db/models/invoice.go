package models

import (
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is the legal billing document generated from a paid or completed
// order. All identity and monetary data is frozen at generation time; a
// credit note is a full negated copy linked back to its original.
type Invoice struct {
	ID                uuid.UUID                 `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Number            string                    `gorm:"column:number;not null;uniqueIndex"`
	// One invoice per order is enforced by a partial unique index in the
	// schema (credit notes reuse the order_id of their original).
	OrderID           uuid.UUID                 `gorm:"column:order_id;type:uuid;not null;index"`
	SellerID          uuid.UUID                 `gorm:"column:seller_id;type:uuid;not null;index"`
	BuyerID           uuid.UUID                 `gorm:"column:buyer_id;type:uuid;not null;index"`
	Seller            types.PartySnapshot       `gorm:"column:seller_snapshot;type:jsonb;serializer:json"`
	Buyer             types.PartySnapshot       `gorm:"column:buyer_snapshot;type:jsonb;serializer:json"`
	Lines             []types.InvoiceLine       `gorm:"column:lines;type:jsonb;serializer:json"`
	TVABreakdown      []types.TVABreakdownEntry `gorm:"column:tva_breakdown;type:jsonb;serializer:json"`
	SubtotalHT        decimal.Decimal           `gorm:"column:subtotal_ht;type:numeric(12,2);not null"`
	ShippingHT        decimal.Decimal           `gorm:"column:shipping_ht;type:numeric(12,2);not null;default:0"`
	ShippingTVA       decimal.Decimal           `gorm:"column:shipping_tva;type:numeric(12,2);not null;default:0"`
	DiscountHT        decimal.Decimal           `gorm:"column:discount_ht;type:numeric(12,2);not null;default:0"`
	DiscountTVA       decimal.Decimal           `gorm:"column:discount_tva;type:numeric(12,2);not null;default:0"`
	TotalHT           decimal.Decimal           `gorm:"column:total_ht;type:numeric(12,2);not null"`
	TotalTVA          decimal.Decimal           `gorm:"column:total_tva;type:numeric(12,2);not null"`
	TotalTTC          decimal.Decimal           `gorm:"column:total_ttc;type:numeric(12,2);not null"`
	Status            enums.InvoiceStatus       `gorm:"column:status;type:text;not null;default:'draft'"`
	LegalMentions     string                    `gorm:"column:legal_mentions"`
	OriginalInvoiceID *uuid.UUID                `gorm:"column:original_invoice_id;type:uuid"`
	CreditNoteID      *uuid.UUID                `gorm:"column:credit_note_id;type:uuid"`
	IssuedAt          time.Time                 `gorm:"column:issued_at;not null"`
	CreatedAt         time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

// DocumentCounter backs gapless per-scope sequences (invoice numbers per
// year, ticket numbers per day) via atomic upsert-increment.
type DocumentCounter struct {
	Scope     string    `gorm:"column:scope;primaryKey"`
	Period    string    `gorm:"column:period;primaryKey"`
	Value     int64     `gorm:"column:value;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
