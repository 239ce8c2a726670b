package invoices

import (
	"context"
	"fmt"
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/outbox"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Legal mention appended for micro-entreprise sellers without a TVA number.
const mentionTVANonApplicable = "TVA non applicable, art. 293 B du CGI"

var (
	oneHundred      = decimal.NewFromInt(100)
	fallbackTVARate = decimal.NewFromInt(20)
)

// GenerateOptions tunes invoice generation. A nil TVARate falls back to the
// seller's default rate, then to the platform default.
type GenerateOptions struct {
	TVARate *decimal.Decimal
}

type dbClient interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type sequenceService interface {
	NextInvoiceNumber(tx *gorm.DB, now time.Time) (string, error)
}

// Service generates and manages legal invoices for orders.
type Service interface {
	GenerateFromOrder(ctx context.Context, orderID uuid.UUID, opts GenerateOptions) (*models.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Invoice, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next enums.InvoiceStatus) (*models.Invoice, error)
	CreateCreditNote(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error)
}

// ServiceParams carries invoice service dependencies.
type ServiceParams struct {
	DB       dbClient
	Repo     Repository
	Sequence sequenceService
	Outbox   eventEmitter
}

type service struct {
	db     dbClient
	repo   Repository
	seq    sequenceService
	events eventEmitter
	now    func() time.Time
}

// NewService wires invoice dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "invoice repository required")
	}
	if params.Sequence == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sequence service required")
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		seq:    params.Sequence,
		events: params.Outbox,
		now:    time.Now,
	}, nil
}

// GenerateFromOrder freezes an order into its invoice. Stored order amounts
// are TTC; HT is derived per component and the order total is carried over
// untouched, so any rounding drift between HT+TVA and TTC stays visible.
func (s *service) GenerateFromOrder(ctx context.Context, orderID uuid.UUID, opts GenerateOptions) (*models.Invoice, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var invoice *models.Invoice
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.GetByOrderID(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing invoice")
		}
		if existing != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already has an invoice")
		}

		order, err := repo.LoadOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}

		seller, err := repo.LoadSeller(ctx, order.SellerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
		}
		if seller == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}

		buyer, err := repo.LoadUser(ctx, order.BuyerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer")
		}
		if buyer == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}

		now := s.now().UTC()
		number, err := s.seq.NextInvoiceNumber(tx, now)
		if err != nil {
			return err
		}

		rate := resolveRate(opts, seller)
		invoice = buildInvoice(order, seller, buyer, number, rate, now)

		if err := repo.Create(ctx, invoice); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
		}
		if invoice.Status == enums.InvoiceStatusIssued {
			return s.emitIssued(ctx, tx, invoice)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func resolveRate(opts GenerateOptions, seller *models.Seller) decimal.Decimal {
	if opts.TVARate != nil {
		return *opts.TVARate
	}
	if seller.DefaultTVARate.IsPositive() {
		return seller.DefaultTVARate
	}
	return fallbackTVARate
}

// htOf derives the HT amount of a TTC component at the given rate, rounded
// half-up to the cent.
func htOf(ttc, rate decimal.Decimal) decimal.Decimal {
	divisor := decimal.NewFromInt(1).Add(rate.Div(oneHundred))
	return ttc.Div(divisor).Round(2)
}

func buildInvoice(order *models.Order, seller *models.Seller, buyer *models.User, number string, rate decimal.Decimal, now time.Time) *models.Invoice {
	lines := make([]types.InvoiceLine, 0, len(order.Items)+2)

	subtotalHT := decimal.Zero
	subtotalTVA := decimal.Zero
	for _, item := range order.Items {
		ht := htOf(item.TotalTTC, rate)
		tva := item.TotalTTC.Sub(ht)
		lines = append(lines, types.InvoiceLine{
			Description: item.Name,
			Category:    item.Category,
			Quantity:    item.Quantity,
			UnitTTC:     item.UnitTTC,
			TVARate:     rate,
			TotalTTC:    item.TotalTTC,
			TotalHT:     ht,
			TVAAmount:   tva,
		})
		subtotalHT = subtotalHT.Add(ht)
		subtotalTVA = subtotalTVA.Add(tva)
	}

	shippingHT := decimal.Zero
	shippingTVA := decimal.Zero
	if order.ShippingFee.IsPositive() {
		shippingHT = htOf(order.ShippingFee, rate)
		shippingTVA = order.ShippingFee.Sub(shippingHT)
		lines = append(lines, types.InvoiceLine{
			Description: "Frais de livraison",
			Quantity:    1,
			UnitTTC:     order.ShippingFee,
			TVARate:     rate,
			TotalTTC:    order.ShippingFee,
			TotalHT:     shippingHT,
			TVAAmount:   shippingTVA,
		})
	}

	// Discount is held sign-positive; it reduces the totals.
	discountHT := decimal.Zero
	discountTVA := decimal.Zero
	discount := order.DiscountAmount.Abs()
	if discount.IsPositive() {
		discountHT = htOf(discount, rate)
		discountTVA = discount.Sub(discountHT)
		description := "Remise"
		if order.CouponCode != nil {
			description = fmt.Sprintf("Remise (code %s)", *order.CouponCode)
		}
		lines = append(lines, types.InvoiceLine{
			Description: description,
			Quantity:    1,
			UnitTTC:     discount.Neg(),
			TVARate:     rate,
			TotalTTC:    discount.Neg(),
			TotalHT:     discountHT.Neg(),
			TVAAmount:   discountTVA.Neg(),
		})
	}

	totalHT := subtotalHT.Add(shippingHT).Sub(discountHT)
	totalTVA := subtotalTVA.Add(shippingTVA).Sub(discountTVA)

	status := enums.InvoiceStatusDraft
	if order.PaymentStatus == enums.PaymentStatusPaid {
		status = enums.InvoiceStatusIssued
	}

	legalMentions := ""
	if seller.TVANumber == nil {
		legalMentions = mentionTVANonApplicable
	}

	return &models.Invoice{
		ID:       uuid.New(),
		Number:   number,
		OrderID:  order.ID,
		SellerID: seller.ID,
		BuyerID:  buyer.ID,
		Seller:   sellerSnapshot(seller),
		Buyer:    buyerSnapshot(buyer, order),
		Lines:    lines,
		TVABreakdown: []types.TVABreakdownEntry{
			{Rate: rate, BaseHT: totalHT, Amount: totalTVA},
		},
		SubtotalHT:    subtotalHT,
		ShippingHT:    shippingHT,
		ShippingTVA:   shippingTVA,
		DiscountHT:    discountHT,
		DiscountTVA:   discountTVA,
		TotalHT:       totalHT,
		TotalTVA:      totalTVA,
		TotalTTC:      order.Total,
		Status:        status,
		LegalMentions: legalMentions,
		IssuedAt:      now,
	}
}

func sellerSnapshot(seller *models.Seller) types.PartySnapshot {
	snapshot := types.PartySnapshot{
		Name:      seller.ShopName,
		LegalName: seller.LegalName,
		SIRET:     seller.SIRET,
		Address:   seller.Address,
	}
	if seller.TVANumber != nil {
		snapshot.TVANumber = *seller.TVANumber
	}
	return snapshot
}

func buyerSnapshot(buyer *models.User, order *models.Order) types.PartySnapshot {
	return types.PartySnapshot{
		Name:    fmt.Sprintf("%s %s", buyer.FirstName, buyer.LastName),
		Email:   buyer.Email,
		Address: order.BillingAddress,
	}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	if invoice == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
	}
	return invoice, nil
}

func (s *service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	if invoice == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
	}
	return invoice, nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Invoice, error) {
	invoices, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}
	return invoices, nil
}

func (s *service) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Invoice, error) {
	invoices, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}
	return invoices, nil
}

// UpdateStatus moves an invoice along the one-way status lattice. The
// credited state is never a direct target; it is set by CreateCreditNote.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.InvoiceStatus) (*models.Invoice, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid invoice status")
	}

	var invoice *models.Invoice
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		if current == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		if !current.Status.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move invoice from %s to %s", current.Status, next))
		}

		current.Status = next
		if err := repo.Update(ctx, current); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update invoice")
		}
		invoice = current

		if next == enums.InvoiceStatusIssued {
			return s.emitIssued(ctx, tx, current)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// CreateCreditNote issues a full negated copy of the invoice under a fresh
// number, links both documents and pins the original to credited.
func (s *service) CreateCreditNote(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error) {
	if invoiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}

	var credit *models.Invoice
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		original, err := repo.GetByID(ctx, invoiceID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		if original == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		if original.Status == enums.InvoiceStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled invoice cannot be credited")
		}
		if original.Status == enums.InvoiceStatusCredited || original.CreditNoteID != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "invoice already credited")
		}

		now := s.now().UTC()
		number, err := s.seq.NextInvoiceNumber(tx, now)
		if err != nil {
			return err
		}

		credit = negatedCopy(original, number, now)
		if err := repo.Create(ctx, credit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create credit note")
		}

		original.Status = enums.InvoiceStatusCredited
		original.CreditNoteID = &credit.ID
		if err := repo.Update(ctx, original); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark invoice credited")
		}

		if s.events != nil {
			return s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventCreditNoteCreated,
				AggregateType: enums.AggregateInvoice,
				AggregateID:   credit.ID,
				Data: map[string]any{
					"number":              credit.Number,
					"original_invoice_id": original.ID.String(),
					"order_id":            credit.OrderID.String(),
					"total_ttc":           credit.TotalTTC.String(),
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return credit, nil
}

func negatedCopy(original *models.Invoice, number string, now time.Time) *models.Invoice {
	lines := make([]types.InvoiceLine, len(original.Lines))
	for i, line := range original.Lines {
		negated := line
		negated.UnitTTC = line.UnitTTC.Neg()
		negated.TotalTTC = line.TotalTTC.Neg()
		negated.TotalHT = line.TotalHT.Neg()
		negated.TVAAmount = line.TVAAmount.Neg()
		lines[i] = negated
	}

	breakdown := make([]types.TVABreakdownEntry, len(original.TVABreakdown))
	for i, entry := range original.TVABreakdown {
		breakdown[i] = types.TVABreakdownEntry{
			Rate:   entry.Rate,
			BaseHT: entry.BaseHT.Neg(),
			Amount: entry.Amount.Neg(),
		}
	}

	return &models.Invoice{
		ID:                uuid.New(),
		Number:            number,
		OrderID:           original.OrderID,
		SellerID:          original.SellerID,
		BuyerID:           original.BuyerID,
		Seller:            original.Seller,
		Buyer:             original.Buyer,
		Lines:             lines,
		TVABreakdown:      breakdown,
		SubtotalHT:        original.SubtotalHT.Neg(),
		ShippingHT:        original.ShippingHT.Neg(),
		ShippingTVA:       original.ShippingTVA.Neg(),
		DiscountHT:        original.DiscountHT.Neg(),
		DiscountTVA:       original.DiscountTVA.Neg(),
		TotalHT:           original.TotalHT.Neg(),
		TotalTVA:          original.TotalTVA.Neg(),
		TotalTTC:          original.TotalTTC.Neg(),
		Status:            enums.InvoiceStatusIssued,
		LegalMentions:     original.LegalMentions,
		OriginalInvoiceID: &original.ID,
		IssuedAt:          now,
	}
}

func (s *service) emitIssued(ctx context.Context, tx *gorm.DB, invoice *models.Invoice) error {
	if s.events == nil {
		return nil
	}
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventInvoiceIssued,
		AggregateType: enums.AggregateInvoice,
		AggregateID:   invoice.ID,
		Data: map[string]any{
			"number":    invoice.Number,
			"order_id":  invoice.OrderID.String(),
			"seller_id": invoice.SellerID.String(),
			"total_ttc": invoice.TotalTTC.String(),
		},
	})
}
