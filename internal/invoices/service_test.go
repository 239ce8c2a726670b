package invoices

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/outbox"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubDB struct{}

func (stubDB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubSequence struct {
	next int
}

func (s *stubSequence) NextInvoiceNumber(tx *gorm.DB, now time.Time) (string, error) {
	s.next++
	return fmt.Sprintf("FAC-%s-%05d", now.Format("2006"), s.next), nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubInvoiceRepo struct {
	invoices map[uuid.UUID]*models.Invoice
	orders   map[uuid.UUID]*models.Order
	sellers  map[uuid.UUID]*models.Seller
	users    map[uuid.UUID]*models.User
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{
		invoices: map[uuid.UUID]*models.Invoice{},
		orders:   map[uuid.UUID]*models.Order{},
		sellers:  map[uuid.UUID]*models.Seller{},
		users:    map[uuid.UUID]*models.User{},
	}
}

func (s *stubInvoiceRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubInvoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	s.invoices[invoice.ID] = invoice
	return nil
}

func (s *stubInvoiceRepo) Update(ctx context.Context, invoice *models.Invoice) error {
	s.invoices[invoice.ID] = invoice
	return nil
}

func (s *stubInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	return s.invoices[id], nil
}

func (s *stubInvoiceRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	for _, inv := range s.invoices {
		if inv.OrderID == orderID && inv.OriginalInvoiceID == nil {
			return inv, nil
		}
	}
	return nil, nil
}

func (s *stubInvoiceRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Invoice, error) {
	out := []models.Invoice{}
	for _, inv := range s.invoices {
		if inv.SellerID == sellerID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (s *stubInvoiceRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Invoice, error) {
	out := []models.Invoice{}
	for _, inv := range s.invoices {
		if inv.BuyerID == buyerID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (s *stubInvoiceRepo) LoadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.orders[orderID], nil
}

func (s *stubInvoiceRepo) LoadSeller(ctx context.Context, sellerID uuid.UUID) (*models.Seller, error) {
	return s.sellers[sellerID], nil
}

func (s *stubInvoiceRepo) LoadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users[userID], nil
}

type fixture struct {
	repo    *stubInvoiceRepo
	emitter *stubEmitter
	svc     Service
	order   *models.Order
	seller  *models.Seller
	buyer   *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newStubInvoiceRepo()
	emitter := &stubEmitter{}
	svc, err := NewService(ServiceParams{
		DB:       stubDB{},
		Repo:     repo,
		Sequence: &stubSequence{},
		Outbox:   emitter,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	tvaNumber := "FR12345678901"
	seller := &models.Seller{
		ID:             uuid.New(),
		ShopName:       "Salon Lumière",
		LegalName:      "Salon Lumière SARL",
		SIRET:          "12345678900011",
		TVANumber:      &tvaNumber,
		DefaultTVARate: decimal.NewFromInt(20),
	}
	buyer := &models.User{
		ID:        uuid.New(),
		Email:     "claire@example.fr",
		FirstName: "Claire",
		LastName:  "Moreau",
	}
	order := &models.Order{
		ID:            uuid.New(),
		BuyerID:       buyer.ID,
		SellerID:      seller.ID,
		Status:        enums.OrderStatusDelivered,
		PaymentStatus: enums.PaymentStatusPaid,
		Subtotal:      decimal.RequireFromString("120.00"),
		ShippingFee:   decimal.Zero,
		Total:         decimal.RequireFromString("120.00"),
		Items: []models.OrderItem{
			{
				ProductID: uuid.New(),
				Name:      "Shampooing réparateur",
				Category:  "soins",
				UnitTTC:   decimal.RequireFromString("60.00"),
				Quantity:  2,
				TotalTTC:  decimal.RequireFromString("120.00"),
			},
		},
	}

	repo.sellers[seller.ID] = seller
	repo.users[buyer.ID] = buyer
	repo.orders[order.ID] = order

	return &fixture{repo: repo, emitter: emitter, svc: svc, order: order, seller: seller, buyer: buyer}
}

func TestGenerateSplitsTTCIntoHTAndTVA(t *testing.T) {
	f := newFixture(t)

	invoice, err := f.svc.GenerateFromOrder(context.Background(), f.order.ID, GenerateOptions{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if invoice.TotalHT.String() != "100" {
		t.Fatalf("expected 100 HT from 120 TTC at 20%%, got %s", invoice.TotalHT)
	}
	if invoice.TotalTVA.String() != "20" {
		t.Fatalf("expected 20 TVA, got %s", invoice.TotalTVA)
	}
	if !invoice.TotalTTC.Equal(f.order.Total) {
		t.Fatalf("TTC must carry the order total, got %s", invoice.TotalTTC)
	}
	if invoice.Status != enums.InvoiceStatusIssued {
		t.Fatalf("paid order must yield an issued invoice, got %s", invoice.Status)
	}
	if !strings.HasPrefix(invoice.Number, "FAC-") {
		t.Fatalf("unexpected number %q", invoice.Number)
	}
	if len(invoice.TVABreakdown) != 1 || !invoice.TVABreakdown[0].Rate.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected single 20%% breakdown entry, got %+v", invoice.TVABreakdown)
	}
	if len(f.emitter.events) != 1 || f.emitter.events[0].EventType != enums.EventInvoiceIssued {
		t.Fatalf("expected invoice_issued event, got %+v", f.emitter.events)
	}
}

func TestGenerateLineDriftStaysUnderACent(t *testing.T) {
	f := newFixture(t)
	f.order.Items = []models.OrderItem{
		{
			Name:     "Sérum",
			UnitTTC:  decimal.RequireFromString("19.99"),
			Quantity: 1,
			TotalTTC: decimal.RequireFromString("19.99"),
		},
		{
			Name:     "Peigne",
			UnitTTC:  decimal.RequireFromString("7.01"),
			Quantity: 1,
			TotalTTC: decimal.RequireFromString("7.01"),
		},
	}
	f.order.Total = decimal.RequireFromString("27.00")
	f.order.Subtotal = decimal.RequireFromString("27.00")

	invoice, err := f.svc.GenerateFromOrder(context.Background(), f.order.ID, GenerateOptions{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	cent := decimal.RequireFromString("0.01")
	for _, line := range invoice.Lines {
		drift := line.TotalHT.Add(line.TVAAmount).Sub(line.TotalTTC).Abs()
		if drift.GreaterThan(cent) {
			t.Fatalf("line %q drifts by %s", line.Description, drift)
		}
	}
	if !invoice.TotalTTC.Equal(f.order.Total) {
		t.Fatalf("order total must be trusted, got %s", invoice.TotalTTC)
	}
}

func TestGenerateIncludesShippingAndDiscountComponents(t *testing.T) {
	f := newFixture(t)
	code := "SAVE10"
	f.order.ShippingFee = decimal.RequireFromString("4.90")
	f.order.DiscountAmount = decimal.RequireFromString("5.00")
	f.order.CouponCode = &code
	f.order.Total = decimal.RequireFromString("119.90")

	invoice, err := f.svc.GenerateFromOrder(context.Background(), f.order.ID, GenerateOptions{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(invoice.Lines) != 3 {
		t.Fatalf("expected item+shipping+discount lines, got %d", len(invoice.Lines))
	}
	if !invoice.ShippingHT.Equal(decimal.RequireFromString("4.08")) {
		t.Fatalf("expected shipping HT 4.08, got %s", invoice.ShippingHT)
	}
	if !invoice.DiscountHT.Equal(decimal.RequireFromString("4.17")) {
		t.Fatalf("expected discount HT 4.17, got %s", invoice.DiscountHT)
	}
	discountLine := invoice.Lines[2]
	if !strings.Contains(discountLine.Description, "SAVE10") {
		t.Fatalf("discount line should name the coupon, got %q", discountLine.Description)
	}
	if !discountLine.TotalTTC.IsNegative() {
		t.Fatal("discount line must be negative on the document")
	}

	// totalHT = subtotalHT + shippingHT − discountHT
	expectedHT := invoice.SubtotalHT.Add(invoice.ShippingHT).Sub(invoice.DiscountHT)
	if !invoice.TotalHT.Equal(expectedHT) {
		t.Fatalf("expected total HT %s, got %s", expectedHT, invoice.TotalHT)
	}
}

func TestGenerateDraftWhenUnpaid(t *testing.T) {
	f := newFixture(t)
	f.order.PaymentStatus = enums.PaymentStatusPending

	invoice, err := f.svc.GenerateFromOrder(context.Background(), f.order.ID, GenerateOptions{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if invoice.Status != enums.InvoiceStatusDraft {
		t.Fatalf("unpaid order must yield a draft, got %s", invoice.Status)
	}
	if len(f.emitter.events) != 0 {
		t.Fatal("draft generation must not emit invoice_issued")
	}
}

func TestGenerateRejectsSecondInvoice(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.GenerateFromOrder(context.Background(), f.order.ID, GenerateOptions{}); err != nil {
		t.Fatalf("first generate: %v", err)
	}
	_, err := f.svc.GenerateFromOrder(context.Background(), f.order.ID, GenerateOptions{})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGenerateMicroEntrepriseMention(t *testing.T) {
	f := newFixture(t)
	f.seller.TVANumber = nil

	invoice, err := f.svc.GenerateFromOrder(context.Background(), f.order.ID, GenerateOptions{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if invoice.LegalMentions != "TVA non applicable, art. 293 B du CGI" {
		t.Fatalf("expected micro-entreprise mention, got %q", invoice.LegalMentions)
	}
}

func TestGenerateUnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GenerateFromOrder(context.Background(), uuid.New(), GenerateOptions{})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStatusFollowsLattice(t *testing.T) {
	f := newFixture(t)
	f.order.PaymentStatus = enums.PaymentStatusPending

	invoice, err := f.svc.GenerateFromOrder(context.Background(), f.order.ID, GenerateOptions{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	updated, err := f.svc.UpdateStatus(context.Background(), invoice.ID, enums.InvoiceStatusIssued)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if updated.Status != enums.InvoiceStatusIssued {
		t.Fatalf("expected issued, got %s", updated.Status)
	}
	if len(f.emitter.events) != 1 || f.emitter.events[0].EventType != enums.EventInvoiceIssued {
		t.Fatalf("expected invoice_issued on draft→issued, got %+v", f.emitter.events)
	}

	if _, err := f.svc.UpdateStatus(context.Background(), invoice.ID, enums.InvoiceStatusDraft); pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict moving backward, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), invoice.ID, enums.InvoiceStatusCredited); pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("credited must never be a direct target, got %v", err)
	}
}

func TestCreateCreditNoteNegatesEverything(t *testing.T) {
	f := newFixture(t)
	f.order.ShippingFee = decimal.RequireFromString("4.90")
	f.order.Total = decimal.RequireFromString("124.90")

	invoice, err := f.svc.GenerateFromOrder(context.Background(), f.order.ID, GenerateOptions{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	credit, err := f.svc.CreateCreditNote(context.Background(), invoice.ID)
	if err != nil {
		t.Fatalf("credit note: %v", err)
	}

	if !credit.TotalTTC.Equal(invoice.TotalTTC.Neg()) {
		t.Fatalf("expected negated TTC, got %s", credit.TotalTTC)
	}
	if !credit.TotalHT.Equal(invoice.TotalHT.Neg()) || !credit.TotalTVA.Equal(invoice.TotalTVA.Neg()) {
		t.Fatal("expected negated HT and TVA totals")
	}
	for i, line := range credit.Lines {
		if !line.TotalTTC.Equal(invoice.Lines[i].TotalTTC.Neg()) {
			t.Fatalf("line %d not negated", i)
		}
	}
	for i, entry := range credit.TVABreakdown {
		if !entry.Amount.Equal(invoice.TVABreakdown[i].Amount.Neg()) {
			t.Fatalf("breakdown entry %d not negated", i)
		}
	}
	if credit.Number == invoice.Number {
		t.Fatal("credit note must take a fresh number")
	}
	if credit.OriginalInvoiceID == nil || *credit.OriginalInvoiceID != invoice.ID {
		t.Fatal("credit note must reference its original")
	}

	original := f.repo.invoices[invoice.ID]
	if original.Status != enums.InvoiceStatusCredited {
		t.Fatalf("original must be forced to credited, got %s", original.Status)
	}
	if original.CreditNoteID == nil || *original.CreditNoteID != credit.ID {
		t.Fatal("original must reference its credit note")
	}

	// Second credit attempt conflicts.
	if _, err := f.svc.CreateCreditNote(context.Background(), invoice.ID); pkgerrors.CodeOf(err) != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on double credit, got %v", err)
	}
}

func TestCreateCreditNoteRejectsCancelled(t *testing.T) {
	f := newFixture(t)
	f.order.PaymentStatus = enums.PaymentStatusPending

	invoice, err := f.svc.GenerateFromOrder(context.Background(), f.order.ID, GenerateOptions{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	f.repo.invoices[invoice.ID].Status = enums.InvoiceStatusCancelled

	_, err = f.svc.CreateCreditNote(context.Background(), invoice.ID)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
