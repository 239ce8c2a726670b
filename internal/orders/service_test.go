package orders

import (
	"context"
	"testing"

	"github.com/ayoubterari/entrecoiffeur-backend/internal/coupons"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/invoices"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/notifications"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/products"
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

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubEmitter) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	for _, existing := range s.events {
		if existing.EventType == event.EventType && existing.AggregateID == event.AggregateID {
			return nil
		}
	}
	s.events = append(s.events, event)
	return nil
}

type stubOrderRepo struct {
	orders map[uuid.UUID]*models.Order
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) error {
	s.orders[order.ID] = order
	return nil
}

func (s *stubOrderRepo) Save(ctx context.Context, order *models.Order) error {
	s.orders[order.ID] = order
	return nil
}

func (s *stubOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.orders[id], nil
}

func (s *stubOrderRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit int) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.Order, error) {
	return nil, nil
}

type stubProductRepo struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductRepo) WithTx(tx *gorm.DB) products.Repository { return s }

func (s *stubProductRepo) Create(ctx context.Context, product *models.Product) error { return nil }
func (s *stubProductRepo) Update(ctx context.Context, product *models.Product) error { return nil }

func (s *stubProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.products[id], nil
}

func (s *stubProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	out := []models.Product{}
	for _, id := range ids {
		if product, ok := s.products[id]; ok {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (s *stubProductRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, activeOnly bool) ([]models.Product, error) {
	return nil, nil
}

func (s *stubProductRepo) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	product := s.products[id]
	if product.Stock < quantity {
		return false, nil
	}
	product.Stock -= quantity
	return true, nil
}

type stubCoupons struct {
	result *coupons.Validation
	calls  []coupons.ApplyInput
}

func (s *stubCoupons) Validate(ctx context.Context, input coupons.ValidateInput) (*coupons.Validation, error) {
	return s.result, nil
}

func (s *stubCoupons) Apply(ctx context.Context, tx *gorm.DB, input coupons.ApplyInput) (*coupons.Validation, error) {
	s.calls = append(s.calls, input)
	return s.result, nil
}

func (s *stubCoupons) Create(ctx context.Context, input coupons.CreateInput) (*models.Coupon, error) {
	return nil, nil
}

func (s *stubCoupons) Update(ctx context.Context, id uuid.UUID, input coupons.CreateInput) (*models.Coupon, error) {
	return nil, nil
}

func (s *stubCoupons) Deactivate(ctx context.Context, id uuid.UUID, actorSellerID *uuid.UUID) error {
	return nil
}

func (s *stubCoupons) List(ctx context.Context, sellerID *uuid.UUID) ([]models.Coupon, error) {
	return nil, nil
}

type stubAffiliates struct {
	processed []uuid.UUID
	confirmed []uuid.UUID
}

func (s *stubAffiliates) CreateLink(ctx context.Context, affiliateID, sellerID uuid.UUID) (*models.AffiliateLink, error) {
	return nil, nil
}

func (s *stubAffiliates) ListLinks(ctx context.Context, affiliateID uuid.UUID) ([]models.AffiliateLink, error) {
	return nil, nil
}

func (s *stubAffiliates) RecordClick(ctx context.Context, code string) (*models.AffiliateLink, error) {
	return nil, nil
}

func (s *stubAffiliates) ProcessOrder(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.AffiliateEarning, error) {
	s.processed = append(s.processed, order.ID)
	return nil, nil
}

func (s *stubAffiliates) ConfirmForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	s.confirmed = append(s.confirmed, orderID)
	return nil
}

func (s *stubAffiliates) Balance(ctx context.Context, userID uuid.UUID) (*models.AffiliateBalance, error) {
	return nil, nil
}

func (s *stubAffiliates) Transactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.PointTransaction, error) {
	return nil, nil
}

type stubInvoices struct {
	generated []uuid.UUID
	err       error
}

func (s *stubInvoices) GenerateFromOrder(ctx context.Context, orderID uuid.UUID, opts invoices.GenerateOptions) (*models.Invoice, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, existing := range s.generated {
		if existing == orderID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "invoice already exists for order")
		}
	}
	s.generated = append(s.generated, orderID)
	return &models.Invoice{OrderID: orderID}, nil
}

func (s *stubInvoices) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	return nil, nil
}

func (s *stubInvoices) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	return nil, nil
}

func (s *stubInvoices) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Invoice, error) {
	return nil, nil
}

func (s *stubInvoices) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Invoice, error) {
	return nil, nil
}

func (s *stubInvoices) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.InvoiceStatus) (*models.Invoice, error) {
	return nil, nil
}

func (s *stubInvoices) CreateCreditNote(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error) {
	return nil, nil
}

type stubNotify struct {
	sent []notifications.NotifyInput
}

func (s *stubNotify) Notify(ctx context.Context, tx *gorm.DB, input notifications.NotifyInput) error {
	s.sent = append(s.sent, input)
	return nil
}

func (s *stubNotify) List(ctx context.Context, input notifications.ListInput) (*notifications.Page, error) {
	return nil, nil
}

func (s *stubNotify) MarkRead(ctx context.Context, userID, id uuid.UUID) error { return nil }

func (s *stubNotify) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

type orderFixture struct {
	svc        Service
	repo       *stubOrderRepo
	productsDB *stubProductRepo
	coupons    *stubCoupons
	affiliates *stubAffiliates
	invoices   *stubInvoices
	notify     *stubNotify
	emitter    *stubEmitter
	product    *models.Product
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	product := &models.Product{
		ID:       uuid.New(),
		SellerID: uuid.New(),
		Name:     "Shampooing réparateur",
		Category: "soins",
		PriceTTC: decimal.RequireFromString("24.90"),
		TVARate:  decimal.NewFromInt(20),
		Stock:    10,
		IsActive: true,
	}

	f := &orderFixture{
		repo:       &stubOrderRepo{orders: map[uuid.UUID]*models.Order{}},
		productsDB: &stubProductRepo{products: map[uuid.UUID]*models.Product{product.ID: product}},
		coupons:    &stubCoupons{result: &coupons.Validation{Valid: true, DiscountAmount: decimal.RequireFromString("5.00")}},
		affiliates: &stubAffiliates{},
		invoices:   &stubInvoices{},
		notify:     &stubNotify{},
		emitter:    &stubEmitter{},
		product:    product,
	}

	svc, err := NewService(ServiceParams{
		DB:            stubDB{},
		Repo:          f.repo,
		Products:      f.productsDB,
		Coupons:       f.coupons,
		Affiliates:    f.affiliates,
		Invoices:      f.invoices,
		Notifications: f.notify,
		Outbox:        f.emitter,
		ShippingFee:   decimal.RequireFromString("4.90"),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func (f *orderFixture) createInput() CreateInput {
	return CreateInput{
		BuyerID:   uuid.New(),
		BuyerType: enums.AccountTypeBuyer,
		Items:     []ItemInput{{ProductID: f.product.ID, Quantity: 2}},
	}
}

func TestCreateOrderSnapshotsAndTotals(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if order.SellerID != f.product.SellerID {
		t.Fatal("order must carry the product's seller")
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(order.Items))
	}
	item := order.Items[0]
	if item.Name != f.product.Name || !item.UnitTTC.Equal(f.product.PriceTTC) || item.Quantity != 2 {
		t.Fatalf("bad snapshot %+v", item)
	}
	if !order.Subtotal.Equal(decimal.RequireFromString("49.80")) {
		t.Fatalf("expected subtotal 49.80, got %s", order.Subtotal)
	}
	if !order.Total.Equal(decimal.RequireFromString("54.70")) {
		t.Fatalf("expected total 54.70 with flat shipping, got %s", order.Total)
	}
	if f.product.Stock != 8 {
		t.Fatalf("expected stock reserved, got %d", f.product.Stock)
	}
	if order.Status != enums.OrderStatusPending || order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("unexpected initial statuses %s/%s", order.Status, order.PaymentStatus)
	}

	if len(f.affiliates.processed) != 1 {
		t.Fatal("affiliate processing must run at checkout")
	}
	if len(f.emitter.events) != 1 || f.emitter.events[0].EventType != enums.EventOrderCreated {
		t.Fatalf("expected order_created event, got %+v", f.emitter.events)
	}
}

func TestCreateOrderAppliesCoupon(t *testing.T) {
	f := newOrderFixture(t)
	input := f.createInput()
	code := "save10"
	input.CouponCode = &code

	order, err := f.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(f.coupons.calls) != 1 {
		t.Fatal("coupon apply must run inside checkout")
	}
	if !order.DiscountAmount.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("expected discount 5.00, got %s", order.DiscountAmount)
	}
	// 49.80 + 4.90 − 5.00
	if !order.Total.Equal(decimal.RequireFromString("49.70")) {
		t.Fatalf("expected total 49.70, got %s", order.Total)
	}
	if order.CouponCode == nil || *order.CouponCode != "SAVE10" {
		t.Fatalf("expected uppercased coupon code, got %v", order.CouponCode)
	}
}

func TestCreateOrderRejectedCoupon(t *testing.T) {
	f := newOrderFixture(t)
	f.coupons.result = &coupons.Validation{Valid: false, Reason: coupons.ReasonExpired}
	input := f.createInput()
	code := "OLD"
	input.CouponCode = &code

	_, err := f.svc.Create(context.Background(), input)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateOrderMixedSellers(t *testing.T) {
	f := newOrderFixture(t)
	other := &models.Product{
		ID:       uuid.New(),
		SellerID: uuid.New(),
		Name:     "Peigne",
		PriceTTC: decimal.NewFromInt(5),
		TVARate:  decimal.NewFromInt(20),
		Stock:    5,
		IsActive: true,
	}
	f.productsDB.products[other.ID] = other

	input := f.createInput()
	input.Items = append(input.Items, ItemInput{ProductID: other.ID, Quantity: 1})

	_, err := f.svc.Create(context.Background(), input)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for mixed sellers, got %v", err)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	f := newOrderFixture(t)
	f.product.Stock = 1

	_, err := f.svc.Create(context.Background(), f.createInput())
	if pkgerrors.CodeOf(err) != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAdvanceStatusLifecycle(t *testing.T) {
	f := newOrderFixture(t)
	order, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, next := range []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusPreparing,
		enums.OrderStatusShipped,
	} {
		if _, err := f.svc.AdvanceStatus(context.Background(), order.ID, next); err != nil {
			t.Fatalf("advance to %s: %v", next, err)
		}
	}

	// Cancellation after shipment is not allowed.
	if _, err := f.svc.AdvanceStatus(context.Background(), order.ID, enums.OrderStatusCancelled); pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	delivered, err := f.svc.AdvanceStatus(context.Background(), order.ID, enums.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if delivered.DeliveredAt == nil {
		t.Fatal("delivered_at must be set")
	}
	if len(f.affiliates.confirmed) != 1 || f.affiliates.confirmed[0] != order.ID {
		t.Fatal("delivery must confirm affiliate earnings")
	}

	// One status notification per transition.
	if len(f.notify.sent) != 4 {
		t.Fatalf("expected 4 notifications, got %d", len(f.notify.sent))
	}

	// Terminal state.
	if _, err := f.svc.AdvanceStatus(context.Background(), order.ID, enums.OrderStatusConfirmed); pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected terminal rejection, got %v", err)
	}
}

func TestAdvanceStatusNoBackwardMoves(t *testing.T) {
	f := newOrderFixture(t)
	order, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.AdvanceStatus(context.Background(), order.ID, enums.OrderStatusPreparing); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := f.svc.AdvanceStatus(context.Background(), order.ID, enums.OrderStatusConfirmed); pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for backward move, got %v", err)
	}
}

func TestMarkPaidGeneratesInvoiceOnce(t *testing.T) {
	f := newOrderFixture(t)
	order, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	paid, err := f.svc.MarkPaid(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", paid.PaymentStatus)
	}
	if len(f.invoices.generated) != 1 || f.invoices.generated[0] != order.ID {
		t.Fatal("invoice generation must follow payment")
	}

	paidEvents := 0
	for _, event := range f.emitter.events {
		if event.EventType == enums.EventOrderPaid {
			paidEvents++
		}
	}
	if paidEvents != 1 {
		t.Fatalf("expected one order_paid event, got %d", paidEvents)
	}

	// Replay of the confirmation is a no-op.
	if _, err := f.svc.MarkPaid(context.Background(), order.ID); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(f.invoices.generated) != 1 {
		t.Fatal("replay must not regenerate the invoice")
	}
}

func TestMarkPaidReplayRecoversMissingInvoice(t *testing.T) {
	f := newOrderFixture(t)
	order, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Payment commits but invoice generation fails transiently.
	f.invoices.err = pkgerrors.New(pkgerrors.CodeDependency, "sequence unavailable")
	if _, err := f.svc.MarkPaid(context.Background(), order.ID); err == nil {
		t.Fatal("expected invoice failure to surface")
	}
	if f.repo.orders[order.ID].PaymentStatus != enums.PaymentStatusPaid {
		t.Fatal("payment must stay committed despite the invoice failure")
	}
	if len(f.invoices.generated) != 0 {
		t.Fatal("no invoice should exist yet")
	}

	// The redelivered confirmation must generate the missing invoice.
	f.invoices.err = nil
	if _, err := f.svc.MarkPaid(context.Background(), order.ID); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(f.invoices.generated) != 1 || f.invoices.generated[0] != order.ID {
		t.Fatal("replay must generate the invoice the first attempt missed")
	}
}

func TestMarkPaidCancelledOrder(t *testing.T) {
	f := newOrderFixture(t)
	order, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.AdvanceStatus(context.Background(), order.ID, enums.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.MarkPaid(context.Background(), order.ID); pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
