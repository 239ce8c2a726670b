package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/internal/affiliates"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/coupons"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/invoices"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/notifications"
	"github.com/ayoubterari/entrecoiffeur-backend/internal/products"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/logger"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/outbox"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type dbClient interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ItemInput is one cart line at checkout.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateInput carries a checkout request.
type CreateInput struct {
	BuyerID         uuid.UUID
	BuyerType       enums.AccountType
	Items           []ItemInput
	CouponCode      *string
	AffiliateCode   *string
	BillingAddress  types.Address
	ShippingAddress *types.Address
}

// Service runs checkout and the order lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit int) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.Order, error)
	AdvanceStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*models.Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// ServiceParams carries order service dependencies.
type ServiceParams struct {
	DB            dbClient
	Repo          Repository
	Products      products.Repository
	Coupons       coupons.Service
	Affiliates    affiliates.Service
	Invoices      invoices.Service
	Notifications notifications.Service
	Outbox        eventEmitter
	Logger        *logger.Logger
	ShippingFee   decimal.Decimal
}

type service struct {
	db          dbClient
	repo        Repository
	products    products.Repository
	coupons     coupons.Service
	affiliates  affiliates.Service
	invoices    invoices.Service
	notify      notifications.Service
	events      eventEmitter
	logg        *logger.Logger
	shippingFee decimal.Decimal
	now         func() time.Time
}

// NewService wires order dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order repository required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product repository required")
	}
	if params.Coupons == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "coupon service required")
	}
	if params.Affiliates == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "affiliate service required")
	}
	if params.Invoices == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "invoice service required")
	}
	if params.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification service required")
	}
	return &service{
		db:          params.DB,
		repo:        params.Repo,
		products:    params.Products,
		coupons:     params.Coupons,
		affiliates:  params.Affiliates,
		invoices:    params.Invoices,
		notify:      params.Notifications,
		events:      params.Outbox,
		logg:        params.Logger,
		shippingFee: params.ShippingFee,
		now:         time.Now,
	}, nil
}

// Create runs checkout: snapshot lines, reserve stock, apply the optional
// coupon and affiliate code, and queue the order_created event — all in one
// transaction.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.products.WithTx(tx)

		ids := make([]uuid.UUID, 0, len(input.Items))
		for _, item := range input.Items {
			ids = append(ids, item.ProductID)
		}
		catalog, err := productRepo.GetByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
		}
		byID := make(map[uuid.UUID]*models.Product, len(catalog))
		for i := range catalog {
			byID[catalog[i].ID] = &catalog[i]
		}

		var sellerID uuid.UUID
		items := make([]models.OrderItem, 0, len(input.Items))
		subtotal := decimal.Zero
		for _, line := range input.Items {
			product, ok := byID[line.ProductID]
			if !ok || !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not available")
			}
			if sellerID == uuid.Nil {
				sellerID = product.SellerID
			} else if sellerID != product.SellerID {
				return pkgerrors.New(pkgerrors.CodeValidation, "all items must come from the same shop")
			}

			ok, err := productRepo.DecrementStock(ctx, product.ID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("insufficient stock for %s", product.Name))
			}

			total := product.PriceTTC.Mul(decimal.NewFromInt(int64(line.Quantity)))
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Category:  product.Category,
				UnitTTC:   product.PriceTTC,
				Quantity:  line.Quantity,
				TotalTTC:  total,
				TVARate:   product.TVARate,
			})
			subtotal = subtotal.Add(total)
		}

		order = &models.Order{
			ID:              uuid.New(),
			BuyerID:         input.BuyerID,
			SellerID:        sellerID,
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusPending,
			Subtotal:        subtotal,
			ShippingFee:     s.shippingFee,
			DiscountAmount:  decimal.Zero,
			BillingAddress:  input.BillingAddress,
			ShippingAddress: input.ShippingAddress,
			Items:           items,
		}

		if input.CouponCode != nil && strings.TrimSpace(*input.CouponCode) != "" {
			validation, err := s.coupons.Apply(ctx, tx, coupons.ApplyInput{
				ValidateInput: coupons.ValidateInput{
					Code:      *input.CouponCode,
					UserID:    input.BuyerID,
					UserType:  input.BuyerType,
					SellerID:  &sellerID,
					CartTotal: subtotal,
					Items:     cartItems(items),
				},
				OrderID: order.ID,
			})
			if err != nil {
				return err
			}
			if !validation.Valid {
				return pkgerrors.New(pkgerrors.CodeValidation, validation.Reason)
			}
			order.DiscountAmount = validation.DiscountAmount
			code := strings.ToUpper(strings.TrimSpace(*input.CouponCode))
			order.CouponCode = &code
		}

		order.TaxAmount = includedTax(order)
		order.Total = subtotal.Add(order.ShippingFee).Sub(order.DiscountAmount)
		if order.Total.IsNegative() {
			order.Total = decimal.Zero
		}

		if input.AffiliateCode != nil && strings.TrimSpace(*input.AffiliateCode) != "" {
			code := strings.ToUpper(strings.TrimSpace(*input.AffiliateCode))
			order.AffiliateCode = &code
		}

		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if _, err := s.affiliates.ProcessOrder(ctx, tx, order); err != nil {
			return err
		}

		if s.events != nil {
			err := s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderCreated,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Data: map[string]any{
					"buyer_id":  order.BuyerID.String(),
					"seller_id": order.SellerID.String(),
					"total":     order.Total.String(),
				},
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func validateCreateInput(input CreateInput) error {
	if input.BuyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
	}
	return nil
}

func cartItems(items []models.OrderItem) []coupons.CartItem {
	out := make([]coupons.CartItem, len(items))
	for i, item := range items {
		out[i] = coupons.CartItem{
			ProductID: item.ProductID,
			Category:  item.Category,
			TotalTTC:  item.TotalTTC,
		}
	}
	return out
}

// includedTax reports the TVA already contained in the TTC amounts, per item
// rate. Informational only; the invoice recomputes from its own snapshot.
func includedTax(order *models.Order) decimal.Decimal {
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	tax := decimal.Zero
	for _, item := range order.Items {
		ht := item.TotalTTC.Div(one.Add(item.TVARate.Div(hundred))).Round(2)
		tax = tax.Add(item.TotalTTC.Sub(ht))
	}
	if order.ShippingFee.IsPositive() {
		ht := order.ShippingFee.Div(one.Add(decimal.NewFromInt(20).Div(hundred))).Round(2)
		tax = tax.Add(order.ShippingFee.Sub(ht))
	}
	return tax
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit int) ([]models.Order, error) {
	orders, err := s.repo.ListByBuyer(ctx, buyerID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.Order, error) {
	orders, err := s.repo.ListBySeller(ctx, sellerID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// AdvanceStatus moves the order forward along the fulfillment lattice.
// Delivery confirms affiliate earnings and notifies the buyer in the same
// transaction.
func (s *service) AdvanceStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var order *models.Order
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if current == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if !current.Status.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", current.Status, next))
		}

		now := s.now().UTC()
		current.Status = next
		switch next {
		case enums.OrderStatusDelivered:
			current.DeliveredAt = &now
		case enums.OrderStatusCancelled:
			current.CancelledAt = &now
		}
		if err := repo.Save(ctx, current); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		order = current

		if next == enums.OrderStatusDelivered {
			if err := s.affiliates.ConfirmForOrder(ctx, tx, current.ID); err != nil {
				return err
			}
		}

		if err := s.notifyStatus(ctx, tx, current); err != nil {
			return err
		}

		if s.events != nil {
			eventType := enums.EventOrderStateChanged
			if next == enums.OrderStatusCancelled {
				eventType = enums.EventOrderCancelled
			}
			err := s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     eventType,
				AggregateType: enums.AggregateOrder,
				AggregateID:   current.ID,
				Data: map[string]any{
					"status":    string(next),
					"buyer_id":  current.BuyerID.String(),
					"seller_id": current.SellerID.String(),
				},
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

var statusMessages = map[enums.OrderStatus]string{
	enums.OrderStatusConfirmed: "Votre commande a été confirmée.",
	enums.OrderStatusPreparing: "Votre commande est en préparation.",
	enums.OrderStatusShipped:   "Votre commande a été expédiée.",
	enums.OrderStatusDelivered: "Votre commande a été livrée.",
	enums.OrderStatusCancelled: "Votre commande a été annulée.",
}

func (s *service) notifyStatus(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	message, ok := statusMessages[order.Status]
	if !ok {
		return nil
	}
	return s.notify.Notify(ctx, tx, notifications.NotifyInput{
		UserID:  order.BuyerID,
		Type:    enums.NotificationTypeOrderStatus,
		Title:   fmt.Sprintf("Commande %s", order.Status),
		Message: message,
	})
}

// MarkPaid flips the payment status and then generates the invoice. Replays
// of the payment confirmation are no-ops.
func (s *service) MarkPaid(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if current == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if current.PaymentStatus == enums.PaymentStatusPaid {
			order = current
			return nil
		}
		if current.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled order cannot be paid")
		}

		current.PaymentStatus = enums.PaymentStatusPaid
		if err := repo.Save(ctx, current); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		order = current

		err = s.notify.Notify(ctx, tx, notifications.NotifyInput{
			UserID:  current.BuyerID,
			Type:    enums.NotificationTypeOrderPaid,
			Title:   "Paiement reçu",
			Message: "Votre paiement a bien été reçu.",
		})
		if err != nil {
			return err
		}

		if s.events != nil {
			err := s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderPaid,
				AggregateType: enums.AggregateOrder,
				AggregateID:   current.ID,
				Data: map[string]any{
					"buyer_id": current.BuyerID.String(),
					"total":    current.Total.String(),
				},
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Invoice generation runs in its own transaction once the payment is
	// committed; a replayed confirmation finds the invoice and conflicts,
	// which is fine. It also runs on the already-paid path so a replayed
	// confirmation regenerates an invoice a previous attempt failed to issue.
	if _, err := s.invoices.GenerateFromOrder(ctx, order.ID, invoices.GenerateOptions{}); err != nil {
		if pkgerrors.CodeOf(err) != pkgerrors.CodeConflict {
			if s.logg != nil {
				logCtx := s.logg.WithOrderID(ctx, order.ID.String())
				s.logg.Error(logCtx, "invoice generation failed after payment", err)
			}
			return nil, err
		}
	}
	return order, nil
}
