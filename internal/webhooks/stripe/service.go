package stripewebhook

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
)

const orderIDMetadataKey = "order_id"

type orderService interface {
	MarkPaid(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// ServiceParams bundles the payment webhook dependencies.
type ServiceParams struct {
	Orders orderService
}

// Service translates payment confirmation events into order updates.
type Service struct {
	orders orderService
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders service required")
	}
	return &Service{orders: params.Orders}, nil
}

// HandleEvent processes a verified Stripe event. Event types outside the
// payment confirmation flow are acknowledged without side effects.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent")
		}
		return s.confirmPayment(ctx, &intent)
	default:
		return nil
	}
}

func (s *Service) confirmPayment(ctx context.Context, intent *stripe.PaymentIntent) error {
	if intent == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent is required")
	}
	raw := strings.TrimSpace(intent.Metadata[orderIDMetadataKey])
	if raw == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order_id metadata missing")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order_id metadata")
	}

	if _, err := s.orders.MarkPaid(ctx, orderID); err != nil {
		return err
	}
	return nil
}
