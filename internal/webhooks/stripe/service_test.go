package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
)

type stubOrders struct {
	paid []uuid.UUID
	err  error
}

func (s *stubOrders) MarkPaid(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.paid = append(s.paid, id)
	return &models.Order{ID: id}, nil
}

func paymentIntentEvent(t *testing.T, metadata map[string]string) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(&stripe.PaymentIntent{ID: "pi_test", Metadata: metadata})
	if err != nil {
		t.Fatalf("marshal payment intent: %v", err)
	}
	return &stripe.Event{
		ID:   "evt_test",
		Type: stripe.EventTypePaymentIntentSucceeded,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandlePaymentIntentSucceeded(t *testing.T) {
	ordersSvc := &stubOrders{}
	service, err := NewService(ServiceParams{Orders: ordersSvc})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	orderID := uuid.New()
	event := paymentIntentEvent(t, map[string]string{"order_id": orderID.String()})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(ordersSvc.paid) != 1 || ordersSvc.paid[0] != orderID {
		t.Fatalf("expected order %s marked paid, got %+v", orderID, ordersSvc.paid)
	}
}

func TestHandleEventRejectsBadMetadata(t *testing.T) {
	service, err := NewService(ServiceParams{Orders: &stubOrders{}})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	for name, metadata := range map[string]map[string]string{
		"missing order id": nil,
		"invalid order id": {"order_id": "not-a-uuid"},
	} {
		t.Run(name, func(t *testing.T) {
			err := service.HandleEvent(context.Background(), paymentIntentEvent(t, metadata))
			if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestHandleEventIgnoresOtherTypes(t *testing.T) {
	ordersSvc := &stubOrders{}
	service, err := NewService(ServiceParams{Orders: ordersSvc})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	event := &stripe.Event{
		ID:   "evt_other",
		Type: stripe.EventTypeChargeRefunded,
		Data: &stripe.EventData{Raw: []byte(`{}`)},
	}
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unrelated event must be acknowledged: %v", err)
	}
	if len(ordersSvc.paid) != 0 {
		t.Fatal("unrelated event must not touch orders")
	}
}

func TestHandleEventPropagatesOrderError(t *testing.T) {
	ordersSvc := &stubOrders{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	service, err := NewService(ServiceParams{Orders: ordersSvc})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	event := paymentIntentEvent(t, map[string]string{"order_id": uuid.NewString()})
	if err := service.HandleEvent(context.Background(), event); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

type stubIdempotencyStore struct {
	data map[string]string
}

func (s *stubIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	return s.data[key], nil
}

func (s *stubIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = "1"
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "ec:idempotency:" + scope + ":" + id
}

func (s *stubIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func TestIdempotencyGuard(t *testing.T) {
	store := &stubIdempotencyStore{data: map[string]string{}}
	guard, err := NewIdempotencyGuard(store, time.Hour, "stripe")
	if err != nil {
		t.Fatalf("setup guard: %v", err)
	}

	seen, err := guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil || seen {
		t.Fatalf("first delivery must pass, seen=%v err=%v", seen, err)
	}
	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil || !seen {
		t.Fatalf("replay must be flagged, seen=%v err=%v", seen, err)
	}

	if err := guard.Delete(context.Background(), "evt_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil || seen {
		t.Fatalf("after delete the event can be retried, seen=%v err=%v", seen, err)
	}
}
