package enums

import "fmt"

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder   OutboxAggregateType = "order"
	AggregateInvoice OutboxAggregateType = "invoice"
	AggregateCoupon  OutboxAggregateType = "coupon"
	AggregateReview  OutboxAggregateType = "review"
	AggregateTicket  OutboxAggregateType = "ticket"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateInvoice,
	AggregateCoupon,
	AggregateReview,
	AggregateTicket,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType names the domain events persisted to the outbox.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderStateChanged  OutboxEventType = "order_state_changed"
	EventOrderPaid          OutboxEventType = "order_paid"
	EventOrderCancelled     OutboxEventType = "order_cancelled"
	EventInvoiceIssued      OutboxEventType = "invoice_issued"
	EventCreditNoteCreated  OutboxEventType = "credit_note_created"
	EventCouponRedeemed     OutboxEventType = "coupon_redeemed"
	EventReviewCreated      OutboxEventType = "review_created"
	EventTicketCreated      OutboxEventType = "ticket_created"
	EventAffiliateConverted OutboxEventType = "affiliate_converted"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderStateChanged,
	EventOrderPaid,
	EventOrderCancelled,
	EventInvoiceIssued,
	EventCreditNoteCreated,
	EventCouponRedeemed,
	EventReviewCreated,
	EventTicketCreated,
	EventAffiliateConverted,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
