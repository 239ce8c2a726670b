package enums

import "fmt"

// OrderStatus tracks the fulfillment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// orderStatusRank orders the forward-only fulfillment steps. Cancelled sits
// outside the progression.
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusConfirmed: 1,
	OrderStatusPreparing: 2,
	OrderStatusShipped:   3,
	OrderStatusDelivered: 4,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether moving from o to next is allowed: forward
// steps only, cancellation only before shipment, terminal states frozen.
func (o OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if o == OrderStatusCancelled || o == OrderStatusDelivered {
		return false
	}
	if next == OrderStatusCancelled {
		return orderStatusRank[o] < orderStatusRank[OrderStatusShipped]
	}
	currentRank, ok := orderStatusRank[o]
	if !ok {
		return false
	}
	nextRank, ok := orderStatusRank[next]
	if !ok {
		return false
	}
	return nextRank > currentRank
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
