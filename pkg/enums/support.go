package enums

import "fmt"

// TicketStatus tracks the lifecycle of a support ticket.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusPending  TicketStatus = "pending"
	TicketStatusResolved TicketStatus = "resolved"
	TicketStatusClosed   TicketStatus = "closed"
)

var validTicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusPending,
	TicketStatusResolved,
	TicketStatusClosed,
}

// String implements fmt.Stringer.
func (t TicketStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TicketStatus.
func (t TicketStatus) IsValid() bool {
	for _, candidate := range validTicketStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

var ticketStatusRank = map[TicketStatus]int{
	TicketStatusOpen:     0,
	TicketStatusPending:  1,
	TicketStatusResolved: 2,
	TicketStatusClosed:   3,
}

// CanTransitionTo reports whether moving from t to next is allowed: forward
// steps only, closed is terminal.
func (t TicketStatus) CanTransitionTo(next TicketStatus) bool {
	currentRank, ok := ticketStatusRank[t]
	if !ok {
		return false
	}
	nextRank, ok := ticketStatusRank[next]
	if !ok {
		return false
	}
	return nextRank > currentRank
}

// ParseTicketStatus converts raw input into a TicketStatus.
func ParseTicketStatus(value string) (TicketStatus, error) {
	for _, candidate := range validTicketStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ticket status %q", value)
}

// TicketPriority ranks support ticket urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

var validTicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityUrgent,
}

// String implements fmt.Stringer.
func (t TicketPriority) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TicketPriority.
func (t TicketPriority) IsValid() bool {
	for _, candidate := range validTicketPriorities {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTicketPriority converts raw input into a TicketPriority.
func ParseTicketPriority(value string) (TicketPriority, error) {
	for _, candidate := range validTicketPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ticket priority %q", value)
}
