package enums

import "fmt"

// InvoiceStatus tracks the lifecycle of an issued invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusIssued    InvoiceStatus = "issued"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
	InvoiceStatusCredited  InvoiceStatus = "credited"
)

var validInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusIssued,
	InvoiceStatusSent,
	InvoiceStatusPaid,
	InvoiceStatusCancelled,
	InvoiceStatusCredited,
}

// invoiceStatusRank encodes the one-way draft→issued→sent→paid→cancelled
// progression. Credited is reachable only through credit-note creation.
var invoiceStatusRank = map[InvoiceStatus]int{
	InvoiceStatusDraft:     0,
	InvoiceStatusIssued:    1,
	InvoiceStatusSent:      2,
	InvoiceStatusPaid:      3,
	InvoiceStatusCancelled: 4,
}

// String implements fmt.Stringer.
func (i InvoiceStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InvoiceStatus.
func (i InvoiceStatus) IsValid() bool {
	for _, candidate := range validInvoiceStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether a direct status update from i to next is
// allowed. Credited is never a valid direct target.
func (i InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	if i == InvoiceStatusCredited || next == InvoiceStatusCredited {
		return false
	}
	currentRank, ok := invoiceStatusRank[i]
	if !ok {
		return false
	}
	nextRank, ok := invoiceStatusRank[next]
	if !ok {
		return false
	}
	return nextRank > currentRank
}

// ParseInvoiceStatus converts raw input into an InvoiceStatus.
func ParseInvoiceStatus(value string) (InvoiceStatus, error) {
	for _, candidate := range validInvoiceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice status %q", value)
}
