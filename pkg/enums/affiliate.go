package enums

import "fmt"

// EarningStatus tracks whether affiliate points are still provisional.
type EarningStatus string

const (
	EarningStatusPending   EarningStatus = "pending"
	EarningStatusConfirmed EarningStatus = "confirmed"
)

var validEarningStatuses = []EarningStatus{
	EarningStatusPending,
	EarningStatusConfirmed,
}

// String implements fmt.Stringer.
func (e EarningStatus) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EarningStatus.
func (e EarningStatus) IsValid() bool {
	for _, candidate := range validEarningStatuses {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEarningStatus converts raw input into an EarningStatus.
func ParseEarningStatus(value string) (EarningStatus, error) {
	for _, candidate := range validEarningStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid earning status %q", value)
}

// PointTransactionType labels entries in the point audit trail.
type PointTransactionType string

const (
	PointTransactionEarningPending   PointTransactionType = "earning_pending"
	PointTransactionEarningConfirmed PointTransactionType = "earning_confirmed"
)

var validPointTransactionTypes = []PointTransactionType{
	PointTransactionEarningPending,
	PointTransactionEarningConfirmed,
}

// IsValid reports whether the value is a known PointTransactionType.
func (p PointTransactionType) IsValid() bool {
	for _, candidate := range validPointTransactionTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePointTransactionType converts raw input into a PointTransactionType.
func ParsePointTransactionType(value string) (PointTransactionType, error) {
	for _, candidate := range validPointTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid point transaction type %q", value)
}
