package enums

import "fmt"

// ReviewSubjectType identifies what a rating rollup aggregates over.
type ReviewSubjectType string

const (
	ReviewSubjectSeller  ReviewSubjectType = "seller"
	ReviewSubjectProduct ReviewSubjectType = "product"
)

var validReviewSubjectTypes = []ReviewSubjectType{
	ReviewSubjectSeller,
	ReviewSubjectProduct,
}

// String implements fmt.Stringer.
func (r ReviewSubjectType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReviewSubjectType.
func (r ReviewSubjectType) IsValid() bool {
	for _, candidate := range validReviewSubjectTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReviewSubjectType converts raw input into a ReviewSubjectType.
func ParseReviewSubjectType(value string) (ReviewSubjectType, error) {
	for _, candidate := range validReviewSubjectTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid review subject type %q", value)
}
