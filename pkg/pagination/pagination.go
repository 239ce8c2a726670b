package pagination

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any listing query can request.
	MaxLimit = 100
)

// Clamp enforces the fallback and maximum page sizes. A non-positive limit
// falls back to the given default.
func Clamp(limit, fallback int) int {
	if fallback <= 0 {
		fallback = DefaultLimit
	}
	if limit <= 0 {
		return fallback
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeTimeCursor renders a created_at cursor for the next page request.
func EncodeTimeCursor(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimeCursor decodes a cursor produced by EncodeTimeCursor. An empty
// value means the first page.
func ParseTimeCursor(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	return &t, nil
}
