package pagination

import (
	"testing"
	"time"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		limit    int
		fallback int
		want     int
	}{
		{0, 50, 50},
		{-3, 50, 50},
		{0, 0, DefaultLimit},
		{10, 50, 10},
		{500, 50, MaxLimit},
	}
	for _, tt := range tests {
		if got := Clamp(tt.limit, tt.fallback); got != tt.want {
			t.Errorf("Clamp(%d, %d) = %d, want %d", tt.limit, tt.fallback, got, tt.want)
		}
	}
}

func TestTimeCursorRoundTrip(t *testing.T) {
	at := time.Date(2025, 6, 18, 9, 30, 0, 123456789, time.UTC)
	cursor := EncodeTimeCursor(at)

	parsed, err := ParseTimeCursor(cursor)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !parsed.Equal(at) {
		t.Fatalf("expected %s, got %s", at, parsed)
	}

	if empty, err := ParseTimeCursor("  "); err != nil || empty != nil {
		t.Fatalf("blank cursor should mean first page, got %v %v", empty, err)
	}
	if _, err := ParseTimeCursor("yesterday"); err == nil {
		t.Fatal("expected error for malformed cursor")
	}
}
