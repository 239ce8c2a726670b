package sequence

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"
)

type stubCounterRepo struct {
	values map[string]int64
	err    error
}

func (s *stubCounterRepo) NextTx(tx *gorm.DB, scope, period string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.values == nil {
		s.values = map[string]int64{}
	}
	key := scope + "|" + period
	s.values[key]++
	return s.values[key], nil
}

func TestNextInvoiceNumberFormat(t *testing.T) {
	svc, err := NewService(&stubCounterRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	number, err := svc.NextInvoiceNumber(&gorm.DB{}, now)
	if err != nil {
		t.Fatalf("next invoice number: %v", err)
	}
	if number != "FAC-2026-00001" {
		t.Fatalf("unexpected invoice number %q", number)
	}

	number, err = svc.NextInvoiceNumber(&gorm.DB{}, now)
	if err != nil {
		t.Fatalf("next invoice number: %v", err)
	}
	if number != "FAC-2026-00002" {
		t.Fatalf("expected sequence to advance, got %q", number)
	}
}

func TestInvoiceSequencePerYear(t *testing.T) {
	repo := &stubCounterRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.NextInvoiceNumber(&gorm.DB{}, time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)); err != nil {
		t.Fatalf("next invoice number: %v", err)
	}
	number, err := svc.NextInvoiceNumber(&gorm.DB{}, time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next invoice number: %v", err)
	}
	if number != "FAC-2026-00001" {
		t.Fatalf("expected new year to restart the sequence, got %q", number)
	}
}

func TestNextTicketNumberFormat(t *testing.T) {
	svc, err := NewService(&stubCounterRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	number, err := svc.NextTicketNumber(&gorm.DB{}, now)
	if err != nil {
		t.Fatalf("next ticket number: %v", err)
	}
	if number != "SUP-20260315-001" {
		t.Fatalf("unexpected ticket number %q", number)
	}
}

func TestNextNumberRepositoryError(t *testing.T) {
	svc, err := NewService(&stubCounterRepo{err: errors.New("down")})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.NextInvoiceNumber(&gorm.DB{}, time.Now()); err == nil {
		t.Fatal("expected error from repository")
	}
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected dependency error")
	}
}
