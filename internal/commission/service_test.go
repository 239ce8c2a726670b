package commission

import (
	"context"
	"testing"
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubCommissionRepo struct {
	settings  *models.PlatformSettings
	saved     *decimal.Decimal
	totals    sellerTotals
	totalsErr error
}

func (s *stubCommissionRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCommissionRepo) GetSettings(ctx context.Context) (*models.PlatformSettings, error) {
	return s.settings, nil
}

func (s *stubCommissionRepo) SaveRate(ctx context.Context, rate decimal.Decimal) error {
	s.saved = &rate
	s.settings = &models.PlatformSettings{ID: 1, CommissionRate: rate}
	return nil
}

func (s *stubCommissionRepo) SellerOrderTotals(ctx context.Context, sellerID uuid.UUID, from, to time.Time) (sellerTotals, error) {
	if s.totalsErr != nil {
		return sellerTotals{}, s.totalsErr
	}
	return s.totals, nil
}

func TestSplitRounding(t *testing.T) {
	tests := []struct {
		total      string
		rate       string
		commission string
		net        string
	}{
		{"100.00", "10", "10.00", "90.00"},
		{"99.99", "10", "10.00", "89.99"},
		{"33.33", "10", "3.33", "30.00"},
		{"0.05", "10", "0.01", "0.04"},
		{"120.00", "15", "18.00", "102.00"},
		{"10.01", "12.5", "1.25", "8.76"},
	}

	for _, tt := range tests {
		got := Split(decimal.RequireFromString(tt.total), decimal.RequireFromString(tt.rate))
		if !got.Commission.Equal(decimal.RequireFromString(tt.commission)) {
			t.Errorf("Split(%s, %s) commission = %s, want %s", tt.total, tt.rate, got.Commission, tt.commission)
		}
		if !got.NetAmount.Equal(decimal.RequireFromString(tt.net)) {
			t.Errorf("Split(%s, %s) net = %s, want %s", tt.total, tt.rate, got.NetAmount, tt.net)
		}
		if !got.Commission.Add(got.NetAmount).Equal(got.Total) {
			t.Errorf("Split(%s, %s) does not preserve the total", tt.total, tt.rate)
		}
	}
}

func TestCurrentRateDefaultsWhenUnset(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &stubCommissionRepo{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	rate, err := svc.CurrentRate(context.Background())
	if err != nil {
		t.Fatalf("current rate: %v", err)
	}
	if !rate.Equal(DefaultRate) {
		t.Fatalf("expected default rate %s, got %s", DefaultRate, rate)
	}
}

func TestUpdateRatePersists(t *testing.T) {
	repo := &stubCommissionRepo{}
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	updated, err := svc.UpdateRate(context.Background(), decimal.RequireFromString("12.5"))
	if err != nil {
		t.Fatalf("update rate: %v", err)
	}
	if repo.saved == nil || !repo.saved.Equal(updated) {
		t.Fatal("expected rate to be persisted")
	}

	rate, err := svc.CurrentRate(context.Background())
	if err != nil {
		t.Fatalf("current rate: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("expected persisted rate to be read back, got %s", rate)
	}
}

func TestUpdateRateRejectsOutOfRange(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &stubCommissionRepo{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.UpdateRate(context.Background(), decimal.NewFromInt(-1)); err == nil {
		t.Fatal("expected validation error for negative rate")
	}
	if _, err := svc.UpdateRate(context.Background(), decimal.NewFromInt(101)); err == nil {
		t.Fatal("expected validation error for rate above 100")
	}
}

func TestSellerReport(t *testing.T) {
	repo := &stubCommissionRepo{
		settings: &models.PlatformSettings{ID: 1, CommissionRate: decimal.NewFromInt(10)},
		totals:   sellerTotals{OrderCount: 3, GrossTotal: decimal.RequireFromString("250.00")},
	}
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	report, err := svc.SellerReport(context.Background(), ReportParams{SellerID: uuid.New()})
	if err != nil {
		t.Fatalf("seller report: %v", err)
	}
	if report.OrderCount != 3 {
		t.Fatalf("expected 3 orders, got %d", report.OrderCount)
	}
	if !report.Commission.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected commission 25.00, got %s", report.Commission)
	}
	if !report.NetAmount.Equal(decimal.RequireFromString("225.00")) {
		t.Fatalf("expected net 225.00, got %s", report.NetAmount)
	}
}

func TestSellerReportRequiresSeller(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &stubCommissionRepo{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.SellerReport(context.Background(), ReportParams{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestBootstrapRateOverridesDefault(t *testing.T) {
	svc, err := NewService(ServiceParams{
		Repo:          &stubCommissionRepo{},
		BootstrapRate: decimal.RequireFromString("8"),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	rate, err := svc.CurrentRate(context.Background())
	if err != nil {
		t.Fatalf("current rate: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("8")) {
		t.Fatalf("expected bootstrap rate 8, got %s", rate)
	}

	if _, err := NewService(ServiceParams{
		Repo:          &stubCommissionRepo{},
		BootstrapRate: decimal.RequireFromString("120"),
	}); err == nil {
		t.Fatal("expected error for out-of-range bootstrap rate")
	}
}
