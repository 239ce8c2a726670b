package commission

import (
	"context"
	"time"

	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultRate is the bootstrap commission percentage used until an admin
// persists another value.
var DefaultRate = decimal.NewFromInt(10)

// Service exposes the commission rate and seller earnings report.
type Service interface {
	CurrentRate(ctx context.Context) (decimal.Decimal, error)
	UpdateRate(ctx context.Context, rate decimal.Decimal) (decimal.Decimal, error)
	SplitOrder(ctx context.Context, total decimal.Decimal) (Breakdown, error)
	SellerReport(ctx context.Context, params ReportParams) (*Report, error)
}

// ReportParams scopes the earnings report to a seller and period.
type ReportParams struct {
	SellerID uuid.UUID
	From     time.Time
	To       time.Time
}

// Report is the seller earnings summary, recomputed from the order log.
type Report struct {
	SellerID   uuid.UUID       `json:"seller_id"`
	OrderCount int64           `json:"order_count"`
	GrossTotal decimal.Decimal `json:"gross_total"`
	Rate       decimal.Decimal `json:"rate"`
	Commission decimal.Decimal `json:"commission"`
	NetAmount  decimal.Decimal `json:"net_amount"`
}

// ServiceParams carries commission dependencies. BootstrapRate is the
// percentage used before an admin persists a value; zero falls back to
// DefaultRate.
type ServiceParams struct {
	Repo          Repository
	BootstrapRate decimal.Decimal
}

type service struct {
	repo     Repository
	fallback decimal.Decimal
}

// NewService wires commission dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "commission repository required")
	}
	fallback := params.BootstrapRate
	if fallback.IsZero() {
		fallback = DefaultRate
	}
	if fallback.IsNegative() || fallback.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "bootstrap commission rate must be between 0 and 100")
	}
	return &service{repo: params.Repo, fallback: fallback}, nil
}

func (s *service) CurrentRate(ctx context.Context) (decimal.Decimal, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load platform settings")
	}
	if settings == nil {
		return s.fallback, nil
	}
	return settings.CommissionRate, nil
}

func (s *service) UpdateRate(ctx context.Context, rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "commission rate must be between 0 and 100")
	}
	if err := s.repo.SaveRate(ctx, rate); err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save commission rate")
	}
	return rate, nil
}

func (s *service) SplitOrder(ctx context.Context, total decimal.Decimal) (Breakdown, error) {
	rate, err := s.CurrentRate(ctx)
	if err != nil {
		return Breakdown{}, err
	}
	return Split(total, rate), nil
}

func (s *service) SellerReport(ctx context.Context, params ReportParams) (*Report, error) {
	if params.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}

	rate, err := s.CurrentRate(ctx)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.SellerOrderTotals(ctx, params.SellerID, params.From, params.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate seller orders")
	}

	breakdown := Split(totals.GrossTotal, rate)
	return &Report{
		SellerID:   params.SellerID,
		OrderCount: totals.OrderCount,
		GrossTotal: totals.GrossTotal,
		Rate:       rate,
		Commission: breakdown.Commission,
		NetAmount:  breakdown.NetAmount,
	}, nil
}
