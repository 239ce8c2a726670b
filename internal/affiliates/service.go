package affiliates

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	dbpkg "github.com/ayoubterari/entrecoiffeur-backend/pkg/db"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/outbox"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	codeLength       = 8
	codeAlphabet     = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeMaxAttempts  = 5
	defaultEarnRate  = 5
	uniqOrderEarning = "uniq_order_affiliate"
)

type dbClient interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service manages affiliate links and turns paid-for orders into points.
type Service interface {
	CreateLink(ctx context.Context, affiliateID, sellerID uuid.UUID) (*models.AffiliateLink, error)
	ListLinks(ctx context.Context, affiliateID uuid.UUID) ([]models.AffiliateLink, error)
	RecordClick(ctx context.Context, code string) (*models.AffiliateLink, error)
	ProcessOrder(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.AffiliateEarning, error)
	ConfirmForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
	Balance(ctx context.Context, userID uuid.UUID) (*models.AffiliateBalance, error)
	Transactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.PointTransaction, error)
}

// ServiceParams carries affiliate service dependencies. EarningRate is a
// percentage of the order total; zero falls back to the platform default.
type ServiceParams struct {
	DB          dbClient
	Repo        Repository
	Outbox      eventEmitter
	EarningRate decimal.Decimal
}

type service struct {
	db     dbClient
	repo   Repository
	events eventEmitter
	rate   decimal.Decimal
	now    func() time.Time
}

// NewService wires affiliate dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "affiliate repository required")
	}
	rate := params.EarningRate
	if !rate.IsPositive() {
		rate = decimal.NewFromInt(defaultEarnRate)
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		events: params.Outbox,
		rate:   rate,
		now:    time.Now,
	}, nil
}

func (s *service) CreateLink(ctx context.Context, affiliateID, sellerID uuid.UUID) (*models.AffiliateLink, error) {
	if affiliateID == uuid.Nil || sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "affiliate and seller ids required")
	}

	existing, err := s.repo.GetLinkByPair(ctx, affiliateID, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing link")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "affiliate link already exists for this shop")
	}

	// Retry on code collisions; the code space makes more than one retry rare.
	var link *models.AffiliateLink
	for attempt := 0; attempt < codeMaxAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate link code")
		}
		link = &models.AffiliateLink{
			AffiliateID:   affiliateID,
			SellerID:      sellerID,
			Code:          code,
			TotalEarnings: decimal.Zero,
			IsActive:      true,
		}
		err = s.repo.CreateLink(ctx, link)
		if err == nil {
			return link, nil
		}
		if dbpkg.IsUniqueViolation(err, "uniq_affiliate_seller") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "affiliate link already exists for this shop")
		}
		if !dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create affiliate link")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique link code")
}

func generateCode() (string, error) {
	var sb strings.Builder
	sb.Grow(codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

func (s *service) ListLinks(ctx context.Context, affiliateID uuid.UUID) ([]models.AffiliateLink, error) {
	links, err := s.repo.ListLinksByAffiliate(ctx, affiliateID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list affiliate links")
	}
	return links, nil
}

// RecordClick bumps the link counter and appends a click row.
func (s *service) RecordClick(ctx context.Context, code string) (*models.AffiliateLink, error) {
	link, err := s.repo.GetLinkByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find affiliate link")
	}
	if link == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "affiliate link not found")
	}
	if !link.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "affiliate link is inactive")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.IncrementClicks(ctx, link.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment clicks")
		}
		if err := repo.InsertClick(ctx, &models.AffiliateClick{LinkID: link.ID}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record click")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

// ProcessOrder converts an order carrying an affiliate code into a pending
// earning, inside the caller's checkout transaction. Unknown codes,
// self-referrals and replays are quiet no-ops so checkout never fails on
// attribution.
func (s *service) ProcessOrder(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.AffiliateEarning, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction required")
	}
	if order == nil || order.AffiliateCode == nil {
		return nil, nil
	}

	repo := s.repo.WithTx(tx)
	link, err := repo.GetLinkByCode(ctx, strings.ToUpper(strings.TrimSpace(*order.AffiliateCode)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find affiliate link")
	}
	if link == nil || !link.IsActive {
		return nil, nil
	}
	if link.AffiliateID == order.BuyerID {
		// Self-referral earns nothing.
		return nil, nil
	}

	points := s.pointsFor(order.Total)
	if points <= 0 {
		return nil, nil
	}

	earning := &models.AffiliateEarning{
		ID:          uuid.New(),
		OrderID:     order.ID,
		AffiliateID: link.AffiliateID,
		LinkID:      link.ID,
		Points:      points,
		Status:      enums.EarningStatusPending,
	}
	if err := repo.InsertEarning(ctx, earning); err != nil {
		if dbpkg.IsUniqueViolation(err, uniqOrderEarning) {
			// Already processed for this order.
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert earning")
	}

	// The link counter mirrors the sum of its earning rows, so it moves by
	// the same floored points, not the raw percentage.
	if err := repo.BumpConversion(ctx, link.ID, decimal.NewFromInt(points)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bump conversion")
	}
	if err := repo.ConvertLatestClick(ctx, link.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "convert click")
	}

	balance, err := repo.AddPendingPoints(ctx, link.AffiliateID, points)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit pending points")
	}
	txn := &models.PointTransaction{
		UserID:       link.AffiliateID,
		EarningID:    &earning.ID,
		Type:         enums.PointTransactionEarningPending,
		Delta:        points,
		BalanceAfter: balance.PendingPoints,
	}
	if err := repo.InsertPointTransaction(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append point transaction")
	}
	return earning, nil
}

// pointsFor floors points down to whole units of the earning rate.
func (s *service) pointsFor(total decimal.Decimal) int64 {
	return total.Mul(s.rate).Div(decimal.NewFromInt(100)).Floor().IntPart()
}

// ConfirmForOrder finalizes every pending earning of a delivered order:
// points move from pending to the spendable balance.
func (s *service) ConfirmForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction required")
	}
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	repo := s.repo.WithTx(tx)
	earnings, err := repo.ListPendingEarningsByOrder(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending earnings")
	}

	now := s.now().UTC()
	for _, earning := range earnings {
		if err := repo.ConfirmEarning(ctx, earning.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm earning")
		}
		balance, err := repo.ConfirmPoints(ctx, earning.AffiliateID, earning.Points)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm points")
		}
		earningID := earning.ID
		txn := &models.PointTransaction{
			UserID:       earning.AffiliateID,
			EarningID:    &earningID,
			Type:         enums.PointTransactionEarningConfirmed,
			Delta:        earning.Points,
			BalanceAfter: balance.TotalPoints,
		}
		if err := repo.InsertPointTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append point transaction")
		}
		if s.events != nil {
			err := s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventAffiliateConverted,
				AggregateType: enums.AggregateOrder,
				AggregateID:   orderID,
				Data: map[string]any{
					"affiliate_id": earning.AffiliateID.String(),
					"link_id":      earning.LinkID.String(),
					"points":       earning.Points,
				},
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (*models.AffiliateBalance, error) {
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load balance")
	}
	if balance == nil {
		return &models.AffiliateBalance{UserID: userID}, nil
	}
	return balance, nil
}

func (s *service) Transactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.PointTransaction, error) {
	txns, err := s.repo.ListPointTransactions(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list point transactions")
	}
	return txns, nil
}
