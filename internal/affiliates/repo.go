package affiliates

import (
	"context"
	"errors"
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository persists affiliate links, clicks, earnings and point balances.
// Counter updates are single atomic statements; nothing is read-then-patched.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateLink(ctx context.Context, link *models.AffiliateLink) error
	GetLinkByCode(ctx context.Context, code string) (*models.AffiliateLink, error)
	GetLinkByPair(ctx context.Context, affiliateID, sellerID uuid.UUID) (*models.AffiliateLink, error)
	ListLinksByAffiliate(ctx context.Context, affiliateID uuid.UUID) ([]models.AffiliateLink, error)
	IncrementClicks(ctx context.Context, linkID uuid.UUID) error
	InsertClick(ctx context.Context, click *models.AffiliateClick) error
	InsertEarning(ctx context.Context, earning *models.AffiliateEarning) error
	BumpConversion(ctx context.Context, linkID uuid.UUID, earnings decimal.Decimal) error
	ConvertLatestClick(ctx context.Context, linkID uuid.UUID) error
	ListPendingEarningsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.AffiliateEarning, error)
	ConfirmEarning(ctx context.Context, id uuid.UUID, at time.Time) error
	AddPendingPoints(ctx context.Context, userID uuid.UUID, points int64) (*models.AffiliateBalance, error)
	ConfirmPoints(ctx context.Context, userID uuid.UUID, points int64) (*models.AffiliateBalance, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (*models.AffiliateBalance, error)
	InsertPointTransaction(ctx context.Context, txn *models.PointTransaction) error
	ListPointTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.PointTransaction, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a gorm-backed affiliate repository.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateLink(ctx context.Context, link *models.AffiliateLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *repositoryImpl) GetLinkByCode(ctx context.Context, code string) (*models.AffiliateLink, error) {
	var link models.AffiliateLink
	err := r.db.WithContext(ctx).First(&link, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repositoryImpl) GetLinkByPair(ctx context.Context, affiliateID, sellerID uuid.UUID) (*models.AffiliateLink, error) {
	var link models.AffiliateLink
	err := r.db.WithContext(ctx).
		First(&link, "affiliate_id = ? AND seller_id = ?", affiliateID, sellerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repositoryImpl) ListLinksByAffiliate(ctx context.Context, affiliateID uuid.UUID) ([]models.AffiliateLink, error) {
	var links []models.AffiliateLink
	err := r.db.WithContext(ctx).
		Where("affiliate_id = ?", affiliateID).
		Order("created_at DESC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *repositoryImpl) IncrementClicks(ctx context.Context, linkID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.AffiliateLink{}).
		Where("id = ?", linkID).
		UpdateColumn("clicks_count", gorm.Expr("clicks_count + 1")).Error
}

func (r *repositoryImpl) InsertClick(ctx context.Context, click *models.AffiliateClick) error {
	return r.db.WithContext(ctx).Create(click).Error
}

func (r *repositoryImpl) InsertEarning(ctx context.Context, earning *models.AffiliateEarning) error {
	return r.db.WithContext(ctx).Create(earning).Error
}

func (r *repositoryImpl) BumpConversion(ctx context.Context, linkID uuid.UUID, earnings decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.AffiliateLink{}).
		Where("id = ?", linkID).
		UpdateColumns(map[string]interface{}{
			"conversions_count": gorm.Expr("conversions_count + 1"),
			"total_earnings":    gorm.Expr("total_earnings + ?", earnings),
		}).Error
}

// ConvertLatestClick flips the most recent unconverted click of the link in a
// single statement.
func (r *repositoryImpl) ConvertLatestClick(ctx context.Context, linkID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE affiliate_clicks
		SET converted = TRUE
		WHERE id = (
			SELECT id FROM affiliate_clicks
			WHERE link_id = ? AND converted = FALSE
			ORDER BY created_at DESC
			LIMIT 1
		)`, linkID).Error
}

func (r *repositoryImpl) ListPendingEarningsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.AffiliateEarning, error) {
	var earnings []models.AffiliateEarning
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, enums.EarningStatusPending).
		Find(&earnings).Error
	if err != nil {
		return nil, err
	}
	return earnings, nil
}

func (r *repositoryImpl) ConfirmEarning(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AffiliateEarning{}).
		Where("id = ? AND status = ?", id, enums.EarningStatusPending).
		UpdateColumns(map[string]interface{}{
			"status":       enums.EarningStatusConfirmed,
			"confirmed_at": at,
		}).Error
}

func (r *repositoryImpl) AddPendingPoints(ctx context.Context, userID uuid.UUID, points int64) (*models.AffiliateBalance, error) {
	var balance models.AffiliateBalance
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO affiliate_balances (user_id, pending_points, total_points, total_earned, updated_at)
		VALUES (?, ?, 0, 0, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET pending_points = affiliate_balances.pending_points + EXCLUDED.pending_points,
		              updated_at = NOW()
		RETURNING user_id, pending_points, total_points, total_earned, updated_at`,
		userID, points).Scan(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *repositoryImpl) ConfirmPoints(ctx context.Context, userID uuid.UUID, points int64) (*models.AffiliateBalance, error) {
	var balance models.AffiliateBalance
	err := r.db.WithContext(ctx).Raw(`
		UPDATE affiliate_balances
		SET pending_points = pending_points - ?,
		    total_points = total_points + ?,
		    total_earned = total_earned + ?,
		    updated_at = NOW()
		WHERE user_id = ?
		RETURNING user_id, pending_points, total_points, total_earned, updated_at`,
		points, points, points, userID).Scan(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *repositoryImpl) GetBalance(ctx context.Context, userID uuid.UUID) (*models.AffiliateBalance, error) {
	var balance models.AffiliateBalance
	err := r.db.WithContext(ctx).First(&balance, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *repositoryImpl) InsertPointTransaction(ctx context.Context, txn *models.PointTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repositoryImpl) ListPointTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.PointTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var txns []models.PointTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
