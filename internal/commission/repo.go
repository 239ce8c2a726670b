package commission

import (
	"context"
	"errors"
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const settingsRowID = 1

// Repository persists the platform commission rate and reads seller order
// aggregates for the earnings report.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetSettings(ctx context.Context) (*models.PlatformSettings, error)
	SaveRate(ctx context.Context, rate decimal.Decimal) error
	SellerOrderTotals(ctx context.Context, sellerID uuid.UUID, from, to time.Time) (sellerTotals, error)
}

type sellerTotals struct {
	OrderCount int64
	GrossTotal decimal.Decimal
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a commission repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) GetSettings(ctx context.Context) (*models.PlatformSettings, error) {
	var settings models.PlatformSettings
	err := r.db.WithContext(ctx).First(&settings, "id = ?", settingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *repositoryImpl) SaveRate(ctx context.Context, rate decimal.Decimal) error {
	settings := models.PlatformSettings{ID: settingsRowID, CommissionRate: rate}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{"commission_rate": rate, "updated_at": time.Now().UTC()}),
	}).Create(&settings).Error
}

func (r *repositoryImpl) SellerOrderTotals(ctx context.Context, sellerID uuid.UUID, from, to time.Time) (sellerTotals, error) {
	var row struct {
		OrderCount int64
		GrossTotal decimal.Decimal
	}
	query := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("COUNT(*) AS order_count, COALESCE(SUM(total), 0) AS gross_total").
		Where("seller_id = ? AND payment_status = ? AND status <> ?",
			sellerID, enums.PaymentStatusPaid, enums.OrderStatusCancelled)
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at < ?", to)
	}
	if err := query.Scan(&row).Error; err != nil {
		return sellerTotals{}, err
	}
	return sellerTotals{OrderCount: row.OrderCount, GrossTotal: row.GrossTotal}, nil
}
