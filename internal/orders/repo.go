package orders

import (
	"context"
	"errors"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists orders and their item snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	Save(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit int) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.Order, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a gorm-backed order repository.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repositoryImpl) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Save(order).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repositoryImpl) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
