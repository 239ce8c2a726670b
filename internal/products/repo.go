package products

import (
	"context"
	"errors"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists catalog entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, activeOnly bool) ([]models.Product, error)
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a gorm-backed product repository.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repositoryImpl) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repositoryImpl) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repositoryImpl) ListBySeller(ctx context.Context, sellerID uuid.UUID, activeOnly bool) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Where("seller_id = ?", sellerID)
	if activeOnly {
		query = query.Where("is_active = TRUE")
	}
	var products []models.Product
	err := query.Order("created_at DESC").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// DecrementStock reserves quantity atomically; false means not enough stock.
func (r *repositoryImpl) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
