package invoices

import (
	"context"
	"errors"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists invoices and loads the entities an invoice freezes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invoice *models.Invoice) error
	Update(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Invoice, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Invoice, error)
	LoadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	LoadSeller(ctx context.Context, sellerID uuid.UUID) (*models.Seller, error)
	LoadUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a gorm-backed invoice repository.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repositoryImpl) Update(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repositoryImpl) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	// Credit notes reuse the order_id of their original; the order's own
	// invoice is the row without an original reference.
	err := r.db.WithContext(ctx).
		First(&invoice, "order_id = ? AND original_invoice_id IS NULL", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repositoryImpl) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("issued_at DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repositoryImpl) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("issued_at DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repositoryImpl) LoadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) LoadSeller(ctx context.Context, sellerID uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	err := r.db.WithContext(ctx).First(&seller, "id = ?", sellerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

func (r *repositoryImpl) LoadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
