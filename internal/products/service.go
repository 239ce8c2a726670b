package products

import (
	"context"
	"strings"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInput carries the fields for a new catalog entry.
type CreateInput struct {
	SellerID uuid.UUID
	Name     string
	Category string
	PriceTTC decimal.Decimal
	TVARate  decimal.Decimal
	Stock    int
}

// Service manages a seller's catalog.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input CreateInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, activeOnly bool) ([]models.Product, error)
	Deactivate(ctx context.Context, id uuid.UUID, sellerID uuid.UUID) error
}

type service struct {
	repo       Repository
	defaultTVA decimal.Decimal
}

// NewService wires the catalog service. A zero defaultTVARate falls back to
// the standard French rate of 20%.
func NewService(repo Repository, defaultTVARate decimal.Decimal) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product repository required")
	}
	if defaultTVARate.IsZero() {
		defaultTVARate = decimal.NewFromInt(20)
	}
	if defaultTVARate.IsNegative() || defaultTVARate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "default tva rate must be between 0 and 100")
	}
	return &service{repo: repo, defaultTVA: defaultTVARate}, nil
}

func validateInput(input CreateInput) error {
	if input.SellerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if !input.PriceTTC.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.TVARate.IsNegative() || input.TVARate.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "tva rate must be between 0 and 100")
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	return nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	tvaRate := input.TVARate
	if tvaRate.IsZero() {
		tvaRate = s.defaultTVA
	}
	product := &models.Product{
		SellerID: input.SellerID,
		Name:     strings.TrimSpace(input.Name),
		Category: strings.ToLower(strings.TrimSpace(input.Category)),
		PriceTTC: input.PriceTTC,
		TVARate:  tvaRate,
		Stock:    input.Stock,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input CreateInput) (*models.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.SellerID != input.SellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another seller")
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Category = strings.ToLower(strings.TrimSpace(input.Category))
	product.PriceTTC = input.PriceTTC
	if !input.TVARate.IsZero() {
		product.TVARate = input.TVARate
	}
	product.Stock = input.Stock
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return product, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID uuid.UUID, activeOnly bool) ([]models.Product, error) {
	items, err := s.repo.ListBySeller(ctx, sellerID, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return items, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID, sellerID uuid.UUID) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.SellerID != sellerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another seller")
	}
	if !product.IsActive {
		return nil
	}
	product.IsActive = false
	if err := s.repo.Update(ctx, product); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	return nil
}
