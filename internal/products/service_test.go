package products

import (
	"context"
	"testing"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubProductRepo struct {
	items map[uuid.UUID]*models.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{items: map[uuid.UUID]*models.Product{}}
}

func (s *stubProductRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubProductRepo) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	copied := *product
	s.items[product.ID] = &copied
	return nil
}

func (s *stubProductRepo) Update(ctx context.Context, product *models.Product) error {
	copied := *product
	s.items[product.ID] = &copied
	return nil
}

func (s *stubProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	copied := *product
	return &copied, nil
}

func (s *stubProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if product, ok := s.items[id]; ok {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (s *stubProductRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, activeOnly bool) ([]models.Product, error) {
	var out []models.Product
	for _, product := range s.items {
		if product.SellerID != sellerID {
			continue
		}
		if activeOnly && !product.IsActive {
			continue
		}
		out = append(out, *product)
	}
	return out, nil
}

func (s *stubProductRepo) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	product, ok := s.items[id]
	if !ok || product.Stock < quantity {
		return false, nil
	}
	product.Stock -= quantity
	return true, nil
}

func TestCreateAppliesDefaultTVARate(t *testing.T) {
	svc, err := NewService(newStubProductRepo(), decimal.RequireFromString("5.5"))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	product, err := svc.Create(context.Background(), CreateInput{
		SellerID: uuid.New(),
		Name:     "  Shampoing Doux  ",
		Category: "Soins",
		PriceTTC: decimal.RequireFromString("12.90"),
		Stock:    10,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !product.TVARate.Equal(decimal.RequireFromString("5.5")) {
		t.Fatalf("expected default tva rate 5.5, got %s", product.TVARate)
	}
	if product.Name != "Shampoing Doux" {
		t.Fatalf("expected trimmed name, got %q", product.Name)
	}
	if product.Category != "soins" {
		t.Fatalf("expected lowercased category, got %q", product.Category)
	}
	if !product.IsActive {
		t.Fatal("expected new product to be active")
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, err := NewService(newStubProductRepo(), decimal.Zero)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"missing seller", CreateInput{Name: "x", PriceTTC: decimal.NewFromInt(1)}},
		{"blank name", CreateInput{SellerID: uuid.New(), Name: "   ", PriceTTC: decimal.NewFromInt(1)}},
		{"zero price", CreateInput{SellerID: uuid.New(), Name: "x", PriceTTC: decimal.Zero}},
		{"negative stock", CreateInput{SellerID: uuid.New(), Name: "x", PriceTTC: decimal.NewFromInt(1), Stock: -1}},
		{"tva over 100", CreateInput{SellerID: uuid.New(), Name: "x", PriceTTC: decimal.NewFromInt(1), TVARate: decimal.NewFromInt(120)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateRejectsForeignSeller(t *testing.T) {
	repo := newStubProductRepo()
	svc, err := NewService(repo, decimal.Zero)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	owner := uuid.New()
	product, err := svc.Create(context.Background(), CreateInput{
		SellerID: owner,
		Name:     "Ciseaux Pro",
		Category: "materiel",
		PriceTTC: decimal.RequireFromString("45.00"),
		Stock:    3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Update(context.Background(), product.ID, CreateInput{
		SellerID: uuid.New(),
		Name:     "Ciseaux Volés",
		Category: "materiel",
		PriceTTC: decimal.RequireFromString("1.00"),
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestDeactivateIsIdempotentForOwner(t *testing.T) {
	repo := newStubProductRepo()
	svc, err := NewService(repo, decimal.Zero)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	owner := uuid.New()
	product, err := svc.Create(context.Background(), CreateInput{
		SellerID: owner,
		Name:     "Sèche-cheveux",
		Category: "materiel",
		PriceTTC: decimal.RequireFromString("89.90"),
		Stock:    2,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Deactivate(context.Background(), product.ID, uuid.New()); pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign seller, got %v", err)
	}
	if err := svc.Deactivate(context.Background(), product.ID, owner); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := svc.Deactivate(context.Background(), product.ID, owner); err != nil {
		t.Fatalf("second deactivate should be a no-op, got %v", err)
	}

	active, err := svc.ListBySeller(context.Background(), owner, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active products, got %d", len(active))
	}
}
