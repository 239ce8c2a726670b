package coupons

import (
	"context"
	"strings"
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Rejection reasons surfaced to clients. A failed validation is a normal
// business outcome, not an error.
const (
	ReasonNotFound       = "coupon not found"
	ReasonInactive       = "coupon is not active"
	ReasonNotStarted     = "coupon is not yet valid"
	ReasonExpired        = "coupon has expired"
	ReasonUsageLimit     = "coupon usage limit reached"
	ReasonUserLimit      = "coupon usage limit reached for this user"
	ReasonMinimumAmount  = "cart total below coupon minimum"
	ReasonUserType       = "coupon not available for this account type"
	ReasonNoApplicable   = "coupon does not apply to any cart item"
	ReasonAlreadyApplied = "coupon already applied to this order"
)

// CartItem is the order line subset the validator inspects.
type CartItem struct {
	ProductID uuid.UUID
	Category  string
	TotalTTC  decimal.Decimal
}

// ValidateInput carries everything needed to evaluate a code against a cart.
type ValidateInput struct {
	Code      string
	UserID    uuid.UUID
	UserType  enums.AccountType
	SellerID  *uuid.UUID
	CartTotal decimal.Decimal
	Items     []CartItem
}

// Validation is the discriminated validation result. Valid=false with a
// Reason covers every business rejection, including an unknown code; the
// accompanying error is reserved for infrastructure failures.
type Validation struct {
	Valid          bool            `json:"valid"`
	Reason         string          `json:"reason,omitempty"`
	Coupon         *models.Coupon  `json:"coupon,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// ApplyInput is ValidateInput plus the order being charged.
type ApplyInput struct {
	ValidateInput
	OrderID uuid.UUID
}

// CreateInput carries the fields for a new coupon.
type CreateInput struct {
	SellerID             *uuid.UUID
	Code                 string
	Description          string
	DiscountType         enums.CouponDiscountType
	DiscountValue        decimal.Decimal
	MaximumDiscount      *decimal.Decimal
	MinimumAmount        *decimal.Decimal
	UsageLimit           *int
	UsageLimitPerUser    *int
	ValidFrom            time.Time
	ValidUntil           time.Time
	ApplicableToAll      bool
	ProductIDs           []uuid.UUID
	Categories           []string
	ApplicableToAllUsers bool
	UserTypes            []string
}

// Service is the coupon validator and manager.
type Service interface {
	Validate(ctx context.Context, input ValidateInput) (*Validation, error)
	Apply(ctx context.Context, tx *gorm.DB, input ApplyInput) (*Validation, error)
	Create(ctx context.Context, input CreateInput) (*models.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, input CreateInput) (*models.Coupon, error)
	Deactivate(ctx context.Context, id uuid.UUID, actorSellerID *uuid.UUID) error
	List(ctx context.Context, sellerID *uuid.UUID) ([]models.Coupon, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires coupon dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "coupons repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func rejected(reason string) *Validation {
	return &Validation{Valid: false, Reason: reason, DiscountAmount: decimal.Zero}
}

func (s *service) Validate(ctx context.Context, input ValidateInput) (*Validation, error) {
	return s.validateWith(ctx, s.repo, input)
}

func (s *service) validateWith(ctx context.Context, repo Repository, input ValidateInput) (*Validation, error) {
	if strings.TrimSpace(input.Code) == "" {
		return rejected(ReasonNotFound), nil
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	coupon, err := repo.FindByCode(ctx, input.Code, input.SellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find coupon")
	}
	if coupon == nil {
		return rejected(ReasonNotFound), nil
	}
	if !coupon.IsActive {
		return rejected(ReasonInactive), nil
	}

	now := s.now().UTC()
	if now.Before(coupon.ValidFrom) {
		return rejected(ReasonNotStarted), nil
	}
	if now.After(coupon.ValidUntil) {
		return rejected(ReasonExpired), nil
	}

	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return rejected(ReasonUsageLimit), nil
	}

	if coupon.UsageLimitPerUser != nil {
		used, err := repo.CountUserRedemptions(ctx, coupon.ID, input.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count user redemptions")
		}
		if used >= int64(*coupon.UsageLimitPerUser) {
			return rejected(ReasonUserLimit), nil
		}
	}

	if coupon.MinimumAmount != nil && input.CartTotal.LessThan(*coupon.MinimumAmount) {
		return rejected(ReasonMinimumAmount), nil
	}

	if !coupon.ApplicableToAllUsers && !containsString(coupon.UserTypes, string(input.UserType)) {
		return rejected(ReasonUserType), nil
	}

	if !coupon.ApplicableToAllProduct && !anyItemApplies(coupon, input.Items) {
		return rejected(ReasonNoApplicable), nil
	}

	discount := computeDiscount(coupon, input.CartTotal)
	return &Validation{Valid: true, Coupon: coupon, DiscountAmount: discount}, nil
}

// Apply validates and redeems inside the caller's checkout transaction. The
// usage cap is enforced by the conditional increment, not the earlier read.
func (s *service) Apply(ctx context.Context, tx *gorm.DB, input ApplyInput) (*Validation, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction required")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	repo := s.repo.WithTx(tx)
	validation, err := s.validateWith(ctx, repo, input.ValidateInput)
	if err != nil || !validation.Valid {
		return validation, err
	}

	coupon := validation.Coupon
	bumped, err := repo.IncrementUsage(ctx, coupon.ID, coupon.UsageLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment coupon usage")
	}
	if !bumped {
		return rejected(ReasonUsageLimit), nil
	}

	redemption := &models.CouponRedemption{
		CouponID:       coupon.ID,
		UserID:         input.UserID,
		OrderID:        input.OrderID,
		DiscountAmount: validation.DiscountAmount,
	}
	if err := repo.InsertRedemption(ctx, redemption); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "record coupon redemption")
	}

	return validation, nil
}

func computeDiscount(coupon *models.Coupon, cartTotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch coupon.DiscountType {
	case enums.CouponDiscountPercentage:
		discount = cartTotal.Mul(coupon.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
		if coupon.MaximumDiscount != nil && discount.GreaterThan(*coupon.MaximumDiscount) {
			discount = *coupon.MaximumDiscount
		}
	case enums.CouponDiscountFixed:
		discount = coupon.DiscountValue
	default:
		return decimal.Zero
	}
	if discount.GreaterThan(cartTotal) {
		discount = cartTotal
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

func anyItemApplies(coupon *models.Coupon, items []CartItem) bool {
	for _, item := range items {
		if coupon.ProductIDs.Contains(item.ProductID) {
			return true
		}
		if containsString(coupon.Categories, item.Category) {
			return true
		}
	}
	return false
}

func sameScope(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Coupon, error) {
	if err := validateCouponInput(input); err != nil {
		return nil, err
	}

	exists, err := s.repo.CodeExists(ctx, input.Code, input.SellerID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check coupon code")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists in this scope")
	}

	coupon := couponFromInput(input)
	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return coupon, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input CreateInput) (*models.Coupon, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon id required")
	}
	if err := validateCouponInput(input); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if existing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	if !sameScope(existing.SellerID, input.SellerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "coupon belongs to another scope")
	}

	exists, err := s.repo.CodeExists(ctx, input.Code, input.SellerID, &id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check coupon code")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists in this scope")
	}

	updated := couponFromInput(input)
	updated.ID = existing.ID
	updated.UsageCount = existing.UsageCount
	updated.IsActive = existing.IsActive
	updated.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
	}
	return updated, nil
}

// Deactivate turns a coupon off. A nil actor is the platform; a seller actor
// may only touch coupons in its own scope.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID, actorSellerID *uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon id required")
	}
	coupon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if coupon == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	if actorSellerID != nil && !sameScope(coupon.SellerID, actorSellerID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "coupon belongs to another scope")
	}
	if !coupon.IsActive {
		return nil
	}
	coupon.IsActive = false
	if err := s.repo.Update(ctx, coupon); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate coupon")
	}
	return nil
}

func (s *service) List(ctx context.Context, sellerID *uuid.UUID) ([]models.Coupon, error) {
	coupons, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return coupons, nil
}

func validateCouponInput(input CreateInput) error {
	if strings.TrimSpace(input.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	if !input.DiscountType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	if !input.DiscountValue.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
	}
	if input.DiscountType == enums.CouponDiscountPercentage && input.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	if input.ValidUntil.Before(input.ValidFrom) {
		return pkgerrors.New(pkgerrors.CodeValidation, "valid_until must be after valid_from")
	}
	if input.UsageLimit != nil && *input.UsageLimit <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage limit must be positive")
	}
	if input.UsageLimitPerUser != nil && *input.UsageLimitPerUser <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "per-user usage limit must be positive")
	}
	return nil
}

func couponFromInput(input CreateInput) *models.Coupon {
	return &models.Coupon{
		SellerID:               input.SellerID,
		Code:                   strings.ToUpper(strings.TrimSpace(input.Code)),
		Description:            input.Description,
		DiscountType:           input.DiscountType,
		DiscountValue:          input.DiscountValue,
		MaximumDiscount:        input.MaximumDiscount,
		MinimumAmount:          input.MinimumAmount,
		UsageLimit:             input.UsageLimit,
		UsageLimitPerUser:      input.UsageLimitPerUser,
		ValidFrom:              input.ValidFrom,
		ValidUntil:             input.ValidUntil,
		IsActive:               true,
		ApplicableToAllProduct: input.ApplicableToAll,
		ProductIDs:             input.ProductIDs,
		Categories:             input.Categories,
		ApplicableToAllUsers:   input.ApplicableToAllUsers,
		UserTypes:              input.UserTypes,
	}
}
