package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ayoubterari/entrecoiffeur-backend/api/middleware"
	couponsvc "github.com/ayoubterari/entrecoiffeur-backend/internal/coupons"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/logger"
)

type stubCouponService struct {
	lastValidate couponsvc.ValidateInput
	validation   *couponsvc.Validation
	err          error
}

func (s *stubCouponService) Validate(ctx context.Context, input couponsvc.ValidateInput) (*couponsvc.Validation, error) {
	s.lastValidate = input
	return s.validation, s.err
}

func (s *stubCouponService) Apply(ctx context.Context, tx *gorm.DB, input couponsvc.ApplyInput) (*couponsvc.Validation, error) {
	return s.validation, s.err
}

func (s *stubCouponService) Create(ctx context.Context, input couponsvc.CreateInput) (*models.Coupon, error) {
	return nil, s.err
}

func (s *stubCouponService) Update(ctx context.Context, id uuid.UUID, input couponsvc.CreateInput) (*models.Coupon, error) {
	return nil, s.err
}

func (s *stubCouponService) Deactivate(ctx context.Context, id uuid.UUID, actorSellerID *uuid.UUID) error {
	return s.err
}

func (s *stubCouponService) List(ctx context.Context, sellerID *uuid.UUID) ([]models.Coupon, error) {
	return nil, s.err
}

func authedRequest(t *testing.T, method, target, body, accountType string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithAccountType(ctx, accountType)
	return req.WithContext(ctx)
}

func TestValidateCouponParsesCart(t *testing.T) {
	svc := &stubCouponService{
		validation: &couponsvc.Validation{
			Valid:          true,
			DiscountAmount: decimal.RequireFromString("5.00"),
		},
	}
	handler := ValidateCoupon(svc, logger.New(logger.Options{ServiceName: "test"}))

	productID := uuid.New()
	body := `{
		"code": "SOLDES10",
		"cart_total": "59.90",
		"items": [{"product_id": "` + productID.String() + `", "category": "soins", "total_ttc": "59.90"}]
	}`
	rec := httptest.NewRecorder()
	handler(rec, authedRequest(t, http.MethodPost, "/api/v1/coupons/validate", body, "buyer"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "SOLDES10", svc.lastValidate.Code)
	assert.True(t, svc.lastValidate.CartTotal.Equal(decimal.RequireFromString("59.90")))
	require.Len(t, svc.lastValidate.Items, 1)
	assert.Equal(t, productID, svc.lastValidate.Items[0].ProductID)

	var envelope struct {
		Data couponsvc.Validation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Valid)
}

func TestValidateCouponRejectsBadCartTotal(t *testing.T) {
	svc := &stubCouponService{}
	handler := ValidateCoupon(svc, logger.New(logger.Options{ServiceName: "test"}))

	body := `{"code": "X", "cart_total": "abc", "items": [{"product_id": "` + uuid.NewString() + `", "total_ttc": "1.00"}]}`
	rec := httptest.NewRecorder()
	handler(rec, authedRequest(t, http.MethodPost, "/api/v1/coupons/validate", body, "buyer"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateCouponRequiresUserContext(t *testing.T) {
	svc := &stubCouponService{}
	handler := ValidateCoupon(svc, logger.New(logger.Options{ServiceName: "test"}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
