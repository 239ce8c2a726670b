package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayoubterari/entrecoiffeur-backend/api/middleware"
	"github.com/ayoubterari/entrecoiffeur-backend/api/responses"
	"github.com/ayoubterari/entrecoiffeur-backend/api/validators"
	couponsvc "github.com/ayoubterari/entrecoiffeur-backend/internal/coupons"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/logger"
)

type couponRequest struct {
	Code                 string     `json:"code" validate:"required"`
	Description          string     `json:"description"`
	DiscountType         string     `json:"discount_type" validate:"required"`
	DiscountValue        string     `json:"discount_value" validate:"required"`
	MaximumDiscount      *string    `json:"maximum_discount,omitempty"`
	MinimumAmount        *string    `json:"minimum_amount,omitempty"`
	UsageLimit           *int       `json:"usage_limit,omitempty" validate:"omitempty,min=1"`
	UsageLimitPerUser    *int       `json:"usage_limit_per_user,omitempty" validate:"omitempty,min=1"`
	ValidFrom            time.Time  `json:"valid_from" validate:"required"`
	ValidUntil           time.Time  `json:"valid_until" validate:"required"`
	ApplicableToAll      bool       `json:"applicable_to_all"`
	ProductIDs           []uuid.UUID `json:"product_ids,omitempty"`
	Categories           []string   `json:"categories,omitempty"`
	ApplicableToAllUsers bool       `json:"applicable_to_all_users"`
	UserTypes            []string   `json:"user_types,omitempty"`
}

func (c couponRequest) toCreateInput() (couponsvc.CreateInput, error) {
	discountType, err := enums.ParseCouponDiscountType(c.DiscountType)
	if err != nil {
		return couponsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount_type")
	}

	value, err := decimal.NewFromString(strings.TrimSpace(c.DiscountValue))
	if err != nil {
		return couponsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount_value")
	}

	input := couponsvc.CreateInput{
		Code:                 c.Code,
		Description:          c.Description,
		DiscountType:         discountType,
		DiscountValue:        value,
		UsageLimit:           c.UsageLimit,
		UsageLimitPerUser:    c.UsageLimitPerUser,
		ValidFrom:            c.ValidFrom,
		ValidUntil:           c.ValidUntil,
		ApplicableToAll:      c.ApplicableToAll,
		ProductIDs:           c.ProductIDs,
		Categories:           c.Categories,
		ApplicableToAllUsers: c.ApplicableToAllUsers,
		UserTypes:            c.UserTypes,
	}

	if c.MaximumDiscount != nil {
		max, err := decimal.NewFromString(strings.TrimSpace(*c.MaximumDiscount))
		if err != nil {
			return couponsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid maximum_discount")
		}
		input.MaximumDiscount = &max
	}
	if c.MinimumAmount != nil {
		min, err := decimal.NewFromString(strings.TrimSpace(*c.MinimumAmount))
		if err != nil {
			return couponsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid minimum_amount")
		}
		input.MinimumAmount = &min
	}
	return input, nil
}

// SellerCreateCoupon creates a coupon scoped to the authenticated seller's shop.
func SellerCreateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		sellerID, err := requesterSellerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.SellerID = &sellerID

		coupon, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

// AdminCreateCoupon creates a platform-wide coupon valid across all shops.
func AdminCreateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

// SellerUpdateCoupon replaces the definition of one of the seller's coupons.
func SellerUpdateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		sellerID, err := requesterSellerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		couponID, err := pathUUID(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.SellerID = &sellerID

		coupon, err := svc.Update(r.Context(), couponID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupon)
	}
}

// SellerDeactivateCoupon turns a coupon off without deleting its usage history.
func SellerDeactivateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		sellerID, err := requesterSellerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		couponID, err := pathUUID(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), couponID, &sellerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

// AdminDeactivateCoupon turns off any coupon regardless of scope.
func AdminDeactivateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		couponID, err := pathUUID(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), couponID, nil); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

// SellerListCoupons returns the authenticated seller's coupons.
func SellerListCoupons(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		sellerID, err := requesterSellerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupons, err := svc.List(r.Context(), &sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupons)
	}
}

type validateCouponItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Category  string    `json:"category"`
	TotalTTC  string    `json:"total_ttc" validate:"required"`
}

type validateCouponRequest struct {
	Code      string               `json:"code" validate:"required"`
	SellerID  *uuid.UUID           `json:"seller_id,omitempty"`
	CartTotal string               `json:"cart_total" validate:"required"`
	Items     []validateCouponItem `json:"items" validate:"required,min=1,dive"`
}

// ValidateCoupon evaluates a code against the buyer's cart without consuming it.
func ValidateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userType, err := enums.ParseAccountType(middleware.AccountTypeFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account type"))
			return
		}

		var payload validateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		total, err := decimal.NewFromString(strings.TrimSpace(payload.CartTotal))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart_total"))
			return
		}

		input := couponsvc.ValidateInput{
			Code:      payload.Code,
			UserID:    userID,
			UserType:  userType,
			SellerID:  payload.SellerID,
			CartTotal: total,
		}
		for _, item := range payload.Items {
			lineTotal, err := decimal.NewFromString(strings.TrimSpace(item.TotalTTC))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item total_ttc"))
				return
			}
			input.Items = append(input.Items, couponsvc.CartItem{
				ProductID: item.ProductID,
				Category:  item.Category,
				TotalTTC:  lineTotal,
			})
		}

		result, err := svc.Validate(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
