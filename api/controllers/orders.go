package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ayoubterari/entrecoiffeur-backend/api/middleware"
	"github.com/ayoubterari/entrecoiffeur-backend/api/responses"
	"github.com/ayoubterari/entrecoiffeur-backend/api/validators"
	ordersvc "github.com/ayoubterari/entrecoiffeur-backend/internal/orders"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/logger"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/types"
)

type orderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	Items           []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	CouponCode      *string            `json:"coupon_code,omitempty"`
	AffiliateCode   *string            `json:"affiliate_code,omitempty"`
	BillingAddress  types.Address      `json:"billing_address" validate:"required"`
	ShippingAddress *types.Address     `json:"shipping_address,omitempty"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateOrder runs checkout for the authenticated buyer.
func CreateOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		buyerID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		buyerType, err := enums.ParseAccountType(middleware.AccountTypeFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account type"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := ordersvc.CreateInput{
			BuyerID:         buyerID,
			BuyerType:       buyerType,
			CouponCode:      payload.CouponCode,
			AffiliateCode:   payload.AffiliateCode,
			BillingAddress:  payload.BillingAddress,
			ShippingAddress: payload.ShippingAddress,
		}
		for _, item := range payload.Items {
			input.Items = append(input.Items, ordersvc.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// GetOrder serves one order to its buyer, its seller, or an admin.
func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !canViewOrder(r, order.BuyerID, order.SellerID) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account"))
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ListMyOrders returns the authenticated buyer's order history.
func ListMyOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		buyerID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := parseLimit(r, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListByBuyer(r.Context(), buyerID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// SellerListOrders returns orders placed against the authenticated seller's shop.
func SellerListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		sellerID, err := requesterSellerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := parseLimit(r, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListBySeller(r.Context(), sellerID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// UpdateOrderStatus advances the fulfilment state of an order. Sellers may only
// move their own orders; admins may move any.
func UpdateOrderStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		if !isAdmin(r) {
			order, err := svc.Get(r.Context(), orderID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			sellerID, err := requesterSellerID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if order.SellerID != sellerID {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another seller"))
				return
			}
		}

		order, err := svc.AdvanceStatus(r.Context(), orderID, next)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func canViewOrder(r *http.Request, buyerID, sellerID uuid.UUID) bool {
	if isAdmin(r) {
		return true
	}
	if raw := middleware.UserIDFromContext(r.Context()); raw == buyerID.String() {
		return true
	}
	return middleware.SellerIDFromContext(r.Context()) == sellerID.String()
}
