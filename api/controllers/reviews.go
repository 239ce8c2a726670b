package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ayoubterari/entrecoiffeur-backend/api/responses"
	"github.com/ayoubterari/entrecoiffeur-backend/api/validators"
	reviewsvc "github.com/ayoubterari/entrecoiffeur-backend/internal/reviews"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/logger"
)

type createReviewRequest struct {
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	Rating         int        `json:"rating" validate:"required,min=1,max=5"`
	DeliveryRating *int       `json:"delivery_rating,omitempty" validate:"omitempty,min=1,max=5"`
	QualityRating  *int       `json:"quality_rating,omitempty" validate:"omitempty,min=1,max=5"`
	ServiceRating  *int       `json:"service_rating,omitempty" validate:"omitempty,min=1,max=5"`
	Recommend      bool       `json:"recommend"`
	Comment        string     `json:"comment"`
}

// CreateOrderReview lets the buyer rate a delivered order.
func CreateOrderReview(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}

		buyerID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		review, err := svc.Create(r.Context(), reviewsvc.CreateInput{
			OrderID:        orderID,
			BuyerID:        buyerID,
			ProductID:      payload.ProductID,
			Rating:         payload.Rating,
			DeliveryRating: payload.DeliveryRating,
			QualityRating:  payload.QualityRating,
			ServiceRating:  payload.ServiceRating,
			Recommend:      payload.Recommend,
			Comment:        validators.SanitizeString(payload.Comment, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, review)
	}
}

// SellerReviewStats serves the public rating rollup for a shop.
func SellerReviewStats(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}

		sellerID, err := pathUUID(r, "sellerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.SellerStats(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// ProductReviewStats serves the public rating rollup for a product.
func ProductReviewStats(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.ProductStats(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// ListSellerReviews serves recent reviews left against a shop.
func ListSellerReviews(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}

		sellerID, err := pathUUID(r, "sellerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := parseLimit(r, 20)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reviews, err := svc.ListBySeller(r.Context(), sellerID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reviews)
	}
}

// ListProductReviews serves recent reviews left against a product.
func ListProductReviews(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := parseLimit(r, 20)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reviews, err := svc.ListByProduct(r.Context(), productID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reviews)
	}
}
