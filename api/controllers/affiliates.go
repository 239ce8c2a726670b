package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ayoubterari/entrecoiffeur-backend/api/responses"
	"github.com/ayoubterari/entrecoiffeur-backend/api/validators"
	affiliatesvc "github.com/ayoubterari/entrecoiffeur-backend/internal/affiliates"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/logger"
)

type createAffiliateLinkRequest struct {
	SellerID uuid.UUID `json:"seller_id" validate:"required"`
}

// CreateAffiliateLink issues a tracking code promoting a shop.
func CreateAffiliateLink(svc affiliatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "affiliate service unavailable"))
			return
		}

		affiliateID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createAffiliateLinkRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		link, err := svc.CreateLink(r.Context(), affiliateID, payload.SellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, link)
	}
}

// ListAffiliateLinks returns the caller's tracking links.
func ListAffiliateLinks(svc affiliatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "affiliate service unavailable"))
			return
		}

		affiliateID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		links, err := svc.ListLinks(r.Context(), affiliateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, links)
	}
}

// AffiliateClick records a visit through a tracking code. Public endpoint.
func AffiliateClick(svc affiliatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "affiliate service unavailable"))
			return
		}

		code := routeParam(r, "code")
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "code required"))
			return
		}

		link, err := svc.RecordClick(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"seller_id": link.SellerID.String()})
	}
}

// AffiliateBalance returns the caller's point balance.
func AffiliateBalance(svc affiliatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "affiliate service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}

// AffiliateTransactions returns the caller's point ledger, newest first.
func AffiliateTransactions(svc affiliatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "affiliate service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := parseLimit(r, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transactions, err := svc.Transactions(r.Context(), userID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transactions)
	}
}
