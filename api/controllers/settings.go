package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ayoubterari/entrecoiffeur-backend/api/responses"
	"github.com/ayoubterari/entrecoiffeur-backend/api/validators"
	commissionsvc "github.com/ayoubterari/entrecoiffeur-backend/internal/commission"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/logger"
)

// GetCommissionRate serves the current platform commission percentage.
func GetCommissionRate(svc commissionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commission service unavailable"))
			return
		}

		rate, err := svc.CurrentRate(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"commission_rate": rate.String()})
	}
}

type updateCommissionRateRequest struct {
	CommissionRate string `json:"commission_rate" validate:"required"`
}

// AdminUpdateCommissionRate changes the platform commission. Applies to future
// orders only.
func AdminUpdateCommissionRate(svc commissionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commission service unavailable"))
			return
		}

		var payload updateCommissionRateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rate, err := decimal.NewFromString(strings.TrimSpace(payload.CommissionRate))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid commission_rate"))
			return
		}

		updated, err := svc.UpdateRate(r.Context(), rate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"commission_rate": updated.String()})
	}
}

// SellerEarningsReport recomputes a seller's earnings over a period.
func SellerEarningsReport(svc commissionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commission service unavailable"))
			return
		}

		sellerID, err := requesterSellerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := commissionsvc.ReportParams{SellerID: sellerID}
		if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
			from, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from"))
				return
			}
			params.From = from
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
			to, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to"))
				return
			}
			params.To = to
		}

		report, err := svc.SellerReport(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
