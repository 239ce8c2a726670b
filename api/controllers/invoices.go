package controllers

import (
	"net/http"

	"github.com/ayoubterari/entrecoiffeur-backend/api/middleware"
	"github.com/ayoubterari/entrecoiffeur-backend/api/responses"
	"github.com/ayoubterari/entrecoiffeur-backend/api/validators"
	invoicesvc "github.com/ayoubterari/entrecoiffeur-backend/internal/invoices"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/logger"
)

// GetInvoice serves one invoice to its buyer, its seller, or an admin.
func GetInvoice(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		invoiceID, err := pathUUID(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.GetByID(r.Context(), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !isAdmin(r) &&
			middleware.UserIDFromContext(r.Context()) != invoice.BuyerID.String() &&
			middleware.SellerIDFromContext(r.Context()) != invoice.SellerID.String() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "invoice belongs to another account"))
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

// ListMyInvoices returns invoices addressed to the authenticated buyer.
func ListMyInvoices(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		buyerID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoices, err := svc.ListByBuyer(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoices)
	}
}

// SellerListInvoices returns invoices issued by the authenticated seller's shop.
func SellerListInvoices(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		sellerID, err := requesterSellerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoices, err := svc.ListBySeller(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoices)
	}
}

type updateInvoiceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminUpdateInvoiceStatus moves an invoice through its lifecycle.
func AdminUpdateInvoiceStatus(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		invoiceID, err := pathUUID(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateInvoiceStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next, err := enums.ParseInvoiceStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		invoice, err := svc.UpdateStatus(r.Context(), invoiceID, next)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

// AdminCreateCreditNote issues a credit note reversing an invoice.
func AdminCreateCreditNote(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		invoiceID, err := pathUUID(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		creditNote, err := svc.CreateCreditNote(r.Context(), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, creditNote)
	}
}
