package controllers

import (
	"net/http"
	"strings"

	"github.com/ayoubterari/entrecoiffeur-backend/api/middleware"
	"github.com/ayoubterari/entrecoiffeur-backend/api/responses"
	"github.com/ayoubterari/entrecoiffeur-backend/api/validators"
	supportsvc "github.com/ayoubterari/entrecoiffeur-backend/internal/support"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/logger"
)

type createTicketRequest struct {
	Subject  string `json:"subject" validate:"required"`
	Message  string `json:"message" validate:"required"`
	Priority string `json:"priority,omitempty"`
}

// CreateSupportTicket opens a new ticket for the authenticated user.
func CreateSupportTicket(svc supportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "support service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createTicketRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := supportsvc.CreateInput{
			UserID:  userID,
			Subject: validators.SanitizeString(payload.Subject, 200),
			Message: validators.SanitizeString(payload.Message, 5000),
		}
		if raw := strings.TrimSpace(payload.Priority); raw != "" {
			priority, err := enums.ParseTicketPriority(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority"))
				return
			}
			input.Priority = priority
		}

		ticket, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ticket)
	}
}

// GetSupportTicket serves one ticket to its requester or to staff.
func GetSupportTicket(svc supportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "support service unavailable"))
			return
		}

		ticketID, err := pathUUID(r, "ticketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ticket, err := svc.Get(r.Context(), ticketID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !isAdmin(r) && middleware.UserIDFromContext(r.Context()) != ticket.UserID.String() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "ticket belongs to another account"))
			return
		}
		responses.WriteSuccess(w, ticket)
	}
}

// ListMySupportTickets returns the authenticated user's tickets.
func ListMySupportTickets(svc supportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "support service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tickets, err := svc.ListByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tickets)
	}
}

// AdminListSupportTickets returns the queue filtered by status.
func AdminListSupportTickets(svc supportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "support service unavailable"))
			return
		}

		limit, err := parseLimit(r, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := strings.TrimSpace(r.URL.Query().Get("status"))
		tickets, err := svc.ListByStatus(r.Context(), status, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tickets)
	}
}

type ticketReplyRequest struct {
	Body string `json:"body" validate:"required"`
}

// ReplySupportTicket appends a message to a ticket thread. Staff replies flip
// the ticket back to pending for the requester.
func ReplySupportTicket(svc supportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "support service unavailable"))
			return
		}

		authorID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ticketID, err := pathUUID(r, "ticketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ticketReplyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.Reply(r.Context(), supportsvc.ReplyInput{
			TicketID:  ticketID,
			AuthorID:  authorID,
			FromStaff: isAdmin(r),
			Body:      validators.SanitizeString(payload.Body, 5000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

type updateTicketStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminUpdateTicketStatus moves a ticket forward through its lifecycle.
func AdminUpdateTicketStatus(svc supportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "support service unavailable"))
			return
		}

		ticketID, err := pathUUID(r, "ticketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateTicketStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next, err := enums.ParseTicketStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		ticket, err := svc.UpdateStatus(r.Context(), ticketID, next)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ticket)
	}
}
