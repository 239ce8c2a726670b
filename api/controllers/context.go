package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ayoubterari/entrecoiffeur-backend/api/middleware"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
)

func routeParam(r *http.Request, param string) string {
	return strings.TrimSpace(chi.URLParam(r, param))
}

// requesterID returns the authenticated user id from the request context.
func requesterID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}

// requesterSellerID returns the seller id claim seeded by the auth middleware.
func requesterSellerID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.SellerIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller context required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid seller id")
	}
	return id, nil
}

func isAdmin(r *http.Request) bool {
	return middleware.AccountTypeFromContext(r.Context()) == "admin"
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := routeParam(r, param)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, param+" required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}
