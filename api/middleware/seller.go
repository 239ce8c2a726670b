package middleware

import (
	"context"
	"net/http"

	"github.com/ayoubterari/entrecoiffeur-backend/api/responses"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/logger"
	"github.com/google/uuid"
)

type sellerLoader interface {
	GetSellerByID(ctx context.Context, id uuid.UUID) (*models.Seller, error)
}

// RequireActiveSeller checks the seller claim against the database so that a
// deactivated shop loses access without waiting for token expiry.
func RequireActiveSeller(loader sellerLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if loader == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seller loader unavailable"))
				return
			}

			rawID := SellerIDFromContext(ctx)
			if rawID == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "seller context required"))
				return
			}
			sellerID, err := uuid.Parse(rawID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid seller id"))
				return
			}

			seller, err := loader.GetSellerByID(ctx, sellerID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller"))
				return
			}
			if seller == nil || !seller.IsActive {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "seller account inactive"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
