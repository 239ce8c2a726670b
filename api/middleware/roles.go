package middleware

import (
	"net/http"

	"github.com/ayoubterari/entrecoiffeur-backend/api/responses"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/logger"
)

// RequireAccountTypes filters requests by the account type carried in the JWT.
func RequireAccountTypes(logg *logger.Logger, allowed ...enums.AccountType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actual := AccountTypeFromContext(r.Context())
			for _, accountType := range allowed {
				if actual == string(accountType) {
					next.ServeHTTP(w, r)
					return
				}
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "account type not allowed"))
		})
	}
}
