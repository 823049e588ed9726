package middleware

import (
	"net/http"

	"github.com/trefleapp/trefle-backend/api/responses"
	pkgerrors "github.com/trefleapp/trefle-backend/pkg/errors"
	"github.com/trefleapp/trefle-backend/pkg/logger"
)

func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return RequireAnyRole(logg, role)
}

// RequireAnyRole admits a request when the authenticated role matches any
// of the listed roles.
func RequireAnyRole(logg *logger.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actual := RoleFromContext(r.Context())
			for _, role := range roles {
				if actual == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
		})
	}
}
