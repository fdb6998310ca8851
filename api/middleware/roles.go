package middleware

import (
	"net/http"
	"slices"

	"github.com/angelmondragon/threadline-backend/api/responses"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
)

// RequireRole admits only operators holding one of roles. It must sit behind
// StaffAuth; an unauthenticated request is refused with 401, not 403.
func RequireRole(logg *logger.Logger, roles ...enums.StaffRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			staff, ok := StaffFromContext(r.Context())
			switch {
			case !ok:
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			case !slices.Contains(roles, staff.Role):
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role "+string(staff.Role)+" may not perform this action"))
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
