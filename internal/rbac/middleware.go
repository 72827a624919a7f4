package rbac

import (
	"log/slog"
	"net/http"

	"github.com/tasktrail/tasktrail/internal/platform/httpx"
	"github.com/tasktrail/tasktrail/internal/shared"
)

// Middleware wires role-level authorization helpers for HTTP handlers.
// It is the coarse capability gate; the services run their own finer-grained
// closure and ownership checks after it has passed.
type Middleware struct {
	Logger *slog.Logger
}

// RequireLevel ensures the current principal holds at least the given role level.
func (m Middleware) RequireLevel(min int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			if !AtLeast(principal.RoleLevel, min) {
				if m.Logger != nil {
					m.Logger.Warn("insufficient role level",
						slog.String("user_id", principal.UserID.String()),
						slog.Int("role_level", principal.RoleLevel),
						slog.Int("required", min),
					)
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient role level")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
