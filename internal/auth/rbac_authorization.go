package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/access"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
)

// RBACAuthorization exposes the role gate as chi middleware.
type RBACAuthorization struct {
	base   *transport.BaseHandler
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		base:   transport.NewBaseHandler(logger),
		logger: logger,
	}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, roles ...internal.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := internal.UserFromContext(r.Context())
		if err := access.Authorize(user, roles...); err != nil {
			if user == nil {
				ra.logger.WarnContext(r.Context(), "authorization check failed: user not found in context")
			} else {
				ra.logger.WarnContext(r.Context(), "access denied: role not allowed",
					"user_id", user.ID,
					"role", user.Role,
					"required_roles", roles,
					"path", r.URL.Path)
			}
			ra.base.HandleServiceError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func (ra *RBACAuthorization) RequireRoles(roles ...internal.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, roles...)
	}
}

func (ra *RBACAuthorization) RequireSuperadmin() func(http.Handler) http.Handler {
	return ra.RequireRoles(internal.RoleSuperadmin)
}

// RequireAdmin admits admins and superadmins.
func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.RequireRoles(internal.RoleAdmin, internal.RoleSuperadmin)
}
