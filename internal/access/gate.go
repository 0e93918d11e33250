package access

import (
	"github.com/frahmantamala/admin-dashboard/internal"
)

// Authorize admits user when its role is one of allowed.
func Authorize(user *internal.User, allowed ...internal.Role) error {
	if user == nil {
		return internal.ErrUnauthenticated
	}
	for _, role := range allowed {
		if user.Role == role {
			return nil
		}
	}
	return internal.ErrForbidden
}

// RequireAdmin admits admins and superadmins.
func RequireAdmin(user *internal.User) error {
	return Authorize(user, internal.RoleAdmin, internal.RoleSuperadmin)
}

func RequireSuperadmin(user *internal.User) error {
	return Authorize(user, internal.RoleSuperadmin)
}

// SameTenant rejects callers outside orgID. Superadmins cross every tenant.
func SameTenant(user *internal.User, orgID int64) error {
	if user == nil {
		return internal.ErrUnauthenticated
	}
	if user.IsSuperadmin() || user.InOrganization(orgID) {
		return nil
	}
	return internal.ErrCrossTenantAccess
}
