package access

import (
	"context"
	"strconv"
	"strings"

	"github.com/frahmantamala/admin-dashboard/internal"
)

var errInvalidOrganizationID = internal.NewValidationError("organizationId must be a positive integer", internal.ErrCodeInvalidID)

// ResolveScope returns the organization a request operates on.
//
// Superadmins must name the organization explicitly. Everyone else is pinned
// to their own organization and whatever they requested is ignored.
func ResolveScope(user *internal.User, requested *int64) (int64, error) {
	if user == nil {
		return 0, internal.ErrUnauthenticated
	}
	if user.IsSuperadmin() {
		if requested == nil {
			return 0, internal.ErrOrganizationRequired
		}
		return *requested, nil
	}
	if user.OrganizationID == nil {
		return 0, internal.ErrNoOrganizationAccess
	}
	return *user.OrganizationID, nil
}

// ParseOrganizationID parses an optional organization id. Empty input yields nil.
func ParseOrganizationID(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, errInvalidOrganizationID
	}
	return &id, nil
}

// ResolveScopeFromQuery combines ParseOrganizationID and ResolveScope. A
// malformed id only matters to superadmins, since nobody else can choose.
func ResolveScopeFromQuery(user *internal.User, raw string) (int64, error) {
	requested, err := ParseOrganizationID(raw)
	if err != nil {
		if user.IsSuperadmin() {
			return 0, err
		}
		requested = nil
	}
	return ResolveScope(user, requested)
}

// ResolveScopeFrom prefers an organization id carried in a request body and
// falls back to the organizationId query parameter.
func ResolveScopeFrom(user *internal.User, requested *int64, rawQuery string) (int64, error) {
	if requested != nil {
		return ResolveScope(user, requested)
	}
	return ResolveScopeFromQuery(user, rawQuery)
}

// OrganizationChecker reports whether a live, not soft-deleted, organization exists.
type OrganizationChecker interface {
	OrganizationExists(ctx context.Context, organizationID int64) (bool, error)
}

// EnsureOrganization rejects a superadmin-chosen scope that names a missing or
// deleted organization. Everyone else is pinned to their own organization, so
// no lookup is made for them.
func EnsureOrganization(ctx context.Context, checker OrganizationChecker, actor *internal.User, organizationID int64) error {
	if !actor.IsSuperadmin() {
		return nil
	}
	exists, err := checker.OrganizationExists(ctx, organizationID)
	if err != nil {
		return internal.NewInternalError("failed to check organization", err)
	}
	if !exists {
		return internal.ErrOrganizationNotFound
	}
	return nil
}
