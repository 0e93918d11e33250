package internal

import "time"

type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// User is the resolved identity of a request. It is always rebuilt from the
// live user row, never from token claims.
type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	Name           string     `json:"name"`
	Role           Role       `json:"role"`
	OrganizationID *int64     `json:"organizationId"`
	IsActive       bool       `json:"isActive"`
	LastActiveAt   *time.Time `json:"lastActiveAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func (u *User) IsSuperadmin() bool {
	return u != nil && u.Role == RoleSuperadmin
}

func (u *User) IsAdmin() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleSuperadmin)
}

// InOrganization reports whether the user belongs to orgID.
func (u *User) InOrganization(orgID int64) bool {
	return u != nil && u.OrganizationID != nil && *u.OrganizationID == orgID
}
