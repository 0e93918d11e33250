package user

import (
	"time"

	"github.com/frahmantamala/admin-dashboard/internal"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
)

type User struct {
	ID             int64         `json:"id"`
	Username       string        `json:"username"`
	Email          string        `json:"email"`
	Name           string        `json:"name"`
	Role           internal.Role `json:"role"`
	OrganizationID *int64        `json:"organizationId"`
	IsActive       bool          `json:"isActive"`
	LastActiveAt   *time.Time    `json:"lastActiveAt,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}

func (u *User) IsActiveUser() bool {
	return u.IsActive
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Name:           u.Name,
		Role:           internal.Role(u.Role),
		OrganizationID: u.OrganizationID,
		IsActive:       u.IsActive,
		LastActiveAt:   u.LastActiveAt,
		CreatedAt:      u.CreatedAt,
	}
}
