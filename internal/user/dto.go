package user

import (
	"strings"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/core/common/validation"
)

type CreateUserDTO struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	OrganizationID *int64 `json:"organizationId,omitempty"`
}

func (d *CreateUserDTO) Validate() *internal.AppError {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Username = strings.TrimSpace(d.Username)
	d.Name = strings.TrimSpace(d.Name)
	if d.Role == "" {
		d.Role = string(internal.RoleUser)
	}

	v := validation.NewValidator()
	v.Field("username", d.Username).Required().MinLength(3).MaxLength(100)
	v.Field("email", d.Email).Required().MaxLength(254).Email()
	v.Field("password", d.Password).Required().Password()
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("role", d.Role).Custom(func(value interface{}) *internal.AppError {
		if internal.Role(value.(string)).Valid() {
			return nil
		}
		return internal.NewValidationFieldError("role", "role must be one of: superadmin, admin, user", internal.ErrCodeInvalidRole)
	})
	return v.Validate()
}

type UsersResponse struct {
	Users []*User `json:"users"`
}
