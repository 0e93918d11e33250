package invitation

import (
	"strings"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/core/common/validation"
)

type CreateInvitationDTO struct {
	Email          string `json:"email"`
	Role           string `json:"role"`
	OrganizationID *int64 `json:"organizationId,omitempty"`
}

func (d *CreateInvitationDTO) Validate() *internal.AppError {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Role = strings.ToLower(strings.TrimSpace(d.Role))
	if d.Role == "" {
		d.Role = string(internal.RoleUser)
	}

	v := validation.NewValidator()
	v.Field("email", d.Email).Required().MaxLength(254).Email()
	v.Field("role", d.Role).Custom(func(value interface{}) *internal.AppError {
		if internal.Role(value.(string)).Valid() {
			return nil
		}
		return internal.NewValidationFieldError("role", "role must be one of: admin, user", internal.ErrCodeInvalidRole)
	})
	return v.Validate()
}
