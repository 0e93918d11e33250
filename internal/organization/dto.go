package organization

import (
	"strings"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/core/common/validation"
	"github.com/frahmantamala/admin-dashboard/internal/user"
)

type BootstrapAdminDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type CreateOrganizationDTO struct {
	Name     string                 `json:"name"`
	Domain   *string                `json:"domain,omitempty"`
	Industry *string                `json:"industry,omitempty"`
	Size     *string                `json:"size,omitempty"`
	Settings map[string]interface{} `json:"settings,omitempty"`
	Admin    *BootstrapAdminDTO     `json:"admin,omitempty"`
}

func (d *CreateOrganizationDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	if d.Admin != nil {
		d.Admin.Email = strings.ToLower(strings.TrimSpace(d.Admin.Email))
		d.Admin.Name = strings.TrimSpace(d.Admin.Name)
		d.Admin.Username = strings.TrimSpace(d.Admin.Username)
		if d.Admin.Username == "" {
			d.Admin.Username = localPart(d.Admin.Email)
		}
		v.Field("admin.email", d.Admin.Email).Required().MaxLength(254).Email()
		v.Field("admin.name", d.Admin.Name).Required().MaxLength(255)
		v.Field("admin.username", d.Admin.Username).Required().MinLength(3).MaxLength(100)
	}
	return v.Validate()
}

type UpdateOrganizationDTO struct {
	Name     *string                `json:"name,omitempty"`
	Domain   *string                `json:"domain,omitempty"`
	Industry *string                `json:"industry,omitempty"`
	Size     *string                `json:"size,omitempty"`
	Settings map[string]interface{} `json:"settings,omitempty"`
}

func (d *UpdateOrganizationDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		name := strings.TrimSpace(*d.Name)
		d.Name = &name
		v.Field("name", name).Required().MaxLength(255)
	}
	return v.Validate()
}

type OrganizationResponse struct {
	ID        int64                  `json:"id"`
	Name      string                 `json:"name"`
	Domain    *string                `json:"domain"`
	Industry  *string                `json:"industry"`
	Size      *string                `json:"size"`
	Settings  map[string]interface{} `json:"settings"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

type BootstrapAdminResponse struct {
	User              *user.User `json:"user"`
	TemporaryPassword string     `json:"temporaryPassword"`
}

type CreateOrganizationResponse struct {
	Organization OrganizationResponse    `json:"organization"`
	Admin        *BootstrapAdminResponse `json:"admin,omitempty"`
}

type OrganizationsResponse struct {
	Organizations []OrganizationResponse `json:"organizations"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func localPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
