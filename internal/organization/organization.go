package organization

import (
	"time"

	organizationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/organization"
)

const deletedSuffix = " (Deleted)"

type Organization struct {
	ID        int64
	Name      string
	Domain    *string
	Industry  *string
	Size      *string
	Settings  map[string]interface{}
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func (o *Organization) IsDeleted() bool {
	return o.DeletedAt != nil
}

func (o *Organization) ToResponse() OrganizationResponse {
	settings := o.Settings
	if settings == nil {
		settings = map[string]interface{}{}
	}
	return OrganizationResponse{
		ID:        o.ID,
		Name:      o.Name,
		Domain:    o.Domain,
		Industry:  o.Industry,
		Size:      o.Size,
		Settings:  settings,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func FromDataModel(o *organizationDatamodel.Organization) *Organization {
	return &Organization{
		ID:        o.ID,
		Name:      o.Name,
		Domain:    o.Domain,
		Industry:  o.Industry,
		Size:      o.Size,
		Settings:  o.Settings,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
		DeletedAt: o.DeletedAt,
	}
}
