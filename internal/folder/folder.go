package folder

import (
	"time"

	folderDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/folder"
)

type Folder struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	ParentID       *int64    `json:"parentId"`
	OrganizationID int64     `json:"organizationId"`
	CreatedBy      int64     `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

func FromDataModel(f *folderDatamodel.Folder) *Folder {
	return &Folder{
		ID:             f.ID,
		Name:           f.Name,
		ParentID:       f.ParentID,
		OrganizationID: f.OrganizationID,
		CreatedBy:      f.CreatedBy,
		CreatedAt:      f.CreatedAt,
	}
}
