package folder

import (
	"strings"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/core/common/validation"
)

type CreateFolderDTO struct {
	Name           string `json:"name"`
	ParentID       *int64 `json:"parentId,omitempty"`
	OrganizationID *int64 `json:"organizationId,omitempty"`
}

func (d *CreateFolderDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	if d.ParentID != nil {
		v.Field("parentId", *d.ParentID).Custom(func(value interface{}) *internal.AppError {
			if value.(int64) <= 0 {
				return internal.NewValidationFieldError("parentId", "parentId must be a positive integer", internal.ErrCodeInvalidID)
			}
			return nil
		})
	}
	return v.Validate()
}

type FoldersResponse struct {
	Folders []*Folder `json:"folders"`
}
