package report

import (
	"strings"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/core/common/validation"
)

type CreateReportDTO struct {
	Name           string `json:"name"`
	FileType       string `json:"fileType"`
	FileSize       *int64 `json:"fileSize,omitempty"`
	FolderID       *int64 `json:"folderId,omitempty"`
	OrganizationID *int64 `json:"organizationId,omitempty"`
}

func (d *CreateReportDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	d.FileType = strings.ToLower(strings.TrimSpace(d.FileType))

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("fileType", d.FileType).Required().OneOf(FileTypes...)
	if d.FileSize != nil {
		v.Field("fileSize", *d.FileSize).Custom(nonNegative("fileSize"))
	}
	if d.FolderID != nil {
		v.Field("folderId", *d.FolderID).Custom(positiveID("folderId"))
	}
	return v.Validate()
}

// UpdateReportDTO renames or moves a report. A folderId of 0 moves it to the
// top level.
type UpdateReportDTO struct {
	Name     *string `json:"name,omitempty"`
	FolderID *int64  `json:"folderId,omitempty"`
}

func (d *UpdateReportDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		name := strings.TrimSpace(*d.Name)
		d.Name = &name
		v.Field("name", name).Required().MaxLength(255)
	}
	if d.FolderID != nil {
		v.Field("folderId", *d.FolderID).Custom(nonNegative("folderId"))
	}
	return v.Validate()
}

type StarReportDTO struct {
	Starred *bool `json:"starred"`
}

type GrantPermissionDTO struct {
	UserID     int64  `json:"userId"`
	Permission string `json:"permission"`
}

func (d *GrantPermissionDTO) Validate() *internal.AppError {
	d.Permission = strings.ToLower(strings.TrimSpace(d.Permission))

	v := validation.NewValidator()
	v.Field("userId", d.UserID).Custom(positiveID("userId"))
	v.Field("permission", d.Permission).Required()
	return v.Validate()
}

type ReportsResponse struct {
	Reports []*Report `json:"reports"`
}

type PermissionsResponse struct {
	Permissions []*Permission `json:"permissions"`
}

func positiveID(field string) func(interface{}) *internal.AppError {
	return func(value interface{}) *internal.AppError {
		if id, ok := value.(int64); ok && id <= 0 {
			return internal.NewValidationFieldError(field, field+" must be a positive integer", internal.ErrCodeInvalidID)
		}
		return nil
	}
}

func nonNegative(field string) func(interface{}) *internal.AppError {
	return func(value interface{}) *internal.AppError {
		if n, ok := value.(int64); ok && n < 0 {
			return internal.NewValidationFieldError(field, field+" must not be negative", internal.ErrCodeValidationFailed)
		}
		return nil
	}
}
