package report

import (
	"fmt"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal/access"
	reportDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/report"
)

type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypeXLSX FileType = "xlsx"
	FileTypeCSV  FileType = "csv"
	FileTypePPTX FileType = "pptx"
)

var FileTypes = []string{
	string(FileTypePDF),
	string(FileTypeDOCX),
	string(FileTypeXLSX),
	string(FileTypeCSV),
	string(FileTypePPTX),
}

// DataSourceTypes are the file types the chart builder can read.
var DataSourceTypes = []string{string(FileTypeCSV), string(FileTypeXLSX)}

type Report struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	FileType       FileType  `json:"fileType"`
	FileSize       *int64    `json:"fileSize"`
	FolderID       *int64    `json:"folderId"`
	OrganizationID int64     `json:"organizationId"`
	CreatedBy      int64     `json:"createdBy"`
	IsStarred      bool      `json:"isStarred"`
	ViewCount      int64     `json:"viewCount"`
	DownloadURL    string    `json:"downloadUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func FromDataModel(r *reportDatamodel.Report) *Report {
	out := &Report{
		ID:             r.ID,
		Name:           r.Name,
		FileType:       FileType(r.FileType),
		FileSize:       r.FileSize,
		FolderID:       r.FolderID,
		OrganizationID: r.OrganizationID,
		CreatedBy:      r.CreatedBy,
		IsStarred:      r.IsStarred,
		ViewCount:      r.ViewCount,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.FilePath != nil && *r.FilePath != "" {
		out.DownloadURL = fmt.Sprintf("/api/v1/reports/%d/download", r.ID)
	}
	return out
}

func refOf(r *reportDatamodel.Report) access.ReportRef {
	return access.ReportRef{ID: r.ID, OrganizationID: r.OrganizationID, CreatedBy: r.CreatedBy}
}

type Permission struct {
	ID         int64     `json:"id"`
	ReportID   int64     `json:"reportId"`
	UserID     int64     `json:"userId"`
	Permission string    `json:"permission"`
	GrantedBy  int64     `json:"grantedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

func PermissionFromDataModel(p *reportDatamodel.ReportPermission) *Permission {
	return &Permission{
		ID:         p.ID,
		ReportID:   p.ReportID,
		UserID:     p.UserID,
		Permission: p.Permission,
		GrantedBy:  p.GrantedBy,
		CreatedAt:  p.CreatedAt,
	}
}
