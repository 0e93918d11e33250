package report

import "time"

type Report struct {
	ID             int64     `gorm:"primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	FileType       string    `gorm:"column:file_type;not null"`
	FileSize       *int64    `gorm:"column:file_size"`
	FilePath       *string   `gorm:"column:file_path"`
	FolderID       *int64    `gorm:"column:folder_id"`
	OrganizationID int64     `gorm:"column:organization_id;not null;index"`
	CreatedBy      int64     `gorm:"column:created_by;not null"`
	IsStarred      bool      `gorm:"column:is_starred;not null"`
	ViewCount      int64     `gorm:"column:view_count;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Report) TableName() string {
	return "reports"
}

type ReportPermission struct {
	ID         int64     `gorm:"primaryKey"`
	ReportID   int64     `gorm:"column:report_id;not null;uniqueIndex:idx_report_permissions_report_user"`
	UserID     int64     `gorm:"column:user_id;not null;uniqueIndex:idx_report_permissions_report_user"`
	Permission string    `gorm:"column:permission;not null"`
	GrantedBy  int64     `gorm:"column:granted_by;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ReportPermission) TableName() string {
	return "report_permissions"
}
