package folder

import "time"

type Folder struct {
	ID             int64     `gorm:"primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	ParentID       *int64    `gorm:"column:parent_id"`
	OrganizationID int64     `gorm:"column:organization_id;not null;index"`
	CreatedBy      int64     `gorm:"column:created_by;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Folder) TableName() string {
	return "folders"
}
