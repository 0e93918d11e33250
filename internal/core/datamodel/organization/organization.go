package organization

import "time"

type Organization struct {
	ID        int64                  `gorm:"primaryKey"`
	Name      string                 `gorm:"column:name;not null"`
	Domain    *string                `gorm:"column:domain"`
	Industry  *string                `gorm:"column:industry"`
	Size      *string                `gorm:"column:size"`
	Settings  map[string]interface{} `gorm:"column:settings;serializer:json"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt *time.Time             `gorm:"column:deleted_at"`
}

func (Organization) TableName() string {
	return "organizations"
}
