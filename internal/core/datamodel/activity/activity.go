package activity

import "time"

type ActivityLog struct {
	ID             int64                  `gorm:"primaryKey"`
	UserID         int64                  `gorm:"column:user_id;not null"`
	OrganizationID int64                  `gorm:"column:organization_id;not null;index"`
	Action         string                 `gorm:"column:action;not null"`
	Resource       *string                `gorm:"column:resource"`
	ResourceID     *string                `gorm:"column:resource_id"`
	Metadata       map[string]interface{} `gorm:"column:metadata;serializer:json"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
