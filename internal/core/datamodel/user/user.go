package user

import "time"

type User struct {
	ID             int64      `gorm:"primaryKey"`
	Username       string     `gorm:"column:username;uniqueIndex;not null"`
	Email          string     `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash   string     `gorm:"column:password_hash;not null"`
	Name           string     `gorm:"column:name;not null"`
	Role           string     `gorm:"column:role;not null"`
	OrganizationID *int64     `gorm:"column:organization_id;index"`
	IsActive       bool       `gorm:"column:is_active;not null"`
	LastActiveAt   *time.Time `gorm:"column:last_active_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
