package invitation

import "time"

const (
	PurposeInvite        = "invite"
	PurposePasswordReset = "password_reset"
)

type UserInvitation struct {
	ID             int64     `gorm:"primaryKey"`
	Email          string    `gorm:"column:email;not null;index"`
	Role           string    `gorm:"column:role;not null"`
	OrganizationID *int64    `gorm:"column:organization_id"`
	InvitedBy      int64     `gorm:"column:invited_by;not null"`
	Token          string    `gorm:"column:token;uniqueIndex;not null"`
	Purpose        string    `gorm:"column:purpose;not null"`
	IsAccepted     bool      `gorm:"column:is_accepted;not null"`
	ExpiresAt      time.Time `gorm:"column:expires_at;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (UserInvitation) TableName() string {
	return "user_invitations"
}

// Expired reports whether the token is past its expiry at now.
func (i *UserInvitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
