package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeInvitationCreated      = "invitation.created"
	EventTypePasswordResetRequested = "password_reset.requested"
)

type InvitationCreatedEvent struct {
	BaseEvent
	InvitationID   int64     `json:"invitation_id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	OrganizationID int64     `json:"organization_id"`
	InvitedBy      int64     `json:"invited_by"`
	Token          string    `json:"-"`
	ExpiresAt      time.Time `json:"expires_at"`
}

func NewInvitationCreatedEvent(invitationID int64, email, role string, organizationID, invitedBy int64, token string, expiresAt time.Time) *InvitationCreatedEvent {
	return &InvitationCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeInvitationCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"invitation_id":   invitationID,
				"email":           email,
				"role":            role,
				"organization_id": organizationID,
				"invited_by":      invitedBy,
				"expires_at":      expiresAt,
			},
		},
		InvitationID:   invitationID,
		Email:          email,
		Role:           role,
		OrganizationID: organizationID,
		InvitedBy:      invitedBy,
		Token:          token,
		ExpiresAt:      expiresAt,
	}
}

type PasswordResetRequestedEvent struct {
	BaseEvent
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewPasswordResetRequestedEvent(userID int64, email, token string, expiresAt time.Time) *PasswordResetRequestedEvent {
	return &PasswordResetRequestedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePasswordResetRequested,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"email":      email,
				"expires_at": expiresAt,
			},
		},
		UserID:    userID,
		Email:     email,
		Token:     token,
		ExpiresAt: expiresAt,
	}
}
