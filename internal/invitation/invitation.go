package invitation

import (
	"time"

	"github.com/frahmantamala/admin-dashboard/internal"
	invitationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/invitation"
)

const DefaultTTL = 7 * 24 * time.Hour

// Invitation is returned to the inviting admin. The token is shown once so it
// can be handed to the invitee.
type Invitation struct {
	ID             int64         `json:"id"`
	Email          string        `json:"email"`
	Role           internal.Role `json:"role"`
	OrganizationID int64         `json:"organizationId"`
	InvitedBy      int64         `json:"invitedBy"`
	Token          string        `json:"token"`
	ExpiresAt      time.Time     `json:"expiresAt"`
	CreatedAt      time.Time     `json:"createdAt"`
}

func FromDataModel(i *invitationDatamodel.UserInvitation) *Invitation {
	out := &Invitation{
		ID:        i.ID,
		Email:     i.Email,
		Role:      internal.Role(i.Role),
		InvitedBy: i.InvitedBy,
		Token:     i.Token,
		ExpiresAt: i.ExpiresAt,
		CreatedAt: i.CreatedAt,
	}
	if i.OrganizationID != nil {
		out.OrganizationID = *i.OrganizationID
	}
	return out
}
