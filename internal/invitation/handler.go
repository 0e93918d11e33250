package invitation

import (
	"context"
	"net/http"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/access"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor *internal.User, organizationID int64, dto CreateInvitationDTO) (*Invitation, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// CreateInvitation handles POST /invitations
func (h *Handler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := access.RequireAdmin(actor); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto CreateInvitationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	orgID, err := access.ResolveScopeFrom(actor, dto.OrganizationID, r.URL.Query().Get("organizationId"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	invitation, err := h.Service.Create(r.Context(), actor, orgID, dto)
	if err != nil {
		h.Logger.Warn("CreateInvitation: failed to create invitation", "error", err, "organization_id", orgID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, invitation)
}
