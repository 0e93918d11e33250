package activity

import (
	"context"
	"net/http"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/access"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *internal.User, organizationID int64, limit int) ([]*Activity, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	user, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	orgID, err := access.ResolveScopeFromQuery(user, r.URL.Query().Get("organizationId"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	activities, err := h.Service.List(r.Context(), user, orgID, h.QueryInt(r, "limit", DefaultListLimit))
	if err != nil {
		h.Logger.Error("ListActivity: failed to list activity", "error", err, "organization_id", orgID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ActivitiesResponse{Activities: activities})
}
