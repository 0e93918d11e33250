package system

import (
	"context"
	"net/http"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
)

type ServiceAPI interface {
	Metrics(ctx context.Context, actor *internal.User) (*Metrics, error)
	Activity(ctx context.Context, actor *internal.User, limit int) ([]*ActivityEntry, error)
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

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	user, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	metrics, err := h.Service.Metrics(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, metrics)
}

func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	user, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	entries, err := h.Service.Activity(r.Context(), user, h.QueryInt(r, "limit", DefaultActivityLimit))
	if err != nil {
		h.Logger.Error("GetActivity: failed to list system activity", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ActivitiesResponse{Activities: entries})
}
