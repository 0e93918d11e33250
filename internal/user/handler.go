package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/access"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *internal.User, organizationID int64) ([]*User, error)
	Create(ctx context.Context, actor *internal.User, dto CreateUserDTO) (*User, error)
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

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	orgID, err := access.ResolveScopeFromQuery(actor, r.URL.Query().Get("organizationId"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	users, err := h.Service.List(r.Context(), actor, orgID)
	if err != nil {
		h.Logger.Error("ListUsers: failed to list users", "error", err, "organization_id", orgID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, UsersResponse{Users: users})
}

// CreateUser handles POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto CreateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if dto.OrganizationID == nil && actor.IsSuperadmin() {
		requested, err := access.ParseOrganizationID(r.URL.Query().Get("organizationId"))
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		dto.OrganizationID = requested
	}

	created, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.Logger.Warn("CreateUser: failed to create user", "error", err, "actor_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}
