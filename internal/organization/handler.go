package organization

import (
	"context"
	"net/http"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *internal.User) ([]OrganizationResponse, error)
	Get(ctx context.Context, actor *internal.User, id int64) (*OrganizationResponse, error)
	Create(ctx context.Context, actor *internal.User, dto CreateOrganizationDTO) (*CreateOrganizationResponse, error)
	Update(ctx context.Context, actor *internal.User, id int64, dto UpdateOrganizationDTO) (*OrganizationResponse, error)
	Delete(ctx context.Context, actor *internal.User, id int64) error
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

// ListOrganizations handles GET /organizations
func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	orgs, err := h.Service.List(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, OrganizationsResponse{Organizations: orgs})
}

// GetOrganization handles GET /organizations/{id}
func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	org, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, org)
}

// CreateOrganization handles POST /organizations
func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto CreateOrganizationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	created, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.Logger.Warn("CreateOrganization: failed to create organization", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

// UpdateOrganization handles PATCH /organizations/{id}
func (h *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateOrganizationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	updated, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

// DeleteOrganization handles DELETE /organizations/{id}
func (h *Handler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.Logger.Warn("DeleteOrganization: failed to delete organization", "error", err, "organization_id", id)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Organization deleted successfully"})
}
