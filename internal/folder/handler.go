package folder

import (
	"context"
	"net/http"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/access"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *internal.User, organizationID int64) ([]*Folder, error)
	Create(ctx context.Context, actor *internal.User, organizationID int64, dto CreateFolderDTO) (*Folder, error)
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

// ListFolders handles GET /folders
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
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

	folders, err := h.Service.List(r.Context(), actor, orgID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, FoldersResponse{Folders: folders})
}

// CreateFolder handles POST /folders
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := access.RequireAdmin(actor); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto CreateFolderDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	orgID, err := access.ResolveScopeFrom(actor, dto.OrganizationID, r.URL.Query().Get("organizationId"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	created, err := h.Service.Create(r.Context(), actor, orgID, dto)
	if err != nil {
		h.Logger.Warn("CreateFolder: failed to create folder", "error", err, "organization_id", orgID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}
