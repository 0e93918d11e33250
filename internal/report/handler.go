package report

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/access"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
)

// multipart overhead allowed on top of the file itself
const formOverhead = 1 << 20

type ServiceAPI interface {
	List(ctx context.Context, actor *internal.User, organizationID int64) ([]*Report, error)
	ListStarred(ctx context.Context, actor *internal.User) ([]*Report, error)
	DataSources(ctx context.Context, actor *internal.User, organizationID int64) ([]*Report, error)
	Get(ctx context.Context, actor *internal.User, id int64) (*Report, error)
	Create(ctx context.Context, actor *internal.User, organizationID int64, dto CreateReportDTO) (*Report, error)
	Update(ctx context.Context, actor *internal.User, id int64, dto UpdateReportDTO) (*Report, error)
	SetStar(ctx context.Context, actor *internal.User, id int64, starred *bool) (*Report, error)
	ListPermissions(ctx context.Context, actor *internal.User, id int64) ([]*Permission, error)
	GrantPermission(ctx context.Context, actor *internal.User, id int64, dto GrantPermissionDTO) (*Permission, error)
	Upload(ctx context.Context, actor *internal.User, organizationID int64, in UploadInput) (*Report, error)
	Download(ctx context.Context, actor *internal.User, id int64) (*Download, error)
	MaxUploadBytes() int64
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

// ListReports handles GET /reports
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var reports []*Report
	if r.URL.Query().Get("starred") == "true" {
		reports, err = h.Service.ListStarred(r.Context(), actor)
	} else {
		var orgID int64
		orgID, err = access.ResolveScopeFromQuery(actor, r.URL.Query().Get("organizationId"))
		if err == nil {
			reports, err = h.Service.List(r.Context(), actor, orgID)
		}
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ReportsResponse{Reports: reports})
}

// ListDataSources handles GET /reports/data-sources
func (h *Handler) ListDataSources(w http.ResponseWriter, r *http.Request) {
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

	reports, err := h.Service.DataSources(r.Context(), actor, orgID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ReportsResponse{Reports: reports})
}

// GetReport handles GET /reports/{id}
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	report, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

// CreateReport handles POST /reports
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto CreateReportDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	orgID, err := access.ResolveScopeFrom(actor, dto.OrganizationID, r.URL.Query().Get("organizationId"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	report, err := h.Service.Create(r.Context(), actor, orgID, dto)
	if err != nil {
		h.Logger.Warn("CreateReport: failed to create report", "error", err, "organization_id", orgID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, report)
}

// UpdateReport handles PATCH /reports/{id}
func (h *Handler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto UpdateReportDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	report, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

// StarReport handles PATCH /reports/{id}/star
func (h *Handler) StarReport(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto StarReportDTO
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.HandleServiceError(w, err)
			return
		}
	}

	report, err := h.Service.SetStar(r.Context(), actor, id, dto.Starred)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

// ListPermissions handles GET /reports/{id}/permissions
func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	permissions, err := h.Service.ListPermissions(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PermissionsResponse{Permissions: permissions})
}

// GrantPermission handles POST /reports/{id}/permissions
func (h *Handler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto GrantPermissionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	permission, err := h.Service.GrantPermission(r.Context(), actor, id, dto)
	if err != nil {
		h.Logger.Warn("GrantPermission: grant rejected", "error", err, "report_id", id, "actor_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, permission)
}

// UploadReport handles POST /reports/upload
func (h *Handler) UploadReport(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	maxBytes := h.Service.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+formOverhead)
	if err := r.ParseMultipartForm(formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.HandleServiceError(w, NewFileTooLargeError(maxBytes))
			return
		}
		h.HandleServiceError(w, internal.NewValidationError("invalid multipart form", internal.ErrCodeInvalidRequest))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.HandleServiceError(w, ErrNoFile)
		return
	}
	defer file.Close()

	var requested *int64
	if raw := r.FormValue("organizationId"); raw != "" {
		requested, err = access.ParseOrganizationID(raw)
		if err != nil && actor.IsSuperadmin() {
			h.HandleServiceError(w, err)
			return
		}
	}
	orgID, err := access.ResolveScopeFrom(actor, requested, r.URL.Query().Get("organizationId"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	in := UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
		Name:        r.FormValue("name"),
	}
	if raw := r.FormValue("folderId"); raw != "" {
		folderID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || folderID <= 0 {
			h.HandleServiceError(w, internal.NewValidationFieldError("folderId", "folderId must be a positive integer", internal.ErrCodeInvalidID))
			return
		}
		in.FolderID = &folderID
	}

	report, err := h.Service.Upload(r.Context(), actor, orgID, in)
	if err != nil {
		h.Logger.Warn("UploadReport: upload rejected", "error", err, "filename", header.Filename)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, report)
}

// DownloadReport handles GET /reports/{id}/download
func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	download, err := h.Service.Download(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	defer download.Body.Close()

	w.Header().Set("Content-Type", download.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": download.Filename}))
	if download.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(download.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, download.Body); err != nil {
		h.Logger.Error("DownloadReport: failed to stream file", "error", err, "report_id", id)
	}
}

func (h *Handler) actorAndID(w http.ResponseWriter, r *http.Request) (*internal.User, int64, bool) {
	actor, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return nil, 0, false
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return nil, 0, false
	}
	return actor, id, true
}
