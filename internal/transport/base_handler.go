package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/pkg/logger"
	"github.com/go-chi/chi"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    int         `json:"code"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.WriteJSON(w, status, ErrorResponse{Code: status, Message: message})
}

// HandleServiceError renders err. Only AppErrors are shown to the client;
// anything else becomes a generic 500.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		h.Logger.Error("unhandled service error", "error", err)
		h.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Error:   string(internal.ErrCodeInternal),
			Message: "internal server error",
		})
		return
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		h.Logger.Error("service error", "code", appErr.Code, "error", err)
	} else {
		h.Logger.Debug("request rejected", "code", appErr.Code, "status", appErr.StatusCode)
	}

	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	h.WriteJSON(w, status, ErrorResponse{
		Code:    status,
		Error:   string(appErr.Code),
		Message: appErr.GetDetailedMessage(),
		Details: appErr.Details,
	})
}

// DecodeJSON decodes the request body into dst.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return internal.NewValidationError("request body is required", internal.ErrCodeInvalidRequest)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return internal.NewValidationError("invalid request body", internal.ErrCodeInvalidRequest)
	}
	return nil
}

// CurrentUser returns the identity attached by the auth middleware.
func (h *BaseHandler) CurrentUser(r *http.Request) (*internal.User, error) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		return nil, internal.ErrUnauthenticated
	}
	return user, nil
}

// IDParam parses a positive integer URL parameter.
func (h *BaseHandler) IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationError("invalid "+name, internal.ErrCodeInvalidID)
	}
	return id, nil
}

// QueryInt reads an integer query parameter, returning def when absent or malformed.
func (h *BaseHandler) QueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}

	return strings.TrimSpace(authHeader[7:])
}
