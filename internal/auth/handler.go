package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
	"github.com/frahmantamala/admin-dashboard/pkg/logger"
)

type ServiceAPI interface {
	ResolveIdentity(ctx context.Context, bearer string) (*internal.User, error)
	Authenticate(ctx context.Context, dto LoginDTO) (*AuthResponse, error)
	Register(ctx context.Context, dto RegisterDTO) (*AuthResponse, error)
	ForgotPassword(ctx context.Context, dto ForgotPasswordDTO, requester *internal.User) (*MessageResponse, error)
	ResetPassword(ctx context.Context, dto ResetPasswordDTO) (*MessageResponse, error)
	Me(ctx context.Context, user *internal.User) (*internal.User, error)
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

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("Login: authentication failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("Register: failed to accept invitation", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var dto ForgotPasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	requester, _ := internal.UserFromContext(r.Context())
	resp, err := h.Service.ForgotPassword(r.Context(), dto, requester)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var dto ResetPasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp, err := h.Service.ResetPassword(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("ResetPassword: failed to reset password", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.CurrentUser(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	me, err := h.Service.Me(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, me)
}

// AuthMiddleware resolves the bearer token into the live user and rejects
// the request when that fails.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.Debug("auth middleware: missing authorization token")
			h.HandleServiceError(w, internal.ErrUnauthenticated)
			return
		}

		user, err := h.Service.ResolveIdentity(r.Context(), token)
		if err != nil {
			h.Logger.Warn("auth middleware: token rejected", "error", err, "token_prefix", tokenPrefix(token))
			h.HandleServiceError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), user)))
	})
}

// OptionalAuthMiddleware attaches the identity when one can be resolved and
// otherwise lets the request through anonymously.
func (h *Handler) OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := h.Service.ResolveIdentity(r.Context(), token)
		if err != nil {
			h.Logger.Debug("optional auth: continuing anonymously", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), user)))
	})
}

func withIdentity(ctx context.Context, user *internal.User) context.Context {
	ctx = internal.ContextWithUser(ctx, user)
	return logger.WithIdentity(ctx, user.ID, user.OrganizationID, string(user.Role))
}

func tokenPrefix(token string) string {
	if len(token) > 20 {
		return token[:20]
	}
	return token
}
