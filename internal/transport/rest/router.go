package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal/activity"
	"github.com/frahmantamala/admin-dashboard/internal/auth"
	"github.com/frahmantamala/admin-dashboard/internal/folder"
	"github.com/frahmantamala/admin-dashboard/internal/invitation"
	"github.com/frahmantamala/admin-dashboard/internal/organization"
	"github.com/frahmantamala/admin-dashboard/internal/report"
	"github.com/frahmantamala/admin-dashboard/internal/system"
	"github.com/frahmantamala/admin-dashboard/internal/transport/middleware"
	"github.com/frahmantamala/admin-dashboard/internal/transport/swagger"
	"github.com/frahmantamala/admin-dashboard/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups the resource handlers mounted under /api/v1.
type Handlers struct {
	Auth         *auth.Handler
	Organization *organization.Handler
	User         *user.Handler
	Folder       *folder.Handler
	Report       *report.Handler
	Activity     *activity.Handler
	Invitation   *invitation.Handler
	System       *system.Handler
}

type Options struct {
	Health         *HealthHandler
	Metrics        *middleware.HTTPMetrics // nil disables instrumentation and the scrape route
	MetricsPath    string
	AuthLimiter    middleware.Limiter // nil disables rate limiting on /auth
	AllowedOrigins []string
	RequestTimeout time.Duration
	OpenAPIPath    string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) {
	rbac := auth.NewRBACAuthorization(logger)

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Instrument)
	}
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.Timeout(opts.RequestTimeout))

	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, opts.Metrics.Handler())
	}

	// Serve OpenAPI spec at root (outside API prefix)
	if opts.OpenAPIPath != "" {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, opts.OpenAPIPath)
		})
		router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))
	}

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Health != nil {
			r.Get("/health", opts.Health.Check)
			r.Get("/ping", opts.Health.Ping)
		}

		r.Route("/auth", func(ar chi.Router) {
			if opts.AuthLimiter != nil {
				ar.Use(middleware.RateLimit(opts.AuthLimiter, logger))
			}
			ar.Post("/login", h.Auth.Login)
			ar.Post("/register", h.Auth.Register)
			ar.With(h.Auth.OptionalAuthMiddleware).Post("/forgot-password", h.Auth.ForgotPassword)
			ar.Post("/reset-password", h.Auth.ResetPassword)
			ar.With(h.Auth.AuthMiddleware).Get("/me", h.Auth.Me)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/organizations", func(or chi.Router) {
				or.Use(rbac.RequireSuperadmin())
				or.Get("/", h.Organization.ListOrganizations)
				or.Post("/", h.Organization.CreateOrganization)
				or.Get("/{id}", h.Organization.GetOrganization)
				or.Patch("/{id}", h.Organization.UpdateOrganization)
				or.Delete("/{id}", h.Organization.DeleteOrganization)
			})

			pr.Route("/users", func(ur chi.Router) {
				ur.Use(rbac.RequireAdmin())
				ur.Get("/", h.User.ListUsers)
				ur.Post("/", h.User.CreateUser)
			})

			pr.Route("/folders", func(fr chi.Router) {
				fr.Get("/", h.Folder.ListFolders)
				fr.With(rbac.RequireAdmin()).Post("/", h.Folder.CreateFolder)
			})

			pr.Route("/reports", func(rr chi.Router) {
				rr.Get("/", h.Report.ListReports)
				rr.Post("/", h.Report.CreateReport)
				rr.Post("/upload", h.Report.UploadReport)
				rr.Get("/data-sources", h.Report.ListDataSources)

				rr.Route("/{id}", func(ir chi.Router) {
					ir.Get("/", h.Report.GetReport)
					ir.Patch("/", h.Report.UpdateReport)
					ir.Get("/download", h.Report.DownloadReport)
					ir.Patch("/star", h.Report.StarReport)
					ir.Get("/permissions", h.Report.ListPermissions)
					ir.With(rbac.RequireAdmin()).Post("/permissions", h.Report.GrantPermission)
				})
			})

			pr.With(rbac.RequireAdmin()).Get("/activity", h.Activity.ListActivity)
			pr.With(rbac.RequireAdmin()).Post("/invitations", h.Invitation.CreateInvitation)

			pr.Route("/system", func(sr chi.Router) {
				sr.Use(rbac.RequireSuperadmin())
				sr.Get("/metrics", h.System.GetMetrics)
				sr.Get("/activity", h.System.GetActivity)
			})
		})
	})
}
