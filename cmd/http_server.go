package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/activity"
	activityPostgres "github.com/frahmantamala/admin-dashboard/internal/activity/postgres"
	"github.com/frahmantamala/admin-dashboard/internal/auth"
	authPostgres "github.com/frahmantamala/admin-dashboard/internal/auth/postgres"
	"github.com/frahmantamala/admin-dashboard/internal/core/events"
	"github.com/frahmantamala/admin-dashboard/internal/filestore"
	"github.com/frahmantamala/admin-dashboard/internal/folder"
	folderPostgres "github.com/frahmantamala/admin-dashboard/internal/folder/postgres"
	"github.com/frahmantamala/admin-dashboard/internal/invitation"
	invitationPostgres "github.com/frahmantamala/admin-dashboard/internal/invitation/postgres"
	"github.com/frahmantamala/admin-dashboard/internal/organization"
	organizationPostgres "github.com/frahmantamala/admin-dashboard/internal/organization/postgres"
	"github.com/frahmantamala/admin-dashboard/internal/report"
	reportPostgres "github.com/frahmantamala/admin-dashboard/internal/report/postgres"
	"github.com/frahmantamala/admin-dashboard/internal/system"
	systemPostgres "github.com/frahmantamala/admin-dashboard/internal/system/postgres"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
	"github.com/frahmantamala/admin-dashboard/internal/transport/middleware"
	"github.com/frahmantamala/admin-dashboard/internal/transport/rest"
	"github.com/frahmantamala/admin-dashboard/internal/user"
	userPostgres "github.com/frahmantamala/admin-dashboard/internal/user/postgres"

	"github.com/go-chi/chi"
	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Redis    *redis.Client
	EventBus *events.EventBus
	Store    filestore.Store
	Registry *prometheus.Registry
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "env", deps.Config.Env, "storage", deps.Config.Storage.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.close(ctx)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

// close drains pending event handlers before the pools they use go away.
func (d *Dependencies) close(ctx context.Context) {
	if err := d.EventBus.Close(ctx); err != nil {
		d.Logger.Error("Event bus close error", "error", err)
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	activityService := activity.NewService(activityPostgres.NewActivityRepository(deps.Gorm), lg, deps.Registry)

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)
	authService := auth.NewService(authPostgres.NewRepository(deps.Gorm), tokens, activityService, deps.EventBus, lg, cfg.Security)

	organizationService := organization.NewService(organizationPostgres.NewOrganizationRepository(deps.Gorm), activityService, lg, cfg.Security.BCryptCost)
	userService := user.NewService(userPostgres.NewUserRepository(deps.Gorm), activityService, lg, cfg.Security.BCryptCost)
	folderService := folder.NewService(folderPostgres.NewFolderRepository(deps.Gorm), activityService, lg)
	reportService := report.NewService(reportPostgres.NewReportRepository(deps.Gorm), deps.Store, activityService, lg, cfg.Storage.MaxUploadBytes)
	invitationService := invitation.NewService(invitationPostgres.NewInvitationRepository(deps.Gorm), activityService, deps.EventBus, lg, cfg.Security.InvitationTTL)
	systemService := system.NewService(systemPostgres.NewSystemRepository(deps.DB), lg)

	invitation.NewNotifier(lg, cfg.Server.BaseURL).RegisterEventHandlers(deps.EventBus)

	opts := rest.Options{
		Health:         rest.NewHealthHandler(deps.DB.DB, deps.Redis),
		AllowedOrigins: cfg.Server.Origins(),
		RequestTimeout: cfg.Server.RequestTimeout,
		OpenAPIPath:    cfg.Server.OpenAPIPath,
	}
	if cfg.Observability.Metrics.Enabled {
		opts.Metrics = middleware.NewHTTPMetrics(deps.Registry)
		opts.MetricsPath = cfg.Observability.Metrics.Path
	}
	if deps.Redis != nil {
		opts.AuthLimiter = middleware.NewRedisLimiter(deps.Redis, cfg.RateLimit.RequestsPerMinute)
	} else {
		opts.AuthLimiter = middleware.NewLocalLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, cfg.RateLimit.LRUSize)
	}

	rest.RegisterAllRoutes(deps.Router, rest.Handlers{
		Auth:         auth.NewHandler(base, authService),
		Organization: organization.NewHandler(base, organizationService),
		User:         user.NewHandler(base, userService),
		Folder:       folder.NewHandler(base, folderService),
		Report:       report.NewHandler(base, reportService),
		Activity:     activity.NewHandler(base, activityService),
		Invitation:   invitation.NewHandler(base, invitationService),
		System:       system.NewHandler(base, systemService),
	}, opts, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, lg, err := setup()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db, lg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	store, err := filestore.New(context.Background(), config.Storage)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}

	var redisClient *redis.Client
	if config.Redis.Enabled() {
		redisClient, err = initRedis(config.Redis)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
	}

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		Gorm:     gormDB,
		Redis:    redisClient,
		EventBus: events.NewEventBus(lg),
		Store:    store,
		Registry: prometheus.NewRegistry(),
		Router:   chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers gorm over the existing pool so both share connections.
func initGorm(db *sqlx.DB, lg *slog.Logger) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(slog.NewLogLogger(lg.Handler(), slog.LevelWarn), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
}

func initRedis(cfg internal.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
