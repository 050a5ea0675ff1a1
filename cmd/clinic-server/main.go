package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/clinic/clinic/internal/assessment"
	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/content"
	"github.com/clinic/clinic/internal/domain/metrics"
	"github.com/clinic/clinic/internal/domain/reminder"
	"github.com/clinic/clinic/internal/domain/screening"
	"github.com/clinic/clinic/internal/domain/settings"
	"github.com/clinic/clinic/internal/domain/tracking"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/booking"
	"github.com/clinic/clinic/internal/platform/cache"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/middleware"
	"github.com/clinic/clinic/internal/platform/mongodb"
	"github.com/clinic/clinic/internal/platform/websocket"
	"github.com/clinic/clinic/migrations"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic site backend: screening, portal content and dashboard widgets",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(banksCmd())
	rootCmd.AddCommand(screenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// migrationsFS returns the embedded migrations, or dir when one is given.
func migrationsFS(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, migrationsFS(dir)).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to a migrations directory (default: embedded migrations)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrationsFS(dir)).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printMigrationStatus(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to a migrations directory (default: embedded migrations)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func printMigrationStatus(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

// buildRegistry returns the built-in assessments plus every YAML assessment
// in dir. An empty dir loads built-ins only.
func buildRegistry(dir string) (*assessment.Registry, error) {
	reg := assessment.DefaultRegistry()
	if dir == "" {
		return reg, nil
	}
	loaded, err := assessment.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, a := range loaded {
		if err := reg.Register(a); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// bookingLinker returns nil when no booking URL is configured so book
// actions are shown without a target.
func bookingLinker(base string) (assessment.BookingLinker, error) {
	if base == "" {
		return nil, nil
	}
	l, err := booking.NewLinker(base)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func banksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banks",
		Short: "Inspect assessment question banks",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate [dir]",
		Short: "Validate the built-in assessments and the YAML assessments in dir",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			reg, err := buildRegistry(dir)
			if err != nil {
				return err
			}
			printRegistry(cmd.OutOrStdout(), reg)
			return nil
		},
	})
	return cmd
}

func printRegistry(w io.Writer, reg *assessment.Registry) {
	for _, a := range reg.List() {
		fmt.Fprintf(w, "ok  %-24s %-8s %2d questions  %s\n", a.ID(), a.Kind(), a.Bank().Len(), a.Title())
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Assessments fail startup before anything is opened.
	registry, err := buildRegistry(cfg.AssessmentDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.AssessmentDir).Msg("failed to load assessments")
	}
	linker, err := bookingLinker(cfg.BookingURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid booking url")
	}

	// Database
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	checks := map[string]db.Check{}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		logger.Info().Msg("connected to redis")
	}

	archive := screening.NewAsyncArchive(screening.NoopArchive(), logger)
	if cfg.MongoURI != "" {
		var mc *mongo.Client
		mc, err = mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to mongo")
		}
		defer mc.Disconnect(context.Background())
		checks["mongo"] = mongodb.Ping(mc)
		archive = screening.NewAsyncArchive(screening.NewMongoArchive(mc, cfg.MongoDatabase), logger)
		logger.Info().Str("database", cfg.MongoDatabase).Msg("archiving screening results to mongo")
	}

	// Stores
	var sessions screening.SessionStore
	switch cfg.SessionBackend {
	case "redis":
		sessions = screening.NewRedisStore(rdb, cfg.SessionTTL)
	default:
		mem := screening.NewMemoryStore(cfg.SessionTTL)
		go mem.SweepEvery(ctx, time.Minute)
		sessions = mem
	}

	var settingsStore settings.Store
	switch cfg.SettingsBackend {
	case "redis":
		settingsStore = settings.NewRedisStore(rdb)
	case "memory":
		settingsStore = settings.NewMemoryStore()
	default:
		settingsStore = settings.NewPGStore(pool)
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(echomw.BodyLimit("1M"))

	// Auth middleware. Public routes stay reachable without a token; /me
	// routes require one.
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		// Browser websocket clients pass the token as ?access_token=.
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Secret:     []byte(cfg.AuthJWTSecret),
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			Optional:   true,
			QueryParam: "access_token",
		}))
	}

	// API groups
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rateLimitCfg.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rateLimitCfg.BurstSize = cfg.RateLimitBurst
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	me := apiV1.Group("/me", auth.RequireUser())

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool, checks))

	// Screening
	screeningHandler := screening.NewHandler(registry, assessment.NewPresenter(linker), sessions, archive, logger)
	screeningHandler.RegisterRoutes(apiV1)

	// Portal content
	tracker := tracking.NewAsyncTracker(tracking.NewPGTracker(pool), tracking.DefaultTimeout, logger)
	contentSvc := content.NewService(content.NewRepoPG(pool, logger), tracker, logger)
	content.NewHandler(contentSvc).RegisterRoutes(apiV1)

	// Health metrics calculator
	metrics.NewHandler().RegisterRoutes(apiV1)

	// Settings and water reminders
	hub := websocket.NewHub()
	settingsSvc := settings.NewService(settingsStore)
	scheduler := reminder.NewScheduler(settingsSvc, hub, time.Local, logger)
	settingsSvc.OnWaterReminderChange(scheduler.Changed)
	settings.NewHandler(settingsSvc).RegisterRoutes(me)

	wsHandler := websocket.NewHandler(hub, cfg.CORSOrigins, scheduler.Run, logger)
	me.GET("/reminders/ws", wsHandler.HandleConnect)

	logger.Info().
		Int("assessments", len(registry.List())).
		Str("sessions", cfg.SessionBackend).
		Str("settings", cfg.SettingsBackend).
		Msg("routes registered")

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	stop()
	tracker.Wait()
	archive.Wait()
	logger.Info().Msg("server stopped")
	return nil
}
