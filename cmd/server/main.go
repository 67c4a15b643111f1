package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventmanagement/config"
	_ "eventmanagement/docs"
	"eventmanagement/internal/adapters/auth"
	deliveryhttp "eventmanagement/internal/delivery/http"
	"eventmanagement/internal/delivery/http/controllers"
	"eventmanagement/internal/repository/postgres"
	"eventmanagement/internal/repository/postgres/migrations"
	"eventmanagement/internal/seed"
	"eventmanagement/internal/services"
	"eventmanagement/internal/telemetry"
)

const serviceName = "eventmanagement"

// @title Event Management API
// @version 1.0
// @description Event lifecycle and registration service: categories, users, events and capacity-bounded registrations.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		cancel()
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("telemetry shutdown", "err", err)
		}
	}()

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("db: connected")

	if err := postgres.ApplyMigrations(ctx, db, migrations.FS); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	logger.Info("db: migrations applied")

	// Repositories
	txManager := postgres.NewTxManager(db)
	userRepo := postgres.NewUserRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewEventRegistrationRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	// Services
	categoryService := services.NewCategoryService(txManager, categoryRepo, eventRepo)
	userService := services.NewUserService(txManager, userRepo, hasher)
	authService := services.NewAuthService(txManager, userRepo, hasher, issuer)
	eventService := services.NewEventService(txManager, eventRepo, categoryRepo, userRepo, logger)
	registrationService := services.NewRegistrationService(txManager, eventRepo, userRepo, registrationRepo, logger)

	if cfg.SeedData {
		if err := seed.NewSeeder(categoryService, userService, logger).Run(ctx, cfg.SeedAdminPassword); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	router := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Auth:         controllers.NewAuthController(logger, authService),
		Category:     controllers.NewCategoryController(logger, categoryService),
		User:         controllers.NewUserController(logger, userService),
		Event:        controllers.NewEventController(logger, eventService),
		Registration: controllers.NewRegistrationController(logger, registrationService),
		Health: controllers.NewHealthController(logger, db, map[string]controllers.Counter{
			"users":         userService,
			"categories":    categoryService,
			"events":        eventService,
			"registrations": registrationService,
		}),
	}, verifier, logger, deliveryhttp.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
