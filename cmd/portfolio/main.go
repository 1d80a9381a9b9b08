package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/jakewray/portfolio/internal/adapter/driven/github"
	postgresadapter "github.com/jakewray/portfolio/internal/adapter/driven/postgres"
	sqliteadapter "github.com/jakewray/portfolio/internal/adapter/driven/sqlite"
	httphandler "github.com/jakewray/portfolio/internal/adapter/driving/http"
	webhandler "github.com/jakewray/portfolio/internal/adapter/driving/web"
	"github.com/jakewray/portfolio/internal/application"
	"github.com/jakewray/portfolio/internal/auth"
	"github.com/jakewray/portfolio/internal/config"
	"github.com/jakewray/portfolio/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// stores groups the driven store adapters for the selected database.
type stores struct {
	admins   driven.AdminStore
	showcase driven.ShowcaseStore
	pinger   httphandler.Pinger
	close    func() error
}

func run() error {
	// 1. Load configuration (fail fast on a missing or weak session secret).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_driver", cfg.DBDriver,
		"session_mode", cfg.SessionMode,
		"cookie_secure", cfg.CookieSecure,
		"github_username", cfg.GitHubUsername,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the database and run migrations.
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("migrations complete", "driver", cfg.DBDriver)

	// 4. Auth primitives. The secret is injected here and nowhere else.
	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	sessions, err := auth.NewSessionManager(cfg.Session())
	if err != nil {
		return err
	}
	csrf := auth.CSRF{Secure: cfg.CookieSecure}

	// 5. GitHub showcase client (disabled without a username).
	var ghClient driven.GitHubClient
	if cfg.ShowcaseEnabled() {
		ghClient = githubadapter.NewClient(cfg.GitHubToken)
		slog.Info("github client created", "username", cfg.GitHubUsername, "authenticated", cfg.GitHubToken != "")
	} else {
		slog.Info("no github username configured, showcase sync disabled")
	}
	provider := application.NewGitHubClientProvider(ghClient, cfg.GitHubUsername)

	// 6. Application services.
	setupSvc := application.NewSetupService(st.admins, hasher)
	authSvc := application.NewAuthService(st.admins, hasher)
	showcaseSvc := application.NewShowcaseService(provider, st.showcase)

	if required, err := setupSvc.Status(ctx); err == nil && required {
		slog.Warn("no administrator exists; complete first-run setup at /admin/setup")
	}

	// 7. HTTP API and web GUI on one mux.
	mux := http.NewServeMux()
	apiHandler := httphandler.NewHandler(setupSvc, authSvc, showcaseSvc, sessions, csrf, st.pinger, slog.Default())
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	webHandler := webhandler.NewHandler(setupSvc, authSvc, showcaseSvc, sessions, csrf, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 9. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// openStores connects to the configured database and applies migrations.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := postgresadapter.NewDB(ctx, postgresadapter.Config{DSN: cfg.DatabaseURL})
		if err != nil {
			return nil, err
		}
		if err := postgresadapter.RunMigrations(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		slog.Info("database opened", "driver", config.DriverPostgres)
		return &stores{
			admins:   postgresadapter.NewAdminRepo(db),
			showcase: postgresadapter.NewShowcaseRepo(db),
			pinger:   db,
			close:    db.Close,
		}, nil

	default:
		// Dual reader/writer with WAL mode.
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			_ = db.Close()
			return nil, err
		}
		slog.Info("database opened", "driver", config.DriverSQLite, "path", cfg.DBPath)
		return &stores{
			admins:   sqliteadapter.NewAdminRepo(db),
			showcase: sqliteadapter.NewShowcaseRepo(db),
			pinger:   db,
			close:    db.Close,
		}, nil
	}
}
