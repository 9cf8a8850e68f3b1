package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ganot/showcase/internal/catalog"
	"github.com/ganot/showcase/internal/config"
	"github.com/ganot/showcase/internal/datasource"
	"github.com/ganot/showcase/internal/domain/activity"
	"github.com/ganot/showcase/internal/domain/favourite"
	"github.com/ganot/showcase/internal/domain/project"
	"github.com/ganot/showcase/internal/domain/theme"
	"github.com/ganot/showcase/internal/mcp"
	"github.com/ganot/showcase/internal/sqlite"
	"github.com/ganot/showcase/internal/transport"
	"github.com/ganot/showcase/internal/web"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == config.TransportStdio {
		logWriter = os.Stderr
	}
	if logPath := os.Getenv("SHOWCASE_LOG_PATH"); logPath != "" {
		fileWriter, file, err := newLogFileWriter(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := newLogger(logWriter, cfg.Log)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("preparing database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// A failed load still starts the catalog, empty and marked unavailable.
	unavailable := false
	seed, err := datasource.Loader{Timeout: cfg.Catalog.LoadTimeout}.Load(ctx, cfg.Catalog.DataSource)
	if err != nil {
		logger.Warn("project data unavailable", "source", cfg.Catalog.DataSource, "error", err)
		seed, unavailable = nil, true
	}
	store, err := project.NewStore(seed)
	if err != nil {
		logger.Warn("project data rejected", "source", cfg.Catalog.DataSource, "error", err)
		store, err = project.NewStore(nil)
		if err != nil {
			return fmt.Errorf("creating store: %w", err)
		}
		unavailable = true
	}
	logger.Info("catalog loaded", "projects", store.Len(), "source", cfg.Catalog.DataSource)

	prefs := sqlite.NewPreferenceRepository(db)
	ledger, err := favourite.NewLedger(ctx, prefs, logger)
	if err != nil {
		return fmt.Errorf("loading favourites: %w", err)
	}
	pref, err := theme.New(ctx, prefs, logger)
	if err != nil {
		return fmt.Errorf("loading theme: %w", err)
	}
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)

	app, err := catalog.New(catalog.Options{
		Store:       store,
		Favourites:  ledger,
		Theme:       pref,
		Gate:        transport.Gate(),
		Identity:    transport.Identity(),
		Activities:  activitySvc,
		Unavailable: unavailable,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating catalog: %w", err)
	}

	auth, err := newAuthenticator(cfg)
	if err != nil {
		return err
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Catalog:       app,
		Activity:      activitySvc,
		Auth:          auth,
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	})

	if cfg.Transport.Mode == config.TransportStdio {
		return runStdioMode(logger, mcpServer)
	}

	pages, err := web.New(app, web.Options{Auth: auth, SecureCookies: cfg.Auth.SecureCookies, Logger: logger})
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}
	return runHTTPMode(logger, mcpServer, pages, auth, cfg.Server.Host, cfg.Server.Port)
}

func newAuthenticator(cfg config.Config) (*transport.Authenticator, error) {
	auth := &transport.Authenticator{
		Resolver: transport.TokenHashes(cfg.Auth.EditorTokenHashes),
		Enabled:  cfg.Auth.Enabled,
	}
	if !cfg.Auth.Enabled || cfg.Transport.Mode == config.TransportStdio {
		return auth, nil
	}
	signer, err := transport.NewSessionSigner([]byte(cfg.Auth.SessionSecret), cfg.Auth.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("creating session signer: %w", err)
	}
	auth.Signer = signer
	return auth, nil
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(logger *slog.Logger, mcpServer *sdkmcp.Server, pages *web.Handler, auth *transport.Authenticator, host string, port int) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(pages.Routes(), mcpHandler, transport.AuthMiddleware(auth)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "auth", auth.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return waitForShutdown(logger, httpServer, errCh)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server, errCh <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
