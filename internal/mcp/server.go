package mcp

import (
	"context"
	"log/slog"

	"github.com/ganot/showcase/internal/catalog"
	"github.com/ganot/showcase/internal/domain/activity"
	"github.com/ganot/showcase/internal/domain/query"
	"github.com/ganot/showcase/internal/domain/session"
	"github.com/ganot/showcase/internal/domain/view"
	"github.com/ganot/showcase/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Catalog defines the catalog operations needed by MCP.
type Catalog interface {
	Render(ctx context.Context) (catalog.Screen, error)
	ToggleFavourite(ctx context.Context, id int64) (catalog.Screen, error)
	OpenAdd(ctx context.Context) (catalog.Screen, error)
	OpenEdit(ctx context.Context, id int64) (catalog.Screen, error)
	Cancel(ctx context.Context) (catalog.Screen, error)
	Save(ctx context.Context, sessionID string, draft session.Draft) (catalog.Screen, error)
	Delete(ctx context.Context, sessionID string) (catalog.Screen, error)
	View(st query.State) view.Projection
	Lookup(id int64) (view.DetailView, error)
	Categories() []string
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Transport modes.
const (
	ModeStdio = "stdio"
	ModeHTTP  = "http"
)

// Config contains server configuration.
type Config struct {
	Catalog  Catalog
	Activity ActivityService
	// Auth resolves editors from request headers in HTTP mode.
	Auth          *transport.Authenticator
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "showcase",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)
	registerCatalogResource(server, cfg.Catalog)

	// Later middleware wraps earlier middleware, so the editor is resolved
	// before inbound traffic is logged.
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))
	// Stdio mode: the local user is always an editor
	if cfg.TransportMode == ModeStdio || cfg.Auth == nil {
		server.AddReceivingMiddleware(localEditorMiddleware())
	} else {
		server.AddReceivingMiddleware(editorMiddleware(cfg.Auth))
	}

	registerTools(server, cfg)

	return server
}
