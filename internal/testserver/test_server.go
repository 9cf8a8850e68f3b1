// Package testserver wires the full HTTP stack over httptest for end-to-end
// tests of the web and MCP surfaces.
package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ganot/showcase/internal/catalog"
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
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	App      *catalog.App
	Store    *project.Store
	Activity *activity.Service
	// Token is a raw editor bearer token accepted by the server.
	Token string
}

// New starts a server seeded from the embedded catalog with auth enabled.
func New(t *testing.T, token string) *TestServer {
	t.Helper()
	ctx := context.Background()

	seed, err := datasource.Load(ctx, datasource.Embedded)
	require.NoError(t, err)
	store, err := project.NewStore(seed)
	require.NoError(t, err)

	db := sqlite.NewTestDB(t)
	prefs := sqlite.NewPreferenceRepository(db)
	ledger, err := favourite.NewLedger(ctx, prefs, nil)
	require.NoError(t, err)
	pref, err := theme.New(ctx, prefs, nil)
	require.NoError(t, err)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)

	app, err := catalog.New(catalog.Options{
		Store:      store,
		Favourites: ledger,
		Theme:      pref,
		Gate:       transport.Gate(),
		Identity:   transport.Identity(),
		Activities: activitySvc,
	})
	require.NoError(t, err)

	signer, err := transport.NewSessionSigner([]byte("test-secret"), time.Hour)
	require.NoError(t, err)
	auth := &transport.Authenticator{
		Resolver: transport.TokenHashes{transport.HashToken(token)},
		Signer:   signer,
		Enabled:  true,
	}

	pages, err := web.New(app, web.Options{Auth: auth})
	require.NoError(t, err)

	mcpServer := mcp.NewServer(mcp.Config{
		Catalog:       app,
		Activity:      activitySvc,
		Auth:          auth,
		TransportMode: mcp.ModeHTTP,
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: time.Minute},
	)

	server := httptest.NewServer(transport.NewServer(pages.Routes(), mcpHandler, transport.AuthMiddleware(auth)))
	t.Cleanup(server.Close)

	return &TestServer{
		Server:   server,
		DB:       db,
		App:      app,
		Store:    store,
		Activity: activitySvc,
		Token:    token,
	}
}

// Connect opens an MCP client session against /mcp. An empty bearer connects
// as a visitor.
func (ts *TestServer) Connect(t *testing.T, bearer string) *sdkmcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	httpClient := ts.Server.Client()
	if bearer != "" {
		httpClient = &http.Client{Transport: bearerTransport{token: bearer, base: ts.Server.Client().Transport}}
	}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "testserver", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: httpClient,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	base := b.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
