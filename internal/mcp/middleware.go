package mcp

import (
	"context"
	"fmt"

	"github.com/ganot/showcase/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// editorMiddleware resolves the caller from the HTTP headers carried with each
// request. Callers without credentials continue as visitors.
func editorMiddleware(auth *transport.Authenticator) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return next(ctx, method, req)
			}

			editor, err := auth.Authenticate(ctx, extra.Header)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}
			if editor != "" {
				ctx = transport.WithEditor(ctx, editor)
			}
			return next(ctx, method, req)
		}
	}
}

// localEditorMiddleware grants editor capability to every request.
func localEditorMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			return next(transport.WithEditor(ctx, transport.LocalEditor), method, req)
		}
	}
}
