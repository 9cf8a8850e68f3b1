package transport

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/ganot/showcase/internal/domain/session"
)

// ErrUnauthorized indicates invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// LocalEditor is the editor name used when authentication is disabled.
const LocalEditor = "local"

type editorKey struct{}

// EditorResolver resolves an editor name from a raw editor token.
type EditorResolver interface {
	ResolveEditor(ctx context.Context, token string) (string, error)
}

// HashToken returns the hex sha256 of token, the form stored in config.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// TokenHashes resolves tokens whose sha256 appears in the list. The editor
// name is a short prefix of the matching hash.
type TokenHashes []string

func (h TokenHashes) ResolveEditor(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	got := HashToken(token)
	for _, want := range h {
		want = strings.ToLower(strings.TrimSpace(want))
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1 {
			return "editor-" + want[:8], nil
		}
	}
	return "", ErrUnauthorized
}

// WithEditor marks ctx as carrying editor capability.
func WithEditor(ctx context.Context, editor string) context.Context {
	return context.WithValue(ctx, editorKey{}, editor)
}

// EditorFromContext returns the editor name from context, if present.
func EditorFromContext(ctx context.Context) (string, bool) {
	editor, ok := ctx.Value(editorKey{}).(string)
	return editor, ok && editor != ""
}

// IsEditor reports whether ctx carries editor capability.
func IsEditor(ctx context.Context) bool {
	_, ok := EditorFromContext(ctx)
	return ok
}

// Gate grants add, edit and delete to editor contexts only.
func Gate() session.Gate {
	return session.GateFunc(func(ctx context.Context, _ session.Action) bool {
		return IsEditor(ctx)
	})
}

// Identity names callers by their editor name. Visitors are anonymous.
func Identity() session.Identity {
	return session.IdentityFunc(func(ctx context.Context) string {
		editor, _ := EditorFromContext(ctx)
		return editor
	})
}

// Authenticator identifies editors from request headers. Visitors without
// credentials are not an error.
type Authenticator struct {
	Resolver EditorResolver
	Signer   *SessionSigner
	// Enabled false makes every request an editor.
	Enabled bool
}

// Authenticate inspects a bearer token, then the editor cookie. It returns ""
// for visitors and ErrUnauthorized for a bearer token that does not resolve.
// A stale or forged cookie is ignored.
func (a *Authenticator) Authenticate(ctx context.Context, header http.Header) (string, error) {
	if !a.Enabled {
		return LocalEditor, nil
	}

	if auth := header.Get("Authorization"); auth != "" {
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token == "" || a.Resolver == nil {
			return "", ErrUnauthorized
		}
		editor, err := a.Resolver.ResolveEditor(ctx, token)
		if err != nil || editor == "" {
			return "", ErrUnauthorized
		}
		return editor, nil
	}

	if a.Signer == nil {
		return "", nil
	}
	r := http.Request{Header: header}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", nil
	}
	editor, err := a.Signer.Verify(cookie.Value)
	if err != nil {
		return "", nil
	}
	return editor, nil
}

// AuthMiddleware attaches editor capability to authenticated requests and
// rejects invalid bearer tokens.
func AuthMiddleware(auth *Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			editor, err := auth.Authenticate(r.Context(), r.Header)
			if err != nil {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}
			if editor == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithEditor(r.Context(), editor)))
		})
	}
}
