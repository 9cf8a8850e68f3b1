package web_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ganot/showcase/internal/catalog"
	"github.com/ganot/showcase/internal/domain/favourite"
	"github.com/ganot/showcase/internal/domain/project"
	"github.com/ganot/showcase/internal/domain/theme"
	"github.com/ganot/showcase/internal/sqlite"
	"github.com/ganot/showcase/internal/transport"
	"github.com/ganot/showcase/internal/web"
	"github.com/stretchr/testify/require"
)

const editorToken = "editor-token"

type harness struct {
	server *httptest.Server
	store  *project.Store
}

func newHarness(t *testing.T, authEnabled bool) harness {
	t.Helper()
	ctx := context.Background()

	store, err := project.NewStore([]project.Project{
		{ID: 1, Name: "Alpha", Category: "AI", Tags: []string{"ml"}, Date: project.NewDate(2024, time.July, 20), Link: "https://alpha.test"},
		{ID: 2, Name: "Beta", Category: "Web", Tags: []string{"web dev"}},
	})
	require.NoError(t, err)
	prefs := sqlite.NewPreferenceRepository(sqlite.NewTestDB(t))
	ledger, err := favourite.NewLedger(ctx, prefs, nil)
	require.NoError(t, err)
	pref, err := theme.New(ctx, prefs, nil)
	require.NoError(t, err)
	app, err := catalog.New(catalog.Options{Store: store, Favourites: ledger, Theme: pref, Gate: transport.Gate(), Identity: transport.Identity()})
	require.NoError(t, err)

	signer, err := transport.NewSessionSigner([]byte("secret"), time.Hour)
	require.NoError(t, err)
	auth := &transport.Authenticator{
		Resolver: transport.TokenHashes{transport.HashToken(editorToken)},
		Signer:   signer,
		Enabled:  authEnabled,
	}
	h, err := web.New(app, web.Options{Auth: auth})
	require.NoError(t, err)

	server := httptest.NewServer(transport.NewServer(h.Routes(), nil, transport.AuthMiddleware(auth)))
	t.Cleanup(server.Close)
	return harness{server: server, store: store}
}

func (h harness) do(t *testing.T, method, path string, form url.Values, bearer string) (int, string) {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, h.server.URL+path, body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestWeb_IndexListsCards(t *testing.T) {
	h := newHarness(t, true)

	code, body := h.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Alpha")
	require.Contains(t, body, "Beta")
	require.Contains(t, body, `href="/tag?name=web+dev"`)
	require.Contains(t, body, "Sign in")
	require.NotContains(t, body, "Add project")
}

func TestWeb_SearchAndTag(t *testing.T) {
	h := newHarness(t, true)

	code, body := h.do(t, http.MethodGet, "/search?q=ML", nil, "")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Alpha")
	require.NotContains(t, body, ">Beta<")

	code, body = h.do(t, http.MethodGet, "/tag?name=web+dev", nil, "")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `value="web dev"`)
	require.Contains(t, body, ">Beta<")
	require.NotContains(t, body, ">Alpha<")

	code, body = h.do(t, http.MethodGet, "/category?c=robotics", nil, "")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "No projects found.")
}

func TestWeb_SortUnknown(t *testing.T) {
	h := newHarness(t, true)

	code, _ := h.do(t, http.MethodPost, "/sort/name", url.Values{}, "")
	require.Equal(t, http.StatusOK, code)

	code, body := h.do(t, http.MethodPost, "/sort/popularity", url.Values{}, "")
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, body, catalog.MsgUnknownSort)
}

func TestWeb_FavouriteAndDetail(t *testing.T) {
	h := newHarness(t, true)

	code, body := h.do(t, http.MethodPost, "/projects/2/favourite", url.Values{}, "")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "★")

	code, body = h.do(t, http.MethodPost, "/favourites/only", url.Values{"on": {"true"}}, "")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, ">Beta<")
	require.NotContains(t, body, ">Alpha<")
	_, _ = h.do(t, http.MethodPost, "/favourites/only", url.Values{"on": {"false"}}, "")

	code, body = h.do(t, http.MethodGet, "/projects/1", nil, "")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Saturday, 20 July 2024")
	require.Contains(t, body, "Visit Project")

	code, _ = h.do(t, http.MethodGet, "/projects/404", nil, "")
	require.Equal(t, http.StatusNotFound, code)
	code, _ = h.do(t, http.MethodGet, "/projects/abc", nil, "")
	require.Equal(t, http.StatusNotFound, code)

	code, body = h.do(t, http.MethodPost, "/detail/close", url.Values{}, "")
	require.Equal(t, http.StatusOK, code)
	require.NotContains(t, body, "projectModal")
}

func TestWeb_VisitorDenied(t *testing.T) {
	h := newHarness(t, true)

	code, body := h.do(t, http.MethodPost, "/session/add", url.Values{}, "")
	require.Equal(t, http.StatusForbidden, code)
	require.Contains(t, body, catalog.MsgDenied)

	code, _ = h.do(t, http.MethodPost, "/projects/1/edit", url.Values{}, "")
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, 2, h.store.Len())
}

func TestWeb_VisitorCannotTouchEditorForm(t *testing.T) {
	h := newHarness(t, true)

	code, body := h.do(t, http.MethodPost, "/projects/1/edit", url.Values{}, editorToken)
	require.Equal(t, http.StatusOK, code)
	sessionID := between(t, body, `name="session_id" value="`, `"`)

	code, body = h.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, code)
	require.NotContains(t, body, "formModal")
	require.NotContains(t, body, sessionID)
	require.NotContains(t, body, "heldNotice")

	for _, form := range []url.Values{{"name": {"Vandal"}}, {"session_id": {sessionID}, "name": {"Vandal"}}} {
		code, body = h.do(t, http.MethodPost, "/session/save", form, "")
		require.Equal(t, http.StatusForbidden, code)
		require.Contains(t, body, catalog.MsgDenied)
	}
	code, _ = h.do(t, http.MethodPost, "/session/delete", url.Values{"session_id": {sessionID}}, "")
	require.Equal(t, http.StatusForbidden, code)
	code, _ = h.do(t, http.MethodPost, "/session/cancel", url.Values{}, "")
	require.Equal(t, http.StatusForbidden, code)

	rec, err := h.store.Get(1)
	require.NoError(t, err)
	require.Equal(t, "Alpha", rec.Name)
	require.Equal(t, 2, h.store.Len())

	code, body = h.do(t, http.MethodGet, "/", nil, editorToken)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, sessionID, "the editor's form is still open")
}

func TestWeb_EditorAddFlow(t *testing.T) {
	h := newHarness(t, true)

	code, body := h.do(t, http.MethodPost, "/session/add", url.Values{}, editorToken)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "formModal")
	sessionID := between(t, body, `name="session_id" value="`, `"`)

	code, body = h.do(t, http.MethodPost, "/session/save", url.Values{"session_id": {sessionID}, "name": {""}}, editorToken)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Contains(t, body, "Name is required.")

	code, body = h.do(t, http.MethodPost, "/session/save", url.Values{
		"session_id": {sessionID},
		"name":       {"Gamma"},
		"tags":       {"go, cli"},
		"date":       {"2025-02-03"},
	}, editorToken)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, catalog.MsgAdded)
	require.Contains(t, body, ">Gamma<")
	require.Equal(t, 3, h.store.Len())

	code, _ = h.do(t, http.MethodPost, "/session/save", url.Values{"session_id": {sessionID}, "name": {"Again"}}, editorToken)
	require.Equal(t, http.StatusConflict, code)
}

func TestWeb_EditorEditDelete(t *testing.T) {
	h := newHarness(t, true)

	code, body := h.do(t, http.MethodPost, "/projects/1/edit", url.Values{}, editorToken)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `value="Alpha"`)
	require.Contains(t, body, `value="ml"`)
	sessionID := between(t, body, `name="session_id" value="`, `"`)

	code, body = h.do(t, http.MethodPost, "/session/delete", url.Values{"session_id": {sessionID}}, editorToken)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, catalog.MsgDeleted)
	require.Equal(t, 1, h.store.Len())

	code, _ = h.do(t, http.MethodPost, "/session/delete", url.Values{"session_id": {sessionID}}, editorToken)
	require.Equal(t, http.StatusConflict, code)
}

func TestWeb_CancelDiscards(t *testing.T) {
	h := newHarness(t, false)

	code, _ := h.do(t, http.MethodPost, "/projects/2/edit", url.Values{}, "")
	require.Equal(t, http.StatusOK, code, "auth disabled makes everyone an editor")

	code, body := h.do(t, http.MethodPost, "/session/cancel", url.Values{}, "")
	require.Equal(t, http.StatusOK, code)
	require.NotContains(t, body, "formModal")
	require.NotContains(t, body, "Sign in")
}

func TestWeb_ThemeAndConnectivity(t *testing.T) {
	h := newHarness(t, true)

	code, body := h.do(t, http.MethodPost, "/theme", url.Values{}, "")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `class="dark-mode"`)
	require.Contains(t, body, "Light Mode")

	code, body = h.do(t, http.MethodPost, "/connectivity?online=false", url.Values{}, "")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "offlineBadge")
}

func TestWeb_Login(t *testing.T) {
	h := newHarness(t, true)
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

	resp, err := client.PostForm(h.server.URL+"/editor/login", url.Values{"token": {editorToken}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == transport.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	req, err := http.NewRequest(http.MethodGet, h.server.URL+"/", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(body), "Add project")
	require.Contains(t, string(body), "Sign out")

	resp, err = client.PostForm(h.server.URL+"/editor/login", url.Values{"token": {"wrong"}})
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, string(body), web.MsgBadToken)
}

func between(t *testing.T, s, start, end string) string {
	t.Helper()
	i := strings.Index(s, start)
	require.GreaterOrEqual(t, i, 0, "missing %q", start)
	rest := s[i+len(start):]
	j := strings.Index(rest, end)
	require.GreaterOrEqual(t, j, 0)
	return rest[:j]
}
