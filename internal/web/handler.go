// Package web renders the catalog as server-side HTML. Every route runs
// exactly one catalog event and draws the whole page from the resulting
// screen.
//
// All visitors share one catalog: search, category, sort, favourites-only,
// the open detail and connectivity are the same for everyone. The add/edit
// form is the exception; only the editor who opened it sees or submits it.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ganot/showcase/internal/catalog"
	"github.com/ganot/showcase/internal/domain/project"
	"github.com/ganot/showcase/internal/domain/query"
	"github.com/ganot/showcase/internal/domain/session"
	"github.com/ganot/showcase/internal/domain/view"
	"github.com/ganot/showcase/internal/transport"
	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

// Title heads every page.
const Title = "Project Showcase"

// MsgBadToken is shown when sign-in fails.
const MsgBadToken = "That editor token was not accepted."

// MsgHeld tells an editor that someone else's form is open.
const MsgHeld = "Another editor has a form open."

// Catalog is the event surface the handlers drive.
type Catalog interface {
	Render(ctx context.Context) (catalog.Screen, error)
	Search(ctx context.Context, term string) (catalog.Screen, error)
	FilterCategory(ctx context.Context, category string) (catalog.Screen, error)
	SortBy(ctx context.Context, key string) (catalog.Screen, error)
	ShowFavourites(ctx context.Context, on bool) (catalog.Screen, error)
	ActivateTag(ctx context.Context, tag string) (catalog.Screen, error)
	ToggleFavourite(ctx context.Context, id int64) (catalog.Screen, error)
	Select(ctx context.Context, id int64) (catalog.Screen, error)
	CloseDetail(ctx context.Context) (catalog.Screen, error)
	OpenAdd(ctx context.Context) (catalog.Screen, error)
	OpenEdit(ctx context.Context, id int64) (catalog.Screen, error)
	Cancel(ctx context.Context) (catalog.Screen, error)
	Save(ctx context.Context, sessionID string, draft session.Draft) (catalog.Screen, error)
	Delete(ctx context.Context, sessionID string) (catalog.Screen, error)
	ToggleTheme(ctx context.Context) (catalog.Screen, error)
	SetOnline(ctx context.Context, online bool) (catalog.Screen, error)
}

// Options configures a Handler.
type Options struct {
	// Auth signs editors in. Nil or disabled hides the sign-in form.
	Auth          *transport.Authenticator
	SecureCookies bool
	Logger        *slog.Logger
}

// Handler serves the catalog pages.
type Handler struct {
	app    Catalog
	auth   *transport.Authenticator
	secure bool
	logger *slog.Logger
	tmpl   *template.Template
}

type sortOption struct {
	Key    string
	Label  string
	Active bool
}

type page struct {
	Title       string
	Screen      catalog.Screen
	Editor      bool
	AuthEnabled bool
	HeldMessage string
	Sorts       []sortOption
}

var templateFuncs = template.FuncMap{
	"hookPath": hookPath,
}

// New parses the embedded templates.
func New(app Catalog, opts Options) (*Handler, error) {
	tmpl, err := template.New("base").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{app: app, auth: opts.Auth, secure: opts.SecureCookies, logger: logger, tmpl: tmpl}, nil
}

// Routes returns the page router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.event(func(r *http.Request) (catalog.Screen, error) {
		return h.app.Render(r.Context())
	}))
	r.Get("/search", h.event(func(r *http.Request) (catalog.Screen, error) {
		return h.app.Search(r.Context(), r.URL.Query().Get("q"))
	}))
	r.Get("/category", h.event(func(r *http.Request) (catalog.Screen, error) {
		return h.app.FilterCategory(r.Context(), r.URL.Query().Get("c"))
	}))
	r.Post("/sort/{key}", h.event(func(r *http.Request) (catalog.Screen, error) {
		return h.app.SortBy(r.Context(), chi.URLParam(r, "key"))
	}))
	r.Post("/favourites/only", h.event(func(r *http.Request) (catalog.Screen, error) {
		on, _ := strconv.ParseBool(r.FormValue("on"))
		return h.app.ShowFavourites(r.Context(), on)
	}))
	r.Get("/tag", h.event(func(r *http.Request) (catalog.Screen, error) {
		return h.app.ActivateTag(r.Context(), r.URL.Query().Get("name"))
	}))
	r.Post("/projects/{id}/favourite", h.withID(h.app.ToggleFavourite))
	r.Get("/projects/{id}", h.withID(h.app.Select))
	r.Post("/projects/{id}/edit", h.withID(h.app.OpenEdit))
	r.Post("/detail/close", h.event(func(r *http.Request) (catalog.Screen, error) {
		return h.app.CloseDetail(r.Context())
	}))
	r.Post("/session/add", h.event(func(r *http.Request) (catalog.Screen, error) {
		return h.app.OpenAdd(r.Context())
	}))
	r.Post("/session/save", h.event(func(r *http.Request) (catalog.Screen, error) {
		return h.app.Save(r.Context(), r.FormValue("session_id"), draftFromForm(r))
	}))
	r.Post("/session/cancel", h.event(func(r *http.Request) (catalog.Screen, error) {
		return h.app.Cancel(r.Context())
	}))
	r.Post("/session/delete", h.event(func(r *http.Request) (catalog.Screen, error) {
		return h.app.Delete(r.Context(), r.FormValue("session_id"))
	}))
	r.Post("/theme", h.event(func(r *http.Request) (catalog.Screen, error) {
		return h.app.ToggleTheme(r.Context())
	}))
	r.Post("/connectivity", h.event(func(r *http.Request) (catalog.Screen, error) {
		online, err := strconv.ParseBool(r.URL.Query().Get("online"))
		if err != nil {
			online = true
		}
		return h.app.SetOnline(r.Context(), online)
	}))
	r.Post("/editor/login", h.handleLogin)
	r.Post("/editor/logout", h.handleLogout)

	return r
}

func (h *Handler) event(run func(*http.Request) (catalog.Screen, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := run(r)
		h.render(w, r, statusFor(err), sc)
	}
}

func (h *Handler) withID(run func(context.Context, int64) (catalog.Screen, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			sc, _ := h.app.Render(r.Context())
			sc.Notice = &catalog.Notice{Level: catalog.LevelError, Message: catalog.MsgNotFound}
			h.render(w, r, http.StatusNotFound, sc)
			return
		}
		sc, err := run(r.Context(), id)
		h.render(w, r, statusFor(err), sc)
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil || !h.auth.Enabled || h.auth.Resolver == nil || h.auth.Signer == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	editor, err := h.auth.Resolver.ResolveEditor(r.Context(), r.FormValue("token"))
	if err != nil {
		h.logger.Info("editor sign-in rejected", "remote", r.RemoteAddr)
		sc, _ := h.app.Render(r.Context())
		sc.Notice = &catalog.Notice{Level: catalog.LevelError, Message: MsgBadToken}
		h.render(w, r, http.StatusUnauthorized, sc)
		return
	}

	token, expires, err := h.auth.Signer.Issue(editor)
	if err != nil {
		h.logger.Error("failed to issue editor session", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	transport.SetCookie(w, token, expires, h.secure)
	h.logger.Info("editor signed in", "editor", editor)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	transport.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, sc catalog.Screen) {
	data := page{
		Title:       Title,
		Screen:      sc,
		Editor:      transport.IsEditor(r.Context()),
		AuthEnabled: h.auth != nil && h.auth.Enabled,
		HeldMessage: MsgHeld,
		Sorts:       sortOptions(sc.Query.Sort),
	}

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		h.logger.Error("failed to render page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func draftFromForm(r *http.Request) session.Draft {
	return session.Draft{
		Name:        r.FormValue("name"),
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
		Tags:        session.ParseTags(r.FormValue("tags")),
		Date:        r.FormValue("date"),
		Link:        r.FormValue("link"),
	}
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, session.ErrAuthorizationDenied):
		return http.StatusForbidden
	case errors.Is(err, session.ErrValidation), errors.Is(err, project.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, project.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionOpen), errors.Is(err, session.ErrNoSession),
		errors.Is(err, session.ErrStaleSession), errors.Is(err, session.ErrNotEditing):
		return http.StatusConflict
	case errors.Is(err, query.ErrUnknownSort):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func sortOptions(active query.SortKey) []sortOption {
	return []sortOption{
		{Key: "insertion", Label: "Default order", Active: active == query.SortInsertion},
		{Key: string(query.SortName), Label: "Sort by name", Active: active == query.SortName},
		{Key: string(query.SortDate), Label: "Newest first", Active: active == query.SortDate},
	}
}

// hookPath turns a projection hook into the URL that triggers it.
func hookPath(h view.Hook) string {
	switch h.Action {
	case view.ActionToggleFavourite:
		return "/projects/" + url.PathEscape(h.Target) + "/favourite"
	case view.ActionSelect:
		return "/projects/" + url.PathEscape(h.Target)
	case view.ActionActivateTag:
		return "/tag?" + url.Values{"name": {h.Target}}.Encode()
	case view.ActionVisit:
		return h.Target
	}
	return "#"
}
