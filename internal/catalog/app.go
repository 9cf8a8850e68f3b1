// Package catalog routes surface events to the component owning the affected
// state and re-projects the view after each one.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ganot/showcase/internal/domain/activity"
	"github.com/ganot/showcase/internal/domain/favourite"
	"github.com/ganot/showcase/internal/domain/project"
	"github.com/ganot/showcase/internal/domain/query"
	"github.com/ganot/showcase/internal/domain/session"
	"github.com/ganot/showcase/internal/domain/theme"
	"github.com/ganot/showcase/internal/domain/view"
)

// Options wires an App.
type Options struct {
	Store      *project.Store
	Favourites *favourite.Ledger
	Theme      *theme.Preference
	// Gate is consulted by the session controller. Nil denies every
	// privileged action.
	Gate session.Gate
	// Identity names the caller owning an open form. Nil treats every caller
	// as one.
	Identity   session.Identity
	Activities session.ActivityLogger
	// Unavailable marks a store that is empty because the initial load failed.
	Unavailable bool
	Logger      *slog.Logger
}

// App serialises events: each one runs to completion under a single lock
// before the next is processed, so every returned Screen reflects exactly the
// state as of that event.
type App struct {
	mu sync.Mutex

	store      *project.Store
	favourites *favourite.Ledger
	theme      *theme.Preference
	sessions   *session.Controller
	activities session.ActivityLogger
	logger     *slog.Logger

	query       query.State
	selected    int64
	hasSelected bool
	online      bool
	unavailable bool
}

// New creates an App over already loaded collaborators.
func New(opts Options) (*App, error) {
	if opts.Store == nil || opts.Favourites == nil || opts.Theme == nil {
		return nil, errors.New("catalog: store, favourites and theme are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &App{
		store:       opts.Store,
		favourites:  opts.Favourites,
		theme:       opts.Theme,
		sessions:    session.NewController(opts.Store, opts.Gate, opts.Identity, opts.Activities, logger),
		activities:  opts.Activities,
		logger:      logger,
		online:      true,
		unavailable: opts.Unavailable,
	}, nil
}

// Render returns the current screen without changing anything.
func (a *App) Render(ctx context.Context) (Screen, error) {
	return a.run(ctx, func(context.Context) (*Notice, error) { return nil, nil })
}

// Search sets the search term.
func (a *App) Search(ctx context.Context, term string) (Screen, error) {
	return a.run(ctx, func(context.Context) (*Notice, error) {
		a.query.Search = term
		return nil, nil
	})
}

// FilterCategory sets the category filter; query.AnyCategory clears it.
func (a *App) FilterCategory(ctx context.Context, category string) (Screen, error) {
	return a.run(ctx, func(context.Context) (*Notice, error) {
		a.query.Category = category
		return nil, nil
	})
}

// SortBy sets the sort key. Unknown keys leave the query unchanged.
func (a *App) SortBy(ctx context.Context, key string) (Screen, error) {
	return a.run(ctx, func(context.Context) (*Notice, error) {
		sort, err := query.ParseSortKey(key)
		if err != nil {
			return nil, err
		}
		a.query.Sort = sort
		return nil, nil
	})
}

// ShowFavourites restricts the view to starred projects when on.
func (a *App) ShowFavourites(ctx context.Context, on bool) (Screen, error) {
	return a.run(ctx, func(context.Context) (*Notice, error) {
		a.query.FavouritesOnly = on
		return nil, nil
	})
}

// ActivateTag replaces the search term with the tag text.
func (a *App) ActivateTag(ctx context.Context, tag string) (Screen, error) {
	return a.run(ctx, func(context.Context) (*Notice, error) {
		a.query = a.query.WithTag(tag)
		return nil, nil
	})
}

// ToggleFavourite stars or unstars id. Membership in the store is not checked.
func (a *App) ToggleFavourite(ctx context.Context, id int64) (Screen, error) {
	return a.run(ctx, func(ctx context.Context) (*Notice, error) {
		starred, err := a.favourites.Toggle(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("toggling favourite %d: %w", id, err)
		}
		summary := fmt.Sprintf("Unstarred project %d", id)
		msg := MsgUnfavourited
		if starred {
			summary = fmt.Sprintf("Starred project %d", id)
			msg = MsgFavourited
		}
		a.recordActivity(ctx, id, summary)
		return info(msg), nil
	})
}

// Select opens the detail view for id.
func (a *App) Select(ctx context.Context, id int64) (Screen, error) {
	return a.run(ctx, func(context.Context) (*Notice, error) {
		if _, err := a.store.Get(id); err != nil {
			return nil, err
		}
		a.selected, a.hasSelected = id, true
		return nil, nil
	})
}

// CloseDetail dismisses the detail view.
func (a *App) CloseDetail(ctx context.Context) (Screen, error) {
	return a.run(ctx, func(context.Context) (*Notice, error) {
		a.hasSelected = false
		return nil, nil
	})
}

// OpenAdd opens the add form.
func (a *App) OpenAdd(ctx context.Context) (Screen, error) {
	return a.run(ctx, func(ctx context.Context) (*Notice, error) {
		if _, err := a.sessions.OpenAdd(ctx); err != nil {
			return nil, err
		}
		a.hasSelected = false
		return nil, nil
	})
}

// OpenEdit opens the edit form for id.
func (a *App) OpenEdit(ctx context.Context, id int64) (Screen, error) {
	return a.run(ctx, func(ctx context.Context) (*Notice, error) {
		if _, err := a.sessions.OpenEdit(ctx, id); err != nil {
			return nil, err
		}
		a.hasSelected = false
		return nil, nil
	})
}

// Cancel closes the open form without saving.
func (a *App) Cancel(ctx context.Context) (Screen, error) {
	return a.run(ctx, func(ctx context.Context) (*Notice, error) {
		_, err := a.sessions.Cancel(ctx)
		return nil, err
	})
}

// Save commits the draft of the open form.
func (a *App) Save(ctx context.Context, sessionID string, draft session.Draft) (Screen, error) {
	return a.run(ctx, func(ctx context.Context) (*Notice, error) {
		mode := a.sessions.State().Mode
		if _, err := a.sessions.Save(ctx, sessionID, draft); err != nil {
			return nil, err
		}
		if mode == session.ModeAdd {
			return info(MsgAdded), nil
		}
		return info(MsgUpdated), nil
	})
}

// Delete removes the project under edit.
func (a *App) Delete(ctx context.Context, sessionID string) (Screen, error) {
	return a.run(ctx, func(ctx context.Context) (*Notice, error) {
		if err := a.sessions.Delete(ctx, sessionID); err != nil {
			return nil, err
		}
		return info(MsgDeleted), nil
	})
}

// ToggleTheme flips the persisted dark mode preference.
func (a *App) ToggleTheme(ctx context.Context) (Screen, error) {
	return a.run(ctx, func(ctx context.Context) (*Notice, error) {
		if _, err := a.theme.Toggle(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	})
}

// SetOnline records the platform connectivity signal.
func (a *App) SetOnline(ctx context.Context, online bool) (Screen, error) {
	return a.run(ctx, func(context.Context) (*Notice, error) {
		if online == a.online {
			return nil, nil
		}
		a.online = online
		if online {
			return info(MsgBackOnline), nil
		}
		return info(MsgOffline), nil
	})
}

// View computes a projection for st without touching the interactive query.
func (a *App) View(st query.State) view.Projection {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.project(st)
}

// Lookup returns the detail projection for id without selecting it.
func (a *App) Lookup(id int64) (view.DetailView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec, err := a.store.Get(id)
	if err != nil {
		return view.DetailView{}, err
	}
	return view.Detail(rec, a.favourites.IsFavourite(id)), nil
}

// Categories lists the categories present in the store.
func (a *App) Categories() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return query.Categories(a.store.All())
}

func (a *App) run(ctx context.Context, event func(context.Context) (*Notice, error)) (Screen, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	notice, err := event(ctx)
	if err != nil {
		var expected bool
		notice, expected = noticeFor(err, a.sessions.StateFor(ctx))
		if expected {
			a.logger.Debug("event rejected", "error", err)
		} else {
			a.logger.Error("event failed", "error", err)
		}
	}
	return a.screen(ctx, notice), err
}

// screen re-derives everything from live state as seen by the caller in ctx.
// Caller holds a.mu.
func (a *App) screen(ctx context.Context, notice *Notice) Screen {
	records := a.store.All()
	sc := Screen{
		Projection:  a.project(a.query),
		Query:       a.query,
		Categories:  query.Categories(records),
		Session:     a.sessions.StateFor(ctx),
		Notice:      notice,
		Favourites:  a.favourites.Members().IDs(),
		Dark:        a.theme.Dark(),
		Online:      a.online,
		Total:       len(records),
		Unavailable: a.unavailable,
	}

	if a.hasSelected {
		rec, err := a.store.Get(a.selected)
		if err != nil {
			a.hasSelected = false
		} else {
			d := view.Detail(rec, a.favourites.IsFavourite(rec.ID))
			sc.Detail = &d
		}
	}
	return sc
}

// Caller holds a.mu.
func (a *App) project(st query.State) view.Projection {
	favs := a.favourites.Members()
	p := view.Render(query.Apply(a.store.All(), st, favs), favs)
	if p.Empty && a.unavailable && a.store.Len() == 0 {
		p.EmptyMessage = UnavailableMessage
	}
	return p
}

func (a *App) recordActivity(ctx context.Context, id int64, summary string) {
	if a.activities == nil {
		return
	}
	entry := &activity.ActivityEntry{ProjectID: &id, ActivityType: activity.TypeFavouriteToggled, Summary: summary}
	if err := a.activities.LogActivity(ctx, entry); err != nil {
		a.logger.Warn("failed to record activity", "type", entry.ActivityType, "project_id", id, "error", err)
	}
}
