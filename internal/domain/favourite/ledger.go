package favourite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ganot/showcase/internal/repository"
)

// StorageKey is the preference key holding the serialized identifier set.
const StorageKey = "favouriteProjects"

// PreferenceStore is the durable key/value storage the ledger persists to.
type PreferenceStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Set is a membership set of project identifiers.
type Set map[int64]struct{}

// Has reports whether id is a member. A nil Set has no members.
func (s Set) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in ascending order.
func (s Set) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Ledger is the persisted set of starred project identifiers. Identifiers are
// never validated against the record store; orphans are kept.
type Ledger struct {
	prefs   PreferenceStore
	logger  *slog.Logger
	members Set
}

// NewLedger loads the ledger from prefs. A missing key starts empty; an
// unreadable value is logged and also starts empty.
func NewLedger(ctx context.Context, prefs PreferenceStore, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	l := &Ledger{prefs: prefs, logger: logger, members: Set{}}

	raw, err := prefs.Get(ctx, StorageKey)
	if errors.Is(err, repository.ErrNotFound) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading favourites: %w", err)
	}

	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		logger.Warn("discarding unreadable favourites", "error", err)
		return l, nil
	}
	for _, id := range ids {
		l.members[id] = struct{}{}
	}
	return l, nil
}

// IsFavourite reports whether id is starred.
func (l *Ledger) IsFavourite(id int64) bool {
	return l.members.Has(id)
}

// Toggle flips membership of id and persists the new set before returning.
// On a persistence failure the in-memory set is left unchanged.
func (l *Ledger) Toggle(ctx context.Context, id int64) (bool, error) {
	next := make(Set, len(l.members)+1)
	for member := range l.members {
		next[member] = struct{}{}
	}
	starred := !next.Has(id)
	if starred {
		next[id] = struct{}{}
	} else {
		delete(next, id)
	}

	encoded, err := json.Marshal(next.IDs())
	if err != nil {
		return l.members.Has(id), fmt.Errorf("encoding favourites: %w", err)
	}
	if err := l.prefs.Set(ctx, StorageKey, string(encoded)); err != nil {
		return l.members.Has(id), fmt.Errorf("persisting favourites: %w", err)
	}

	l.members = next
	l.logger.Debug("favourite toggled", "project_id", id, "starred", starred)
	return starred, nil
}

// Members returns a snapshot of the current set.
func (l *Ledger) Members() Set {
	out := make(Set, len(l.members))
	for id := range l.members {
		out[id] = struct{}{}
	}
	return out
}
