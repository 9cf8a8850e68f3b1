// Package theme holds the persisted light/dark display preference.
package theme

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ganot/showcase/internal/repository"
)

// StorageKey is the preference key holding the dark mode flag.
const StorageKey = "darkMode"

// PreferenceStore is the durable key/value storage the preference persists to.
type PreferenceStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Preference caches the persisted dark mode flag.
type Preference struct {
	prefs  PreferenceStore
	logger *slog.Logger
	dark   bool
}

// New loads the preference. Missing or unreadable values mean light mode.
func New(ctx context.Context, prefs PreferenceStore, logger *slog.Logger) (*Preference, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Preference{prefs: prefs, logger: logger}

	raw, err := prefs.Get(ctx, StorageKey)
	if errors.Is(err, repository.ErrNotFound) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading theme: %w", err)
	}

	dark, err := strconv.ParseBool(raw)
	if err != nil {
		logger.Warn("ignoring unreadable theme preference", "value", raw)
		return p, nil
	}
	p.dark = dark
	return p, nil
}

// Dark reports whether dark mode is on.
func (p *Preference) Dark() bool {
	return p.dark
}

// Toggle flips dark mode and persists it before returning.
func (p *Preference) Toggle(ctx context.Context) (bool, error) {
	next := !p.dark
	if err := p.prefs.Set(ctx, StorageKey, strconv.FormatBool(next)); err != nil {
		return p.dark, fmt.Errorf("persisting theme: %w", err)
	}
	p.dark = next
	return next, nil
}
