package repository

import "context"

// PreferenceRepository manages durable key/value preferences.
// Get returns ErrNotFound when the key has never been written.
type PreferenceRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
