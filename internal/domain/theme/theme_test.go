package theme_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ganot/showcase/internal/domain/theme"
	"github.com/ganot/showcase/internal/repository"
	"github.com/ganot/showcase/internal/repository/mocks"
	"github.com/ganot/showcase/internal/sqlite"
	"github.com/stretchr/testify/require"
)

func TestPreference_Defaults(t *testing.T) {
	ctx := context.Background()

	for name, stored := range map[string]struct {
		value string
		err   error
	}{
		"missing":    {"", repository.ErrNotFound},
		"unreadable": {"sometimes", nil},
	} {
		t.Run(name, func(t *testing.T) {
			prefs := &mocks.PreferenceRepository{}
			prefs.On("Get", ctx, theme.StorageKey).Return(stored.value, stored.err)

			pref, err := theme.New(ctx, prefs, nil)
			require.NoError(t, err)
			require.False(t, pref.Dark())
		})
	}
}

func TestPreference_ToggleFailureKeepsValue(t *testing.T) {
	ctx := context.Background()
	prefs := &mocks.PreferenceRepository{}
	prefs.On("Get", ctx, theme.StorageKey).Return("true", nil)
	prefs.On("Set", ctx, theme.StorageKey, "false").Return(errors.New("read-only"))

	pref, err := theme.New(ctx, prefs, nil)
	require.NoError(t, err)
	require.True(t, pref.Dark())

	dark, err := pref.Toggle(ctx)
	require.Error(t, err)
	require.True(t, dark)
	require.True(t, pref.Dark())
}

func TestPreference_SurvivesReload(t *testing.T) {
	ctx := context.Background()
	prefs := sqlite.NewPreferenceRepository(sqlite.NewTestDB(t))

	pref, err := theme.New(ctx, prefs, nil)
	require.NoError(t, err)
	dark, err := pref.Toggle(ctx)
	require.NoError(t, err)
	require.True(t, dark)

	reloaded, err := theme.New(ctx, prefs, nil)
	require.NoError(t, err)
	require.True(t, reloaded.Dark())
}
