package favourite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ganot/showcase/internal/domain/favourite"
	"github.com/ganot/showcase/internal/repository"
	"github.com/ganot/showcase/internal/repository/mocks"
	"github.com/ganot/showcase/internal/sqlite"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestLedger_MissingKeyStartsEmpty(t *testing.T) {
	ctx := context.Background()
	prefs := &mocks.PreferenceRepository{}
	prefs.On("Get", ctx, favourite.StorageKey).Return("", repository.ErrNotFound)

	ledger, err := favourite.NewLedger(ctx, prefs, nil)
	require.NoError(t, err)
	require.Empty(t, ledger.Members())
	prefs.AssertExpectations(t)
}

func TestLedger_LoadsPersistedSet(t *testing.T) {
	ctx := context.Background()
	prefs := &mocks.PreferenceRepository{}
	prefs.On("Get", ctx, favourite.StorageKey).Return("[3,1]", nil)

	ledger, err := favourite.NewLedger(ctx, prefs, nil)
	require.NoError(t, err)
	require.True(t, ledger.IsFavourite(1))
	require.True(t, ledger.IsFavourite(3))
	require.False(t, ledger.IsFavourite(2))
	require.Equal(t, []int64{1, 3}, ledger.Members().IDs())
}

func TestLedger_CorruptValueStartsEmpty(t *testing.T) {
	ctx := context.Background()
	prefs := &mocks.PreferenceRepository{}
	prefs.On("Get", ctx, favourite.StorageKey).Return("{not json", nil)

	ledger, err := favourite.NewLedger(ctx, prefs, nil)
	require.NoError(t, err)
	require.Empty(t, ledger.Members())
}

func TestLedger_LoadError(t *testing.T) {
	ctx := context.Background()
	prefs := &mocks.PreferenceRepository{}
	boom := errors.New("locked")
	prefs.On("Get", ctx, favourite.StorageKey).Return("", boom)

	_, err := favourite.NewLedger(ctx, prefs, nil)
	require.ErrorIs(t, err, boom)
}

func TestLedger_TogglePersistsBeforeReturning(t *testing.T) {
	ctx := context.Background()
	prefs := &mocks.PreferenceRepository{}
	prefs.On("Get", ctx, favourite.StorageKey).Return("", repository.ErrNotFound)
	prefs.On("Set", ctx, favourite.StorageKey, "[42]").Return(nil).Once()
	prefs.On("Set", ctx, favourite.StorageKey, "[]").Return(nil).Once()

	ledger, err := favourite.NewLedger(ctx, prefs, nil)
	require.NoError(t, err)

	starred, err := ledger.Toggle(ctx, 42)
	require.NoError(t, err)
	require.True(t, starred)
	require.True(t, ledger.IsFavourite(42))

	starred, err = ledger.Toggle(ctx, 42)
	require.NoError(t, err)
	require.False(t, starred)
	require.False(t, ledger.IsFavourite(42))
	prefs.AssertExpectations(t)
}

func TestLedger_ToggleFailureLeavesSetUnchanged(t *testing.T) {
	ctx := context.Background()
	prefs := &mocks.PreferenceRepository{}
	prefs.On("Get", ctx, favourite.StorageKey).Return("[1]", nil)
	prefs.On("Set", ctx, favourite.StorageKey, "[]").Return(errors.New("quota exceeded"))

	ledger, err := favourite.NewLedger(ctx, prefs, nil)
	require.NoError(t, err)

	starred, err := ledger.Toggle(ctx, 1)
	require.Error(t, err)
	require.True(t, starred, "reports the unchanged membership")
	require.True(t, ledger.IsFavourite(1))
}

func TestLedger_MembersIsSnapshot(t *testing.T) {
	ctx := context.Background()
	prefs := &mocks.PreferenceRepository{}
	prefs.On("Get", ctx, favourite.StorageKey).Return("[1]", nil)

	ledger, err := favourite.NewLedger(ctx, prefs, nil)
	require.NoError(t, err)

	members := ledger.Members()
	delete(members, 1)
	require.True(t, ledger.IsFavourite(1))
}

func TestLedger_SurvivesReload(t *testing.T) {
	ctx := context.Background()
	db := sqlite.NewTestDB(t)
	prefs := sqlite.NewPreferenceRepository(db)

	ledger, err := favourite.NewLedger(ctx, prefs, nil)
	require.NoError(t, err)
	_, err = ledger.Toggle(ctx, 7)
	require.NoError(t, err)

	reloaded, err := favourite.NewLedger(ctx, prefs, nil)
	require.NoError(t, err)
	require.True(t, reloaded.IsFavourite(7))
}

func TestLedger_DoubleToggleIsIdentity(t *testing.T) {
	db := sqlite.NewTestDB(t)
	prefs := sqlite.NewPreferenceRepository(db)
	ctx := context.Background()

	rapid.Check(t, func(t *rapid.T) {
		ledger, err := favourite.NewLedger(ctx, prefs, nil)
		if err != nil {
			t.Fatalf("loading: %v", err)
		}
		for _, id := range rapid.SliceOfN(rapid.Int64Range(1, 20), 0, 6).Draw(t, "seed") {
			if _, err := ledger.Toggle(ctx, id); err != nil {
				t.Fatalf("seeding toggle: %v", err)
			}
		}
		before := ledger.Members()

		id := rapid.Int64Range(1, 25).Draw(t, "id")
		_, err = ledger.Toggle(ctx, id)
		require.NoError(t, err)
		_, err = ledger.Toggle(ctx, id)
		require.NoError(t, err)

		require.Equal(t, before, ledger.Members())
	})
}
