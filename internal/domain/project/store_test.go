package project_test

import (
	"testing"
	"time"

	"github.com/ganot/showcase/internal/domain/project"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func ptr[T any](v T) *T { return &v }

func TestStore_NewRejectsDuplicateIDs(t *testing.T) {
	_, err := project.NewStore([]project.Project{
		{ID: 1, Name: "Alpha"},
		{ID: 1, Name: "Beta"},
	})
	require.ErrorIs(t, err, project.ErrDuplicateID)
}

func TestStore_NewRejectsEmptyName(t *testing.T) {
	_, err := project.NewStore([]project.Project{{ID: 1, Name: "  "}})
	require.ErrorIs(t, err, project.ErrValidation)
}

func TestStore_CreateDefaultsAndTrims(t *testing.T) {
	store, err := project.NewStore(nil, project.WithClock(fixedClock(1000)))
	require.NoError(t, err)

	rec, err := store.Create(project.CreateRequest{Name: "  Alpha  "})
	require.NoError(t, err)
	require.Equal(t, int64(1000), rec.ID)
	require.Equal(t, "Alpha", rec.Name)
	require.Empty(t, rec.Category)
	require.NotNil(t, rec.Tags)
	require.Empty(t, rec.Tags)
	require.True(t, rec.Date.IsZero())
	require.Equal(t, 1, store.Len())
}

func TestStore_CreateRequiresName(t *testing.T) {
	store, err := project.NewStore(nil)
	require.NoError(t, err)

	_, err = store.Create(project.CreateRequest{Name: " \t"})
	require.ErrorIs(t, err, project.ErrValidation)
	require.Zero(t, store.Len())
}

func TestStore_IDsStrictlyIncrease(t *testing.T) {
	// A frozen clock below the seed maximum must still produce fresh ids.
	store, err := project.NewStore([]project.Project{{ID: 5000, Name: "Seed"}}, project.WithClock(fixedClock(10)))
	require.NoError(t, err)

	a, err := store.Create(project.CreateRequest{Name: "A"})
	require.NoError(t, err)
	b, err := store.Create(project.CreateRequest{Name: "B"})
	require.NoError(t, err)
	require.Equal(t, int64(5001), a.ID)
	require.Equal(t, int64(5002), b.ID)

	require.NoError(t, store.Delete(b.ID))
	c, err := store.Create(project.CreateRequest{Name: "C"})
	require.NoError(t, err)
	require.Equal(t, int64(5003), c.ID, "deleted ids are never reused")
}

func TestStore_UpdatePreservesOmittedFields(t *testing.T) {
	store, err := project.NewStore([]project.Project{
		{ID: 5, Name: "X", Category: "C", Tags: []string{"t1"}},
	})
	require.NoError(t, err)

	rec, err := store.Update(5, project.UpdateRequest{Name: ptr("Y")})
	require.NoError(t, err)
	require.Equal(t, project.Project{ID: 5, Name: "Y", Category: "C", Tags: []string{"t1"}}, rec)

	got, err := store.Get(5)
	require.NoError(t, err)
	require.Equal(t, rec, got)
}

func TestStore_UpdateClearsTagsWithEmptySlice(t *testing.T) {
	store, err := project.NewStore([]project.Project{{ID: 5, Name: "X", Tags: []string{"t1"}}})
	require.NoError(t, err)

	rec, err := store.Update(5, project.UpdateRequest{Tags: []string{}})
	require.NoError(t, err)
	require.Empty(t, rec.Tags)
}

func TestStore_UpdateErrors(t *testing.T) {
	store, err := project.NewStore([]project.Project{{ID: 5, Name: "X"}})
	require.NoError(t, err)

	_, err = store.Update(99, project.UpdateRequest{Name: ptr("Y")})
	require.ErrorIs(t, err, project.ErrNotFound)

	_, err = store.Update(5, project.UpdateRequest{Name: ptr(""), Category: ptr("changed")})
	require.ErrorIs(t, err, project.ErrValidation)

	rec, err := store.Get(5)
	require.NoError(t, err)
	require.Equal(t, "X", rec.Name)
	require.Empty(t, rec.Category, "rejected update must not partially apply")
}

func TestStore_DeleteMissing(t *testing.T) {
	store, err := project.NewStore([]project.Project{{ID: 1, Name: "A"}})
	require.NoError(t, err)

	require.ErrorIs(t, store.Delete(2), project.ErrNotFound)
	require.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(1))
	_, err = store.Get(1)
	require.ErrorIs(t, err, project.ErrNotFound)
}

func TestStore_AllIsSnapshot(t *testing.T) {
	store, err := project.NewStore([]project.Project{
		{ID: 1, Name: "A", Tags: []string{"x"}},
		{ID: 2, Name: "B"},
	})
	require.NoError(t, err)

	all := store.All()
	all[0].Name = "mutated"
	all[0].Tags[0] = "mutated"

	fresh := store.All()
	require.Len(t, fresh, 2)
	require.Equal(t, "A", fresh[0].Name)
	require.Equal(t, []string{"x"}, fresh[0].Tags)
}

func TestStore_PreservesInsertionOrder(t *testing.T) {
	store, err := project.NewStore([]project.Project{{ID: 10, Name: "Zed"}, {ID: 3, Name: "Alpha"}}, project.WithClock(fixedClock(1)))
	require.NoError(t, err)

	_, err = store.Create(project.CreateRequest{Name: "Mid"})
	require.NoError(t, err)

	var names []string
	for _, rec := range store.All() {
		names = append(names, rec.Name)
	}
	require.Equal(t, []string{"Zed", "Alpha", "Mid"}, names)
}

func TestStore_RoundTripRestoresContent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seedLen := rapid.IntRange(0, 5).Draw(t, "seedLen")
		seed := make([]project.Project, 0, seedLen)
		for i := range seedLen {
			seed = append(seed, project.Project{
				ID:   int64(i + 1),
				Name: rapid.StringMatching(`[A-Za-z][a-z ]{0,10}[a-z]`).Draw(t, "seedName"),
				Tags: rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,6}`), 0, 3).Draw(t, "seedTags"),
			})
		}
		store, err := project.NewStore(seed)
		if err != nil {
			t.Fatalf("seeding: %v", err)
		}
		before := store.All()

		tags := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,6}`), 0, 4).Draw(t, "tags")
		req := project.CreateRequest{
			Name:        rapid.StringMatching(`[A-Za-z][a-z]{0,12}`).Draw(t, "name"),
			Category:    rapid.StringMatching(`[a-z]{0,8}`).Draw(t, "category"),
			Description: rapid.String().Draw(t, "description"),
			Tags:        tags,
			Date:        project.NewDate(rapid.IntRange(1990, 2030).Draw(t, "year"), time.Month(rapid.IntRange(1, 12).Draw(t, "month")), rapid.IntRange(1, 28).Draw(t, "day")),
			Link:        rapid.StringMatching(`https://[a-z]{1,8}\.test`).Draw(t, "link"),
		}

		rec, err := store.Create(req)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		same, err := store.Update(rec.ID, project.UpdateRequest{
			Name:        &rec.Name,
			Category:    &rec.Category,
			Description: &rec.Description,
			Tags:        rec.Tags,
			Date:        &rec.Date,
			Link:        &rec.Link,
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if same.Name != rec.Name || same.Link != rec.Link || len(same.Tags) != len(rec.Tags) {
			t.Fatalf("update with identical fields changed the record: %+v vs %+v", same, rec)
		}
		if err := store.Delete(rec.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}

		require.Equal(t, before, store.All())
	})
}
