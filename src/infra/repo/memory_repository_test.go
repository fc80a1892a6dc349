package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlisting/src/core/domain"
	"eventlisting/src/core/ports"
)

func newTestEvent(t *testing.T, category *domain.Category, features ...domain.Feature) *domain.Event {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ev, err := domain.NewEvent("Launch", start, start.Add(time.Hour), []string{"a.jpg"}, category, features)
	require.NoError(t, err)
	return ev
}

func TestMemoryRepository_CommitMakesRowsVisible(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	err := r.WithTx(ctx, func(tx ports.EventTx) error {
		c, err := tx.InsertCategory(ctx, domain.NewCategory("Conference"))
		require.NoError(t, err)
		fs, err := tx.InsertFeatures(ctx, []domain.Feature{domain.NewFeature("Keynote")})
		require.NoError(t, err)
		require.Len(t, fs, 1)
		f := fs[0]

		found, err := tx.FindCategoryByName(ctx, "Conference")
		require.NoError(t, err)
		assert.Equal(t, c.ID, found.ID, "staged rows are visible inside the unit of work")

		return tx.InsertEvent(ctx, newTestEvent(t, c, f))
	})
	require.NoError(t, err)

	events, err := r.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Conference", events[0].Category.Name)
	assert.Equal(t, []string{"Keynote"}, events[0].FeatureNames())
	assert.Len(t, r.Categories(), 1)
}

func TestMemoryRepository_FailedUnitLeavesNothing(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	boom := errors.New("boom")

	err := r.WithTx(ctx, func(tx ports.EventTx) error {
		_, _ = tx.InsertCategory(ctx, domain.NewCategory("Conference"))
		_, _ = tx.InsertFeatures(ctx, []domain.Feature{domain.NewFeature("Keynote")})
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, r.Categories())
	assert.Empty(t, r.Features())
}

func TestMemoryRepository_CancelledContextAbortsCommit(t *testing.T) {
	r := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())

	err := r.WithTx(ctx, func(tx ports.EventTx) error {
		_, err := tx.InsertCategory(ctx, domain.NewCategory("Conference"))
		cancel()
		return err
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.Categories())
}

func TestMemoryRepository_NameMatching(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, r.WithTx(ctx, func(tx ports.EventTx) error {
		_, _ = tx.InsertCategory(ctx, domain.NewCategory("Conference"))
		_, _ = tx.InsertFeatures(ctx, []domain.Feature{domain.NewFeature("Keynote")})
		return nil
	}))

	require.NoError(t, r.WithTx(ctx, func(tx ports.EventTx) error {
		_, err := tx.FindCategoryByName(ctx, "conference")
		assert.True(t, domain.IsNotFound(err), "categories match exactly")

		features, err := tx.FindFeaturesByNames(ctx, []string{"KEYNOTE", "Other"})
		require.NoError(t, err)
		require.Len(t, features, 1)
		assert.Equal(t, "Keynote", features[0].Name)

		again, err := tx.InsertFeatures(ctx, []domain.Feature{domain.NewFeature("keynote")})
		require.NoError(t, err)
		require.Len(t, again, 1)
		assert.Equal(t, features[0].ID, again[0].ID, "insert converges on the existing row")
		return nil
	}))

	assert.Len(t, r.Features(), 1)
}

func TestMemoryRepository_DuplicateEventID(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	ev := newTestEvent(t, nil)

	require.NoError(t, r.WithTx(ctx, func(tx ports.EventTx) error { return tx.InsertEvent(ctx, ev) }))
	err := r.WithTx(ctx, func(tx ports.EventTx) error { return tx.InsertEvent(ctx, ev) })

	assert.True(t, domain.IsConflict(err))
}

func TestMemoryRepository_ListReturnsCopies(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, r.WithTx(ctx, func(tx ports.EventTx) error {
		return tx.InsertEvent(ctx, newTestEvent(t, domain.NewCategory("Conference")))
	}))

	first, _ := r.ListEvents(ctx)
	first[0].Covers[0] = "changed"
	first[0].Category.Name = "changed"

	second, _ := r.ListEvents(ctx)
	assert.Equal(t, "a.jpg", second[0].Covers[0])
	assert.Equal(t, "Conference", second[0].Category.Name)
}

func TestMemoryRepository_InsertFeaturesDedupesByKey(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, r.WithTx(ctx, func(tx ports.EventTx) error {
		out, err := tx.InsertFeatures(ctx, []domain.Feature{
			domain.NewFeature("Zeta"),
			domain.NewFeature("alpha"),
			domain.NewFeature("ALPHA"),
		})
		require.NoError(t, err)
		assert.Len(t, out, 2)
		return nil
	}))

	stored := r.Features()
	require.Len(t, stored, 2)
	assert.Equal(t, "alpha", stored[0].Name, "stored in key order, first spelling wins")
	assert.Equal(t, "Zeta", stored[1].Name)
}

func TestSortedByKey(t *testing.T) {
	in := []domain.Feature{
		domain.NewFeature("b"),
		domain.NewFeature("A"),
		domain.NewFeature("B"),
		domain.NewFeature("c"),
	}
	reversed := []domain.Feature{in[3], in[2], in[1], in[0]}

	names := func(fs []domain.Feature) []string {
		out := make([]string, 0, len(fs))
		for _, f := range fs {
			out = append(out, domain.FeatureKey(f.Name))
		}
		return out
	}
	assert.Equal(t, []string{"a", "b", "c"}, names(sortedByKey(in)))
	assert.Equal(t, names(sortedByKey(in)), names(sortedByKey(reversed)), "order independent of request order")
}
