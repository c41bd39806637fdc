package foods

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-optimizer/internal/catalog"
	"menu-optimizer/internal/database"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "foods.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

func TestDefaultFoodsLoad(t *testing.T) {
	defaults := DefaultFoods()
	require.NotEmpty(t, defaults)

	cat, err := catalog.Load(defaults)
	require.NoError(t, err)
	assert.Equal(t, len(defaults), cat.Len())

	i, ok := cat.Lookup("40")
	require.True(t, ok)
	assert.Equal(t, "גזר", cat.Food(i).Name)
	assert.True(t, cat.IsVegetable("40"))

	for _, c := range []catalog.Category{catalog.Carb, catalog.Protein, catalog.Vegetable, catalog.Fruit} {
		assert.NotEmpty(t, cat.Members(c), "no %s foods", c)
	}
}

func TestSeedDefaults(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultFoods()), n)

	again, err := repo.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, again, "seeding a filled table is a no-op")

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, n)
	assert.Equal(t, "1", list[0].ID)
	assert.Equal(t, 4.16, list[0].Prices[catalog.ManualSource])
	assert.Equal(t, []string{"breakfast", "dinner"}, list[0].AllowedMeals)
	assert.Equal(t, catalog.ManualSource, list[0].ActivePriceSource)

	_, err = catalog.Load(list)
	assert.NoError(t, err)
}

func TestUpsertGetDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	price := 2.5
	require.NoError(t, repo.Upsert(ctx, catalog.RawFood{
		ID: "tofu", Name: "Tofu", Protein: 14, Calories: 180, Carbs: 4, Fat: 12,
		Category: "protein", AllowedMeals: []string{"lunch", "dinner"}, Price: &price,
	}))

	got, err := repo.Get(ctx, "tofu")
	require.NoError(t, err)
	assert.Equal(t, "Tofu", got.Name)
	assert.Equal(t, map[string]float64{catalog.ManualSource: 2.5}, got.Prices)

	require.NoError(t, repo.Upsert(ctx, catalog.RawFood{
		ID: "tofu", Name: "Firm tofu", Protein: 15, Calories: 190, Category: "protein",
		Prices: map[string]float64{"victory": 2.2, "shufersal": 0}, ActivePriceSource: "victory",
	}))
	got, err = repo.Get(ctx, "tofu")
	require.NoError(t, err)
	assert.Equal(t, "Firm tofu", got.Name)
	assert.Equal(t, "victory", got.ActivePriceSource)
	assert.Equal(t, map[string]float64{"victory": 2.2}, got.Prices, "unavailable prices are not returned")
	assert.Empty(t, got.AllowedMeals)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, repo.Delete(ctx, "tofu"))
	_, err = repo.Get(ctx, "tofu")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, repo.Delete(ctx, "tofu"), ErrNotFound)
}

func TestUpsertRejectsUnknownCategory(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.Upsert(context.Background(), catalog.RawFood{ID: "x", Name: "x", Category: "dessert"})
	assert.Error(t, err)
}

func TestSetPricesAndLastUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	_, err := repo.SeedDefaults(ctx)
	require.NoError(t, err)

	_, ok, err := repo.LastPriceUpdate(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "manual prices do not count as a refresh")

	at := time.Date(2026, 3, 14, 3, 0, 0, 0, time.UTC)
	n, err := repo.SetPrices(ctx, map[string]map[string]float64{
		"1":       {"shufersal": 3.9, "victory": 0},
		"2":       {"rami_levy": 3.1},
		"missing": {"shufersal": 1},
	}, at)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	last, ok, err := repo.LastPriceUpdate(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, last.Equal(at), "expected %v, got %v", at, last)

	eggs, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 3.9, eggs.Prices["shufersal"])
	assert.NotContains(t, eggs.Prices, "victory")
	assert.Equal(t, 4.16, eggs.Prices[catalog.ManualSource])

	require.NoError(t, repo.SetActiveSource(ctx, "1", "shufersal"))
	eggs, err = repo.Get(ctx, "1")
	require.NoError(t, err)
	p, ok := catalog.ResolvePrice(*eggs)
	require.True(t, ok)
	assert.Equal(t, 3.9, p)
}
