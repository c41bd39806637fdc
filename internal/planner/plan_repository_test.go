package planner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-optimizer/internal/catalog"
	"menu-optimizer/internal/database"
)

func TestPlanRepository(t *testing.T) {
	db, err := database.NewDB(filepath.Join(t.TempDir(), "menu.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := NewPlanRepository(db.SQL)
	ctx := context.Background()

	latest, err := repo.Latest(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, latest)

	cat := load(t, smallRecords())
	first := Format(cat, []DayPlan{sampleDay()}, scenarioTargets(1))
	first.PriceSource = catalog.ManualSource
	second := Format(cat, []DayPlan{sampleDay(), sampleDay()}, scenarioTargets(2))

	id1, err := repo.Save(ctx, "alice", first)
	require.NoError(t, err)
	id2, err := repo.Save(ctx, "alice", second)
	require.NoError(t, err)
	_, err = repo.Save(ctx, "bob", first)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	menus, err := repo.ListRecentByUserID(ctx, "alice", 5)
	require.NoError(t, err)
	require.Len(t, menus, 2)
	assert.Equal(t, id2, menus[0].ID)
	assert.Len(t, menus[0].Result.Days, 2)
	assert.Equal(t, catalog.ManualSource, menus[1].Result.PriceSource)
	assert.False(t, menus[0].CreatedAt.IsZero())

	latest, err = repo.Latest(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, id2, latest.ID)
	assert.Equal(t, second.TotalCost, latest.Result.TotalCost)
	assert.Equal(t, second.Days[1].Meal(catalog.Breakfast), latest.Result.Days[1].Meal(catalog.Breakfast))
}
