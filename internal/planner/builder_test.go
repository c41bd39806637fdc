package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-optimizer/internal/catalog"
	"menu-optimizer/internal/milp"
)

func buildFor(t *testing.T, records []catalog.RawFood, run int) (*catalog.Catalog, *DayModel) {
	t.Helper()
	cat := load(t, records)
	dm := BuildDayModel(BuildInput{
		Catalog: cat,
		Allowed: cat.AllowedFoods(),
		Targets: scenarioTargets(1),
		Policy:  DefaultPolicy(),
		Run:     run,
	})
	require.NoError(t, dm.Model.Validate())
	return cat, dm
}

func TestBuildDayModelStructure(t *testing.T) {
	_, dm := buildFor(t, slotBoundRecords(), 3)
	m := dm.Model

	for _, name := range []string{
		"min_protein_3", "max_protein_3", "min_calories_3", "max_calories_3", "max_carbs_3",
		"min_calories_breakfast_3", "max_calories_snacks_3",
		"one_carb_breakfast_3", "one_protein_dinner_3",
		"some_vegetable_lunch_3", "some_fruit_snacks_3",
	} {
		_, ok := m.Constraint(name)
		assert.True(t, ok, "missing constraint %s", name)
	}

	// Role indicators only exist for slots the food is eligible in.
	_, ok := m.Constraint("min_carb_toast_breakfast_3")
	assert.True(t, ok)
	_, ok = m.Constraint("min_carb_toast_dinner_3")
	assert.False(t, ok)

	// Snacks carry no carb or protein role.
	_, ok = m.Constraint("one_carb_snacks_3")
	assert.False(t, ok)
}

func TestBuildDayModelExcludesDisallowedPairs(t *testing.T) {
	cat, dm := buildFor(t, slotBoundRecords(), 0)

	i, ok := cat.Lookup("toast")
	require.True(t, ok)

	c, ok := dm.Model.Constraint("exclude_food_toast_dinner_0")
	require.True(t, ok)
	assert.Equal(t, milp.Equal, c.Sense)
	assert.Zero(t, c.RHS)

	lo, hi := dm.Model.Bounds(dm.qty[i][catalog.Dinner])
	assert.Zero(t, lo)
	assert.Zero(t, hi)

	// 750 kcal of breakfast at 3 kcal/g.
	_, hi = dm.Model.Bounds(dm.qty[i][catalog.Breakfast])
	assert.InDelta(t, 250, hi, 1e-9)
}

func TestPortionCap(t *testing.T) {
	tg := scenarioTargets(1)
	share := SlotShare{Min: 0.1, Max: 0.2}

	rice := catalog.FoodItem{Calories: 3, Protein: 0.08, Carbs: 0.45, Fat: 0.09}
	assert.InDelta(t, 500.0/3, portionCap(rice, tg, share), 1e-9, "slot calories bind")

	oil := catalog.FoodItem{Calories: 0.5, Fat: 1}
	assert.InDelta(t, 90, portionCap(oil, tg, share), 1e-9, "daily fat binds")

	water := catalog.FoodItem{}
	assert.Equal(t, MaxQty, portionCap(water, tg, share))
}

func TestBuildDayModelKeepsMaxQtyForNegativeNutrients(t *testing.T) {
	records := smallRecords()
	records[0].Fat = -1
	cat, dm := buildFor(t, records, 0)

	i, _ := cat.Lookup("pasta")
	_, hi := dm.Model.Bounds(dm.qty[i][catalog.Lunch])
	assert.Equal(t, MaxQty, hi)
}

func TestSelectionIndicatorsReuseRoles(t *testing.T) {
	cat, dm := buildFor(t, smallRecords(), 0)
	dm.AddSelectionIndicators()

	bread, _ := cat.Lookup("bread")
	assert.Equal(t, dm.role[bread][catalog.Lunch], dm.selection[bread][catalog.Lunch])
	_, ok := dm.Model.Constraint("sel_max_bread_lunch_0")
	assert.False(t, ok)

	// Bread has no role at snacks and gets its own indicator.
	assert.True(t, dm.selected[bread][catalog.Snacks])
	_, ok = dm.Model.Constraint("sel_max_bread_snacks_0")
	assert.True(t, ok)
}

func TestBuildDayModelBreakfastDinnerExclusion(t *testing.T) {
	_, dm := buildFor(t, smallRecords(), 0)

	_, ok := dm.Model.Constraint("bd_breakfast_bread_0")
	assert.True(t, ok)

	// Breakfast-only foods need no exclusion.
	_, dm = buildFor(t, slotBoundRecords(), 0)
	_, ok = dm.Model.Constraint("bd_breakfast_toast_0")
	assert.False(t, ok)
}

func TestBuildDayModelExcludeSet(t *testing.T) {
	cat := load(t, smallRecords())
	dm := BuildDayModel(BuildInput{
		Catalog: cat,
		Allowed: cat.AllowedFoods(),
		Exclude: map[string]bool{"bread": true},
		Targets: scenarioTargets(1),
		Policy:  DefaultPolicy(),
	})

	i, _ := cat.Lookup("bread")
	for _, slot := range catalog.Slots {
		_, hi := dm.Model.Bounds(dm.qty[i][slot])
		assert.Zero(t, hi, "bread still servable at %s", slot)
	}
	_, ok := dm.Model.Constraint("min_carb_bread_lunch_0")
	assert.False(t, ok)
}

func TestAddDuplicateGuard(t *testing.T) {
	cat, dm := buildFor(t, smallRecords(), 0)
	bread, _ := cat.Lookup("bread")
	tofu, _ := cat.Lookup("tofu")

	assert.False(t, dm.AddDuplicateGuard(catalog.Lunch, []int{bread, tofu}, 1), "guard needs selection indicators")

	dm.AddSelectionIndicators()
	assert.True(t, dm.AddDuplicateGuard(catalog.Lunch, []int{bread, tofu}, 1))
	assert.False(t, dm.AddDuplicateGuard(catalog.Lunch, nil, 2))

	c, ok := dm.Model.Constraint("no_repeat_lunch_day1_0")
	require.True(t, ok)
	assert.Equal(t, milp.LessEqual, c.Sense)
	assert.Equal(t, 1.0, c.RHS)
	assert.Len(t, c.Terms, 2)
}

func TestDuplicateGuardSkipsPrunedFoods(t *testing.T) {
	cat := load(t, smallRecords())
	allowed := cat.AllowedFoods()
	bread, _ := cat.Lookup("bread")
	tofu, _ := cat.Lookup("tofu")
	allowed.Remove(catalog.Lunch, bread)

	dm := BuildDayModel(BuildInput{Catalog: cat, Allowed: allowed, Targets: scenarioTargets(1), Policy: DefaultPolicy()})
	dm.AddSelectionIndicators()
	assert.False(t, dm.AddDuplicateGuard(catalog.Lunch, []int{bread, tofu}, 1))
}

func TestReadDayKeepsSelectedTinyPortions(t *testing.T) {
	cat, dm := buildFor(t, smallRecords(), 0)
	bread, _ := cat.Lookup("bread")
	tofu, _ := cat.Lookup("tofu")

	values := make([]float64, dm.Model.NumVars())
	values[dm.qty[bread][catalog.Lunch]] = 5e-4
	values[dm.qty[tofu][catalog.Lunch]] = 1e-9

	day := dm.readDay(&milp.Solution{Status: milp.StatusOptimal, Values: values, Objective: 1})
	lunch := day.Meal(catalog.Lunch)
	require.Len(t, lunch, 1, "noise is dropped, a selected portion is not")
	assert.Equal(t, "bread", lunch[0].FoodID)
}
