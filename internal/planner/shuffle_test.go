package planner

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-optimizer/internal/catalog"
)

func plainDay(foods ...string) DayPlan {
	portions := make([]Portion, 0, len(foods))
	for _, f := range foods {
		portions = append(portions, Portion{FoodID: f, Grams: 100})
	}
	return DayPlan{Meals: map[catalog.Slot][]Portion{catalog.Lunch: portions}}
}

func isVeg(id string) bool { return id == "cucumber" || id == "tomato" }

func TestShuffleDaysAvoidsSharedFoods(t *testing.T) {
	days := []DayPlan{
		plainDay("bread", "chicken", "cucumber"),
		plainDay("pasta", "tofu", "cucumber"),
		plainDay("rice", "egg", "tomato"),
		plainDay("bread", "egg", "tomato"),
	}

	out := ShuffleDays(days, 3, isVeg, rand.New(rand.NewSource(7)))
	require.Len(t, out, 3)
	for i := 1; i < len(out); i++ {
		prev := nonVegetableFoods(out[i-1], isVeg)
		cur := nonVegetableFoods(out[i], isVeg)
		assert.False(t, overlaps(cur, prev), "days %d and %d share a food", i, i+1)
	}
}

func TestShuffleDaysIsDeterministic(t *testing.T) {
	days := []DayPlan{
		plainDay("bread", "chicken"),
		plainDay("pasta", "tofu"),
		plainDay("rice", "egg"),
	}
	a := ShuffleDays(days, 3, isVeg, rand.New(rand.NewSource(42)))
	b := ShuffleDays(days, 3, isVeg, rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)
}

func TestShuffleDaysFillsFromPool(t *testing.T) {
	days := []DayPlan{
		plainDay("bread", "chicken"),
		plainDay("bread", "tofu"),
	}

	out := ShuffleDays(days, 4, isVeg, rand.New(rand.NewSource(1)))
	require.Len(t, out, 4)
	for i := 1; i < len(out); i++ {
		assert.NotEqual(t, daySignature(out[i-1]), daySignature(out[i]))
	}
}

func TestShuffleDaysIdenticalPool(t *testing.T) {
	days := []DayPlan{plainDay("bread"), plainDay("bread")}
	out := ShuffleDays(days, 3, isVeg, rand.New(rand.NewSource(1)))
	assert.Len(t, out, 3, "repeats are accepted when nothing else is left")
}

func TestShuffleDaysEmpty(t *testing.T) {
	assert.Nil(t, ShuffleDays(nil, 3, isVeg, rand.New(rand.NewSource(1))))
	assert.Nil(t, ShuffleDays([]DayPlan{plainDay("bread")}, 0, isVeg, rand.New(rand.NewSource(1))))
}

func TestGenerateWithShuffle(t *testing.T) {
	cat := load(t, slotBoundRecords())
	g := newTestGenerator()
	g.Shuffle = true

	res := g.Generate(t.Context(), cat, scenarioTargets(3))
	require.True(t, res.Success, res.Message)
	assert.Len(t, res.Days, 3)
}
