package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }

func TestParseSlot(t *testing.T) {
	tests := []struct {
		in   string
		want Slot
		ok   bool
	}{
		{"breakfast", Breakfast, true},
		{"  Lunch ", Lunch, true},
		{"DINNER", Dinner, true},
		{"snacks", Snacks, true},
		{"בוקר", Breakfast, true},
		{" צהריים", Lunch, true},
		{"ערב", Dinner, true},
		{"תוספות", Snacks, true},
		{"brunch", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSlot(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	records := []RawFood{
		{ID: "1", Name: "Eggs", Protein: 12.6, Calories: 155, Carbs: 1, Fat: 11, Category: "protein",
			AllowedMeals: []string{"breakfast", "Dinner "}, Price: price(4.16)},
		{ID: "2", Name: "Rice", Protein: 2.7, Calories: 130, Carbs: 28, Fat: 0.3, Category: "Carb",
			AllowedMeals: []string{"צהריים"}, Prices: map[string]float64{"manual": 0.6, "victory": 0.5}, ActivePriceSource: "victory"},
		{ID: "3", Name: "Mystery", Category: "other", AllowedMeals: []string{"brunch"}, Price: price(1)},
	}

	c, err := Load(records)
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	eggs := c.Food(0)
	assert.InDelta(t, 0.126, eggs.Protein, 1e-12)
	assert.InDelta(t, 1.55, eggs.Calories, 1e-12)
	assert.InDelta(t, 0.0416, eggs.Price, 1e-12)
	assert.Equal(t, Protein, eggs.Category)

	rice := c.Food(1)
	assert.InDelta(t, 0.005, rice.Price, 1e-12)
	assert.Equal(t, Carb, rice.Category)

	allowed := c.AllowedFoods()
	assert.True(t, allowed.Allows(Breakfast, 0))
	assert.True(t, allowed.Allows(Dinner, 0))
	assert.False(t, allowed.Allows(Lunch, 0))
	assert.True(t, allowed.Allows(Lunch, 1))
	for _, slot := range Slots {
		assert.False(t, allowed.Allows(slot, 2), "unrecognized slots must allow nothing")
	}

	assert.Equal(t, []int{0}, c.Members(Protein))
	assert.Equal(t, []int{1}, c.Members(Carb))
}

func TestLoadAllowedFoodsIsACopy(t *testing.T) {
	c, err := Load([]RawFood{{ID: "a", Category: "fruit", AllowedMeals: []string{"snacks"}, Price: price(1)}})
	require.NoError(t, err)

	first := c.AllowedFoods()
	first.Remove(Snacks, 0)

	assert.True(t, c.AllowedFoods().Allows(Snacks, 0))
}

func TestLoadErrors(t *testing.T) {
	t.Run("MissingPrice", func(t *testing.T) {
		_, err := Load([]RawFood{{ID: "x", Name: "Kale", Category: "vegetable",
			Prices: map[string]float64{"manual": 1}, ActivePriceSource: "shufersal"}})
		var mpe *MissingPriceError
		require.True(t, errors.As(err, &mpe))
		assert.Equal(t, "x", mpe.FoodID)
	})

	t.Run("NegativeSourcePrice", func(t *testing.T) {
		_, err := Load([]RawFood{{ID: "x", Category: "fat",
			Prices: map[string]float64{"victory": -1}, ActivePriceSource: "victory"}})
		var mpe *MissingPriceError
		assert.ErrorAs(t, err, &mpe)
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		_, err := Load([]RawFood{{ID: "x", Category: "dessert", Price: price(1)}})
		assert.ErrorContains(t, err, "unknown food category")
	})

	t.Run("DuplicateID", func(t *testing.T) {
		_, err := Load([]RawFood{
			{ID: "x", Category: "fat", Price: price(1)},
			{ID: "x", Category: "fat", Price: price(2)},
		})
		assert.ErrorContains(t, err, "duplicate food id")
	})
}

func TestResolvePriceAcceptsZero(t *testing.T) {
	p, ok := ResolvePrice(RawFood{Price: price(0)})
	assert.True(t, ok)
	assert.Zero(t, p)

	p, ok = ResolvePrice(RawFood{Prices: map[string]float64{"victory": 0}, ActivePriceSource: "victory"})
	assert.True(t, ok, "a zero source price is as valid as a zero explicit price")
	assert.Zero(t, p)

	_, ok = ResolvePrice(RawFood{Prices: map[string]float64{"victory": 3}, ActivePriceSource: "shufersal"})
	assert.False(t, ok)
}

func TestForSource(t *testing.T) {
	records := []RawFood{
		{ID: "direct", Prices: map[string]float64{"manual": 9, "shufersal": 2, "victory": 4}},
		{ID: "mean", Prices: map[string]float64{"manual": 9, "rami_levy": 3, "victory": 5}},
		{ID: "manual-only", Prices: map[string]float64{"manual": 9}},
		{ID: "single", Price: price(7)},
	}

	snap := ForSource(records, "shufersal")
	require.Len(t, snap, 2)

	assert.Equal(t, "direct", snap[0].ID)
	assert.Equal(t, 2.0, *snap[0].Price)
	assert.Equal(t, "shufersal", snap[0].ActivePriceSource)

	assert.Equal(t, "mean", snap[1].ID)
	assert.Equal(t, 4.0, *snap[1].Price)

	manual := ForSource(records, ManualSource)
	require.Len(t, manual, 4)
	assert.Equal(t, 7.0, *manual[3].Price)

	// input untouched
	assert.Nil(t, records[0].Price)
	assert.Len(t, records[0].Prices, 3)
}
