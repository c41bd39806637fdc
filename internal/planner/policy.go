package planner

import (
	"strings"

	"menu-optimizer/internal/catalog"
)

// SlotShare bounds a slot's share of daily calories.
type SlotShare struct {
	Min float64
	Max float64
}

// Policy is the fixed configuration of the engine.
type Policy struct {
	SlotShares [catalog.NumSlots]SlotShare
	// AlwaysRotate lists vegetables (by id or name) that are pruned between
	// days like non-vegetables.
	AlwaysRotate []string
}

// DefaultPolicy returns the standard slot table and rotation list.
func DefaultPolicy() Policy {
	return Policy{
		SlotShares: [catalog.NumSlots]SlotShare{
			catalog.Breakfast: {Min: 0.20, Max: 0.30},
			catalog.Lunch:     {Min: 0.30, Max: 0.40},
			catalog.Dinner:    {Min: 0.25, Max: 0.35},
			catalog.Snacks:    {Min: 0.10, Max: 0.20},
		},
		AlwaysRotate: []string{"carrot", "גזר"},
	}
}

func (p Policy) rotatesAlways(food catalog.FoodItem) bool {
	for _, key := range p.AlwaysRotate {
		key = strings.TrimSpace(key)
		if strings.EqualFold(key, food.ID) || strings.EqualFold(key, strings.TrimSpace(food.Name)) {
			return true
		}
	}
	return false
}
