package planner

import "menu-optimizer/internal/catalog"

// Portion is one food served in a meal slot.
type Portion struct {
	FoodID string  `json:"food_id"`
	Name   string  `json:"name"`
	Grams  float64 `json:"grams"`
}

// Nutrition holds daily macro totals.
type Nutrition struct {
	Protein  float64 `json:"protein"`
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// DayPlan is the menu for a single day.
type DayPlan struct {
	Meals     map[catalog.Slot][]Portion `json:"meals"`
	Totals    Nutrition                  `json:"totals"`
	Cost      float64                    `json:"cost"`
	Recycled  bool                       `json:"recycled,omitempty"`
	SourceDay int                        `json:"source_day,omitempty"` // 1-based accepted day a recycled day repeats
}

// Meal returns the portions served in slot.
func (d DayPlan) Meal(slot catalog.Slot) []Portion {
	return d.Meals[slot]
}

func (d DayPlan) clone() DayPlan {
	out := d
	out.Meals = make(map[catalog.Slot][]Portion, len(d.Meals))
	for slot, portions := range d.Meals {
		out.Meals[slot] = append([]Portion(nil), portions...)
	}
	return out
}

// MenuResult is the outcome of one generation run.
type MenuResult struct {
	Success      bool               `json:"success"`
	Message      string             `json:"message,omitempty"`
	Days         []DayPlan          `json:"days"`
	TotalCost    float64            `json:"total_cost"`
	AvgDailyCost float64            `json:"avg_daily_cost"`
	RecycledDays int                `json:"recycled_days,omitempty"`
	PriceSource  string             `json:"price_source,omitempty"`
	SourceCosts  map[string]float64 `json:"source_costs,omitempty"`
	Targets      Targets            `json:"targets"`
}

func failure(t Targets, err error) MenuResult {
	return MenuResult{Success: false, Message: err.Error(), Targets: t}
}
