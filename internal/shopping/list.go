package shopping

import (
	"math"
	"sort"

	"menu-optimizer/internal/catalog"
	"menu-optimizer/internal/planner"
)

// Item is the total amount of one food across a menu.
type Item struct {
	FoodID string  `json:"food_id"`
	Name   string  `json:"name"`
	Grams  float64 `json:"grams"`
	Cost   float64 `json:"cost,omitempty"`
}

// List is the shopping list of a generated menu.
type List struct {
	Days        int     `json:"days"`
	PriceSource string  `json:"price_source,omitempty"`
	Items       []Item  `json:"items"`
	TotalGrams  float64 `json:"total_grams"`
	TotalCost   float64 `json:"total_cost,omitempty"`
}

// Build sums the grams of every food over all days and slots, recycled
// days included. Items are ordered by amount, largest first. When cat is
// given, item costs are priced from it.
func Build(res planner.MenuResult, cat *catalog.Catalog) List {
	list := List{Days: len(res.Days), PriceSource: res.PriceSource, Items: []Item{}}

	index := make(map[string]int)
	for _, day := range res.Days {
		for _, slot := range catalog.Slots {
			for _, p := range day.Meal(slot) {
				i, ok := index[p.FoodID]
				if !ok {
					i = len(list.Items)
					index[p.FoodID] = i
					list.Items = append(list.Items, Item{FoodID: p.FoodID, Name: p.Name})
				}
				list.Items[i].Grams += p.Grams
			}
		}
	}

	for i := range list.Items {
		it := &list.Items[i]
		if cat != nil {
			if idx, ok := cat.Lookup(it.FoodID); ok {
				it.Cost = round2(it.Grams * cat.Food(idx).Price)
				list.TotalCost += it.Cost
			}
		}
		list.TotalGrams += it.Grams
	}
	list.TotalCost = round2(list.TotalCost)

	sort.SliceStable(list.Items, func(a, b int) bool {
		if list.Items[a].Grams != list.Items[b].Grams {
			return list.Items[a].Grams > list.Items[b].Grams
		}
		return list.Items[a].Name < list.Items[b].Name
	})
	return list
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
