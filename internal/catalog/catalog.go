package catalog

import (
	"fmt"
	"strings"
)

// RawFood is a food record as stored or imported. Nutrient and price values
// are per 100 grams.
type RawFood struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Protein           float64            `json:"protein"`
	Calories          float64            `json:"calories"`
	Carbs             float64            `json:"carbs"`
	Fat               float64            `json:"fat"`
	Category          string             `json:"category"`
	AllowedMeals      []string           `json:"allowed_meals"`
	Price             *float64           `json:"price,omitempty"`
	Prices            map[string]float64 `json:"prices,omitempty"`
	ActivePriceSource string             `json:"active_price_source,omitempty"`
}

// Key returns the identifier used for the food, falling back to its name.
func (r RawFood) Key() string {
	if id := strings.TrimSpace(r.ID); id != "" {
		return id
	}
	return strings.TrimSpace(r.Name)
}

// FoodItem is a normalized food. Nutrient and price values are per gram.
type FoodItem struct {
	ID       string
	Name     string
	Protein  float64
	Calories float64
	Carbs    float64
	Fat      float64
	Price    float64
	Category Category
	Slots    SlotSet
}

// Catalog is an immutable snapshot of foods for one generation run.
type Catalog struct {
	foods      []FoodItem
	index      map[string]int
	byCategory map[Category][]int
	allowed    AllowedFoods
}

// Load normalizes raw records into a Catalog. It fails on the first food
// without a resolvable price, an unknown category or a duplicate identifier.
func Load(records []RawFood) (*Catalog, error) {
	c := &Catalog{
		foods:      make([]FoodItem, 0, len(records)),
		index:      make(map[string]int, len(records)),
		byCategory: make(map[Category][]int),
		allowed:    NewAllowedFoods(),
	}

	for _, r := range records {
		id := r.Key()
		if id == "" {
			return nil, fmt.Errorf("food record without id or name")
		}
		if _, dup := c.index[id]; dup {
			return nil, fmt.Errorf("duplicate food id %q", id)
		}

		category, err := ParseCategory(r.Category)
		if err != nil {
			return nil, fmt.Errorf("food %q: %w", id, err)
		}

		price, ok := ResolvePrice(r)
		if !ok {
			return nil, &MissingPriceError{FoodID: id, Name: r.Name, Source: r.ActivePriceSource}
		}

		item := FoodItem{
			ID:       id,
			Name:     r.Name,
			Protein:  r.Protein / 100,
			Calories: r.Calories / 100,
			Carbs:    r.Carbs / 100,
			Fat:      r.Fat / 100,
			Price:    price / 100,
			Category: category,
			Slots:    ParseSlots(r.AllowedMeals),
		}

		i := len(c.foods)
		c.foods = append(c.foods, item)
		c.index[id] = i
		c.byCategory[category] = append(c.byCategory[category], i)
		for _, slot := range Slots {
			if item.Slots.Has(slot) {
				c.allowed[slot][i] = struct{}{}
			}
		}
	}

	return c, nil
}

// ResolvePrice returns the active price per 100 g of a record: the explicit
// price if set, otherwise the price of the active source. A price of zero is
// a valid price; only an absent or negative one is missing.
func ResolvePrice(r RawFood) (float64, bool) {
	if r.Price != nil {
		if *r.Price < 0 {
			return 0, false
		}
		return *r.Price, true
	}
	if r.ActivePriceSource == "" {
		return 0, false
	}
	p, ok := r.Prices[r.ActivePriceSource]
	if !ok || p < 0 {
		return 0, false
	}
	return p, true
}

// Len returns the number of foods.
func (c *Catalog) Len() int {
	return len(c.foods)
}

// Food returns the food at index i.
func (c *Catalog) Food(i int) FoodItem {
	return c.foods[i]
}

// Foods returns a copy of all foods in load order.
func (c *Catalog) Foods() []FoodItem {
	out := make([]FoodItem, len(c.foods))
	copy(out, c.foods)
	return out
}

// Lookup returns the index of the food with the given id.
func (c *Catalog) Lookup(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// Members returns the indexes of foods in a category, in load order.
func (c *Catalog) Members(category Category) []int {
	return c.byCategory[category]
}

// IsVegetable reports whether the food with the given id is a vegetable.
func (c *Catalog) IsVegetable(id string) bool {
	i, ok := c.index[id]
	return ok && c.foods[i].Category == Vegetable
}

// AllowedFoods returns a fresh copy of the catalog-derived eligibility map.
func (c *Catalog) AllowedFoods() AllowedFoods {
	return c.allowed.Clone()
}
