package planner

import (
	"math"

	"menu-optimizer/internal/catalog"
)

// NutritionOf recomputes a day's totals from its portions, rounded to one
// decimal. Unknown foods are skipped.
func NutritionOf(cat *catalog.Catalog, day DayPlan) Nutrition {
	var n Nutrition
	for _, slot := range catalog.Slots {
		for _, p := range day.Meals[slot] {
			i, ok := cat.Lookup(p.FoodID)
			if !ok {
				continue
			}
			food := cat.Food(i)
			n.Protein += food.Protein * p.Grams
			n.Calories += food.Calories * p.Grams
			n.Carbs += food.Carbs * p.Grams
			n.Fat += food.Fat * p.Grams
		}
	}
	return Nutrition{
		Protein:  round(n.Protein, 1),
		Calories: round(n.Calories, 1),
		Carbs:    round(n.Carbs, 1),
		Fat:      round(n.Fat, 1),
	}
}

// Format turns accepted days into a successful MenuResult. Recycled days add
// nothing to the total cost. The average daily cost divides by the requested
// day count.
func Format(cat *catalog.Catalog, days []DayPlan, t Targets) MenuResult {
	res := MenuResult{Success: true, Targets: t, Days: make([]DayPlan, 0, len(days))}

	var total float64
	for _, d := range days {
		d = d.clone()
		d.Totals = NutritionOf(cat, d)
		if d.Recycled {
			res.RecycledDays++
		} else {
			total += d.Cost
		}
		d.Cost = round(d.Cost, 2)
		res.Days = append(res.Days, d)
	}

	res.TotalCost = round(total, 2)
	if t.NumDays > 0 {
		res.AvgDailyCost = round(total/float64(t.NumDays), 2)
	}
	return res
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
