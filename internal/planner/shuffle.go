package planner

import (
	"math/rand"
	"sort"
	"strings"

	"menu-optimizer/internal/catalog"
)

const maxShuffleAttempts = 100

// ShuffleDays reorders days so that no two adjacent days are identical or
// share a non-vegetable food, returning target days. When no such order
// turns up within a bounded number of shuffles it tops up with random days
// that differ from the day before, accepting a repeat only when nothing else
// is left.
func ShuffleDays(days []DayPlan, target int, isVegetable func(foodID string) bool, rng *rand.Rand) []DayPlan {
	if len(days) == 0 || target <= 0 {
		return nil
	}

	pool := append([]DayPlan(nil), days...)
	var kept []DayPlan
	for attempt := 0; attempt < maxShuffleAttempts; attempt++ {
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

		kept = kept[:0]
		var prevFoods map[string]bool
		prevSig := ""
		for _, d := range pool {
			sig := daySignature(d)
			if len(kept) > 0 && sig == prevSig {
				continue
			}
			foods := nonVegetableFoods(d, isVegetable)
			if overlaps(foods, prevFoods) {
				continue
			}
			kept = append(kept, d)
			prevFoods, prevSig = foods, sig
			if len(kept) == target {
				return kept
			}
		}
	}

	if len(kept) == 0 {
		if target > len(pool) {
			target = len(pool)
		}
		return pool[:target]
	}

	prevSig := daySignature(kept[len(kept)-1])
	for len(kept) < target {
		var pick DayPlan
		found := false
		for try := 0; try < maxShuffleAttempts; try++ {
			candidate := pool[rng.Intn(len(pool))]
			if daySignature(candidate) != prevSig {
				pick, found = candidate, true
				break
			}
		}
		if !found {
			pick = pool[rng.Intn(len(pool))]
		}
		kept = append(kept, pick.clone())
		prevSig = daySignature(pick)
	}
	return kept
}

func daySignature(d DayPlan) string {
	var sb strings.Builder
	for _, slot := range catalog.Slots {
		ids := make([]string, 0, len(d.Meals[slot]))
		for _, p := range d.Meals[slot] {
			ids = append(ids, p.FoodID)
		}
		sort.Strings(ids)
		sb.WriteString(slot.String())
		sb.WriteByte(':')
		sb.WriteString(strings.Join(ids, ","))
		sb.WriteByte(';')
	}
	return sb.String()
}

func nonVegetableFoods(d DayPlan, isVegetable func(string) bool) map[string]bool {
	foods := make(map[string]bool)
	for _, slot := range catalog.Slots {
		for _, p := range d.Meals[slot] {
			if !isVegetable(p.FoodID) {
				foods[p.FoodID] = true
			}
		}
	}
	return foods
}

func overlaps(a, b map[string]bool) bool {
	for id := range a {
		if b[id] {
			return true
		}
	}
	return false
}
