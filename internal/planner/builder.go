package planner

import (
	"fmt"
	"math"

	"menu-optimizer/internal/catalog"
	"menu-optimizer/internal/milp"
)

const (
	// MaxQty is the largest portion of one food in one slot, in grams.
	MaxQty = 500.0

	selectionEpsilon = 0.001
)

// Minimum grams of a food when it fills a structural role.
var roleMinimum = map[catalog.Category]float64{
	catalog.Carb:      30,
	catalog.Protein:   50,
	catalog.Fruit:     50,
	catalog.Vegetable: 30,
}

// slotRoles returns the roles a slot must fill, in build order.
func slotRoles(slot catalog.Slot) []catalog.Category {
	if slot.IsMain() {
		return []catalog.Category{catalog.Carb, catalog.Protein, catalog.Vegetable}
	}
	return []catalog.Category{catalog.Fruit}
}

// BuildInput is everything one day's model depends on.
type BuildInput struct {
	Catalog *catalog.Catalog
	Allowed catalog.AllowedFoods
	// Exclude holds food ids removed from every slot for this day.
	Exclude map[string]bool
	Targets Targets
	Policy  Policy
	// Run keeps variable and constraint names unique across builds.
	Run int
}

// DayModel is a single-day MILP plus handles to its variables.
type DayModel struct {
	Model *milp.Model

	cat       *catalog.Catalog
	run       int
	qty       [][catalog.NumSlots]milp.Var
	eligible  [][catalog.NumSlots]bool
	role      [][catalog.NumSlots]milp.Var
	hasRole   [][catalog.NumSlots]bool
	selection [][catalog.NumSlots]milp.Var
	selected  [][catalog.NumSlots]bool
	// capacity is the largest portion the day's bounds allow, used as the
	// quantity upper bound and as big-M in every indicator link.
	capacity [][catalog.NumSlots]float64
}

// BuildDayModel constructs the cost-minimizing model of one day.
func BuildDayModel(in BuildInput) *DayModel {
	cat := in.Catalog
	n := cat.Len()
	m := milp.NewModel(fmt.Sprintf("menu_day_%d", in.Run))
	dm := &DayModel{
		Model:     m,
		cat:       cat,
		run:       in.Run,
		qty:       make([][catalog.NumSlots]milp.Var, n),
		eligible:  make([][catalog.NumSlots]bool, n),
		role:      make([][catalog.NumSlots]milp.Var, n),
		hasRole:   make([][catalog.NumSlots]bool, n),
		selection: make([][catalog.NumSlots]milp.Var, n),
		selected:  make([][catalog.NumSlots]bool, n),
		capacity:  make([][catalog.NumSlots]float64, n),
	}
	tighten := nonNegative(cat)

	objective := make([]milp.Term, 0, n*catalog.NumSlots)
	for i := 0; i < n; i++ {
		food := cat.Food(i)
		for _, slot := range catalog.Slots {
			allowed := in.Allowed.Allows(slot, i)
			ok := allowed && !in.Exclude[food.ID]
			upper := 0.0
			if ok {
				upper = MaxQty
				if tighten {
					upper = portionCap(food, in.Targets, in.Policy.SlotShares[slot])
				}
			}
			v := m.AddVar(dm.name("x", food.ID, slot), 0, upper, milp.Continuous)
			dm.qty[i][slot] = v
			dm.eligible[i][slot] = ok
			dm.capacity[i][slot] = upper
			objective = append(objective, milp.Term{Var: v, Coef: food.Price})

			if !allowed {
				m.AddConstraint(dm.name("exclude_food", food.ID, slot), []milp.Term{{Var: v, Coef: 1}}, milp.Equal, 0)
			}
		}
	}
	m.SetObjective(objective)

	dm.addMacroBounds(in.Targets)
	dm.addSlotShares(in.Targets, in.Policy)
	dm.addRoles()
	dm.addBreakfastDinnerExclusion()
	return dm
}

// nonNegative reports whether every nutrient value of the catalog is
// non-negative, which makes each daily maximum a bound on single portions.
func nonNegative(cat *catalog.Catalog) bool {
	for i := 0; i < cat.Len(); i++ {
		f := cat.Food(i)
		if f.Protein < 0 || f.Calories < 0 || f.Carbs < 0 || f.Fat < 0 {
			return false
		}
	}
	return true
}

// portionCap is the largest portion of food that fits in a slot on its own.
func portionCap(food catalog.FoodItem, t Targets, share SlotShare) float64 {
	c := MaxQty
	limit := func(perGram, most float64) {
		if perGram > 0 {
			c = math.Min(c, most/perGram)
		}
	}
	limit(food.Calories, share.Max*t.MaxCalories)
	limit(food.Protein, t.MaxProtein)
	limit(food.Carbs, t.MaxCarbs)
	limit(food.Fat, t.MaxFat)
	return math.Max(c, 0)
}

func (dm *DayModel) name(prefix, foodID string, slot catalog.Slot) string {
	return fmt.Sprintf("%s_%s_%s_%d", prefix, foodID, slot, dm.run)
}

// sum builds sum(value(food) * qty) over the given slots.
func (dm *DayModel) sum(value func(catalog.FoodItem) float64, slots ...catalog.Slot) []milp.Term {
	var terms []milp.Term
	for i := 0; i < dm.cat.Len(); i++ {
		coef := value(dm.cat.Food(i))
		if coef == 0 {
			continue
		}
		for _, slot := range slots {
			if dm.eligible[i][slot] {
				terms = append(terms, milp.Term{Var: dm.qty[i][slot], Coef: coef})
			}
		}
	}
	return terms
}

func (dm *DayModel) addMacroBounds(t Targets) {
	m := dm.Model
	all := catalog.Slots[:]
	protein := dm.sum(func(f catalog.FoodItem) float64 { return f.Protein }, all...)
	calories := dm.sum(func(f catalog.FoodItem) float64 { return f.Calories }, all...)
	carbs := dm.sum(func(f catalog.FoodItem) float64 { return f.Carbs }, all...)
	fat := dm.sum(func(f catalog.FoodItem) float64 { return f.Fat }, all...)

	suffix := fmt.Sprintf("_%d", dm.run)
	m.AddConstraint("min_protein"+suffix, protein, milp.GreaterEqual, t.MinProtein)
	m.AddConstraint("max_protein"+suffix, protein, milp.LessEqual, t.MaxProtein)
	m.AddConstraint("min_calories"+suffix, calories, milp.GreaterEqual, t.MinCalories)
	m.AddConstraint("max_calories"+suffix, calories, milp.LessEqual, t.MaxCalories)
	m.AddConstraint("max_carbs"+suffix, carbs, milp.LessEqual, t.MaxCarbs)
	m.AddConstraint("min_fat"+suffix, fat, milp.GreaterEqual, t.MinFat)
	m.AddConstraint("max_fat"+suffix, fat, milp.LessEqual, t.MaxFat)
}

func (dm *DayModel) addSlotShares(t Targets, p Policy) {
	for _, slot := range catalog.Slots {
		share := p.SlotShares[slot]
		calories := dm.sum(func(f catalog.FoodItem) float64 { return f.Calories }, slot)
		dm.Model.AddConstraint(fmt.Sprintf("min_calories_%s_%d", slot, dm.run), calories, milp.GreaterEqual, share.Min*t.MinCalories)
		dm.Model.AddConstraint(fmt.Sprintf("max_calories_%s_%d", slot, dm.run), calories, milp.LessEqual, share.Max*t.MaxCalories)
	}
}

// addRoles creates role indicators with their quantity links and the
// per-slot structure rows.
func (dm *DayModel) addRoles() {
	m := dm.Model
	for _, slot := range catalog.Slots {
		for _, role := range slotRoles(slot) {
			var indicators []milp.Term
			for _, i := range dm.cat.Members(role) {
				if !dm.eligible[i][slot] {
					continue
				}
				id := dm.cat.Food(i).ID
				y := m.AddVar(dm.name("y_"+role.String(), id, slot), 0, 1, milp.Binary)
				x := dm.qty[i][slot]
				m.AddConstraint(dm.name("min_"+role.String(), id, slot),
					[]milp.Term{{Var: x, Coef: 1}, {Var: y, Coef: -roleMinimum[role]}}, milp.GreaterEqual, 0)
				m.AddConstraint(dm.name("max_"+role.String(), id, slot),
					[]milp.Term{{Var: x, Coef: 1}, {Var: y, Coef: -dm.capacity[i][slot]}}, milp.LessEqual, 0)
				dm.role[i][slot] = y
				dm.hasRole[i][slot] = true
				indicators = append(indicators, milp.Term{Var: y, Coef: 1})
			}

			name := fmt.Sprintf("%s_%s_%d", role, slot, dm.run)
			switch role {
			case catalog.Carb, catalog.Protein:
				m.AddConstraint("one_"+name, indicators, milp.Equal, 1)
			default:
				m.AddConstraint("some_"+name, indicators, milp.GreaterEqual, 1)
			}
		}
	}
}

// addBreakfastDinnerExclusion keeps a food from being served at both
// breakfast and dinner of the same day.
func (dm *DayModel) addBreakfastDinnerExclusion() {
	m := dm.Model
	for i := 0; i < dm.cat.Len(); i++ {
		if !dm.eligible[i][catalog.Breakfast] || !dm.eligible[i][catalog.Dinner] {
			continue
		}
		id := dm.cat.Food(i).ID
		mb, md := dm.capacity[i][catalog.Breakfast], dm.capacity[i][catalog.Dinner]
		z := m.AddVar(fmt.Sprintf("z_bd_%s_%d", id, dm.run), 0, 1, milp.Binary)
		m.AddConstraint(fmt.Sprintf("bd_breakfast_%s_%d", id, dm.run),
			[]milp.Term{{Var: dm.qty[i][catalog.Breakfast], Coef: 1}, {Var: z, Coef: mb}}, milp.LessEqual, mb)
		m.AddConstraint(fmt.Sprintf("bd_dinner_%s_%d", id, dm.run),
			[]milp.Term{{Var: dm.qty[i][catalog.Dinner], Coef: 1}, {Var: z, Coef: -md}}, milp.LessEqual, 0)
	}
}

// AddSelectionIndicators links a binary "is served" indicator to every
// eligible (food, slot) quantity. A role indicator already is one: it is 1
// exactly when the portion is positive, so it is reused.
func (dm *DayModel) AddSelectionIndicators() {
	m := dm.Model
	for i := 0; i < dm.cat.Len(); i++ {
		id := dm.cat.Food(i).ID
		for _, slot := range catalog.Slots {
			if !dm.eligible[i][slot] {
				continue
			}
			if dm.hasRole[i][slot] {
				dm.selection[i][slot] = dm.role[i][slot]
				dm.selected[i][slot] = true
				continue
			}
			s := m.AddVar(dm.name("s", id, slot), 0, 1, milp.Binary)
			x := dm.qty[i][slot]
			m.AddConstraint(dm.name("sel_max", id, slot),
				[]milp.Term{{Var: x, Coef: 1}, {Var: s, Coef: -dm.capacity[i][slot]}}, milp.LessEqual, 0)
			m.AddConstraint(dm.name("sel_min", id, slot),
				[]milp.Term{{Var: x, Coef: 1}, {Var: s, Coef: -selectionEpsilon}}, milp.GreaterEqual, 0)
			dm.selection[i][slot] = s
			dm.selected[i][slot] = true
		}
	}
}

// AddDuplicateGuard forbids serving exactly foods in slot again. It reports
// false when the guard is already implied because one of the foods cannot be
// served today.
func (dm *DayModel) AddDuplicateGuard(slot catalog.Slot, foods []int, priorDay int) bool {
	if len(foods) == 0 {
		return false
	}
	terms := make([]milp.Term, 0, len(foods))
	for _, i := range foods {
		if !dm.selected[i][slot] {
			return false
		}
		terms = append(terms, milp.Term{Var: dm.selection[i][slot], Coef: 1})
	}
	dm.Model.AddConstraint(fmt.Sprintf("no_repeat_%s_day%d_%d", slot, priorDay, dm.run),
		terms, milp.LessEqual, float64(len(foods)-1))
	return true
}
