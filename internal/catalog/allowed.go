package catalog

// AllowedFoods maps each slot to the set of catalog indexes eligible in it.
// A value is owned by a single generation run.
type AllowedFoods [NumSlots]map[int]struct{}

// NewAllowedFoods returns an empty map.
func NewAllowedFoods() AllowedFoods {
	var a AllowedFoods
	for i := range a {
		a[i] = make(map[int]struct{})
	}
	return a
}

// Allows reports whether food is eligible in slot.
func (a AllowedFoods) Allows(slot Slot, food int) bool {
	_, ok := a[slot][food]
	return ok
}

// Remove drops food from slot.
func (a AllowedFoods) Remove(slot Slot, food int) {
	delete(a[slot], food)
}

// Count returns the number of foods eligible in slot.
func (a AllowedFoods) Count(slot Slot) int {
	return len(a[slot])
}

// Clone returns a deep copy.
func (a AllowedFoods) Clone() AllowedFoods {
	out := NewAllowedFoods()
	for slot, set := range a {
		for food := range set {
			out[slot][food] = struct{}{}
		}
	}
	return out
}
