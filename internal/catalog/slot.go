package catalog

import (
	"fmt"
	"strings"
)

// Slot is one of the four fixed meal periods of a day.
type Slot int

const (
	Breakfast Slot = iota
	Lunch
	Dinner
	Snacks
)

// NumSlots is the number of meal slots in a day.
const NumSlots = 4

// Slots lists every meal slot in day order.
var Slots = [NumSlots]Slot{Breakfast, Lunch, Dinner, Snacks}

// MainSlots are the slots that must hold a carb, a protein and a vegetable.
var MainSlots = [3]Slot{Breakfast, Lunch, Dinner}

var slotNames = [NumSlots]string{"breakfast", "lunch", "dinner", "snacks"}

// Both the English and the Hebrew names used by the food records.
var slotAliases = map[string]Slot{
	"breakfast": Breakfast,
	"lunch":     Lunch,
	"dinner":    Dinner,
	"snacks":    Snacks,
	"snack":     Snacks,
	"בוקר":      Breakfast,
	"צהריים":    Lunch,
	"ערב":       Dinner,
	"תוספות":    Snacks,
	"חטיפים":    Snacks,
}

func (s Slot) String() string {
	if s < 0 || int(s) >= NumSlots {
		return fmt.Sprintf("Slot(%d)", int(s))
	}
	return slotNames[s]
}

// IsMain reports whether s is breakfast, lunch or dinner.
func (s Slot) IsMain() bool {
	return s >= Breakfast && s <= Dinner
}

// MarshalText lets slots be used as JSON object keys.
func (s Slot) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= NumSlots {
		return nil, fmt.Errorf("invalid slot %d", int(s))
	}
	return []byte(slotNames[s]), nil
}

// UnmarshalText accepts any name understood by ParseSlot.
func (s *Slot) UnmarshalText(b []byte) error {
	parsed, ok := ParseSlot(string(b))
	if !ok {
		return fmt.Errorf("unknown meal slot %q", string(b))
	}
	*s = parsed
	return nil
}

// ParseSlot normalizes a meal slot name. Matching ignores surrounding
// whitespace and case.
func ParseSlot(name string) (Slot, bool) {
	s, ok := slotAliases[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// SlotSet is a small set of meal slots.
type SlotSet uint8

// Has reports whether slot is in the set.
func (ss SlotSet) Has(slot Slot) bool {
	return ss&(1<<uint(slot)) != 0
}

// With returns the set with slot added.
func (ss SlotSet) With(slot Slot) SlotSet {
	return ss | 1<<uint(slot)
}

// Empty reports whether no slot is in the set.
func (ss SlotSet) Empty() bool {
	return ss == 0
}

// ParseSlots unions every recognized name in names. Unrecognized names are ignored.
func ParseSlots(names []string) SlotSet {
	var ss SlotSet
	for _, n := range names {
		if slot, ok := ParseSlot(n); ok {
			ss = ss.With(slot)
		}
	}
	return ss
}
