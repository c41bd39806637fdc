package catalog

import (
	"fmt"
	"strings"
)

// Category is the structural role a food can play in a meal.
type Category int

const (
	Other Category = iota
	Carb
	Protein
	Fruit
	Vegetable
	Fat
)

var categoryNames = map[Category]string{
	Other:     "other",
	Carb:      "carb",
	Protein:   "protein",
	Fruit:     "fruit",
	Vegetable: "vegetable",
	Fat:       "fat",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// ParseCategory maps a category tag to its Category. An empty tag is Other.
func ParseCategory(tag string) (Category, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return Other, nil
	}
	for c, name := range categoryNames {
		if name == tag {
			return c, nil
		}
	}
	return Other, fmt.Errorf("unknown food category %q", tag)
}
