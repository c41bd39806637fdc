package catalog

import "fmt"

// MissingPriceError reports a food with no resolvable active price.
type MissingPriceError struct {
	FoodID string
	Name   string
	Source string
}

func (e *MissingPriceError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("food %q (%s) has no price for active source %q", e.FoodID, e.Name, e.Source)
	}
	return fmt.Sprintf("food %q (%s) has no price", e.FoodID, e.Name)
}
