package planner

// Targets are the nutrition bounds of a generation run. MinCarbs is carried
// for display only; carbs are bounded from above.
type Targets struct {
	NumDays     int     `json:"num_days" yaml:"num_days"`
	MinProtein  float64 `json:"min_protein" yaml:"min_protein"`
	MaxProtein  float64 `json:"max_protein" yaml:"max_protein"`
	MinCalories float64 `json:"min_calories" yaml:"min_calories"`
	MaxCalories float64 `json:"max_calories" yaml:"max_calories"`
	MinCarbs    float64 `json:"min_carbs" yaml:"min_carbs"`
	MaxCarbs    float64 `json:"max_carbs" yaml:"max_carbs"`
	MinFat      float64 `json:"min_fat" yaml:"min_fat"`
	MaxFat      float64 `json:"max_fat" yaml:"max_fat"`
}

// DefaultTargets returns the targets used when a request leaves them out.
func DefaultTargets() Targets {
	return Targets{
		NumDays:     7,
		MinProtein:  56,
		MaxProtein:  100,
		MinCalories: 1500,
		MaxCalories: 2700,
		MinCarbs:    150,
		MaxCarbs:    300,
		MinFat:      50,
		MaxFat:      90,
	}
}

// Validate checks the day count and bound signs. Contradictory min/max pairs
// are left to the solver, which reports them as infeasible days.
func (t Targets) Validate() error {
	if t.NumDays < 0 {
		return &ValidationError{Field: "num_days", Reason: "must not be negative"}
	}
	pairs := []struct {
		name     string
		min, max float64
	}{
		{"protein", t.MinProtein, t.MaxProtein},
		{"calories", t.MinCalories, t.MaxCalories},
		{"carbs", t.MinCarbs, t.MaxCarbs},
		{"fat", t.MinFat, t.MaxFat},
	}
	for _, p := range pairs {
		if p.min < 0 || p.max < 0 {
			return &ValidationError{Field: p.name, Reason: "bounds must not be negative"}
		}
	}
	return nil
}
