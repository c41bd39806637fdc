package app

import (
	"fmt"

	"menu-optimizer/internal/catalog"
	"menu-optimizer/internal/config"
	"menu-optimizer/internal/planner"
)

// EnginePolicy merges a loaded policy file over the built-in engine policy
// and default targets. A nil policy keeps every default.
func EnginePolicy(p *config.Policy) (planner.Policy, planner.Targets, error) {
	policy := planner.DefaultPolicy()
	targets := planner.DefaultTargets()
	if p == nil {
		return policy, targets, nil
	}

	if len(p.AlwaysRotate) > 0 {
		policy.AlwaysRotate = append([]string(nil), p.AlwaysRotate...)
	}
	for name, share := range p.SlotShares {
		slot, ok := catalog.ParseSlot(name)
		if !ok {
			return policy, targets, fmt.Errorf("policy names unknown meal slot %q", name)
		}
		policy.SlotShares[slot] = planner.SlotShare{Min: share.Min, Max: share.Max}
	}

	if d := p.Targets; d != nil {
		if d.NumDays > 0 {
			targets.NumDays = d.NumDays
		}
		override(&targets.MinProtein, d.MinProtein)
		override(&targets.MaxProtein, d.MaxProtein)
		override(&targets.MinCalories, d.MinCalories)
		override(&targets.MaxCalories, d.MaxCalories)
		override(&targets.MinCarbs, d.MinCarbs)
		override(&targets.MaxCarbs, d.MaxCarbs)
		override(&targets.MinFat, d.MinFat)
		override(&targets.MaxFat, d.MaxFat)
		if err := targets.Validate(); err != nil {
			return policy, targets, fmt.Errorf("policy targets: %w", err)
		}
	}
	return policy, targets, nil
}

func override(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}
