package planner

import (
	"errors"
	"fmt"
	"strings"

	"menu-optimizer/internal/milp"
)

// ErrNoPriceSources is returned when a selection names no price source.
var ErrNoPriceSources = errors.New("at least one price source is required")

// ValidationError reports a rejected request parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InfeasibleDayError reports a day whose model has no solution.
type InfeasibleDayError struct {
	Day    int
	Status milp.Status
}

func (e *InfeasibleDayError) Error() string {
	return fmt.Sprintf("no feasible menu for day %d (solver status: %s)", e.Day, e.Status)
}

// ExhaustedRetriesError reports consecutive infeasible attempts with no
// accepted day to recycle.
type ExhaustedRetriesError struct {
	Day      int
	Failures int
	Last     error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("could not build a menu: day %d failed %d consecutive attempts and no earlier day was accepted", e.Day, e.Failures)
}

func (e *ExhaustedRetriesError) Unwrap() error {
	return e.Last
}

// NoFeasibleSourceError reports that no price source produced a menu.
type NoFeasibleSourceError struct {
	Sources []string
}

func (e *NoFeasibleSourceError) Error() string {
	return fmt.Sprintf("no price source produced a feasible menu (tried: %s)", strings.Join(e.Sources, ", "))
}
