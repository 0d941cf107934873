package pipeline

import (
	"errors"
	"fmt"
)

// Outcome codes reported by MakePlanWithTolerance, matching the host
// navigation framework's planner result codes.
const (
	OutcomeSuccess  uint32 = 0
	OutcomeFailure  uint32 = 50
	OutcomeCanceled uint32 = 51
)

var (
	// ErrPlanningFailed marks an invocation in which a stage failed.
	ErrPlanningFailed = errors.New("planning failed")

	// ErrCancelled marks an invocation stopped by Cancel or by its context.
	ErrCancelled = errors.New("planning cancelled")

	// ErrNotInitialized is returned when planning before Initialize or after
	// Close.
	ErrNotInitialized = errors.New("pipeline is not initialized")
)

// PlanError tells which stage ended an invocation and why. Plugin is empty
// when the stage's default value decided the outcome.
type PlanError struct {
	Stage     string
	Plugin    string
	Reason    string
	Cancelled bool
}

func (e *PlanError) Error() string {
	if e.Plugin == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s (at '%s')", e.Reason, e.Plugin)
}

// Unwrap maps the error onto ErrCancelled or ErrPlanningFailed.
func (e *PlanError) Unwrap() error {
	if e.Cancelled {
		return ErrCancelled
	}
	return ErrPlanningFailed
}

// Outcome converts the error of an invocation into an outcome code.
func Outcome(err error) uint32 {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrCancelled):
		return OutcomeCanceled
	default:
		return OutcomeFailure
	}
}
