package service

import (
	"fmt"
	"time"

	"github.com/ovidb/centavo/centavo-backend/internal/domain"
)

// AlertStateTracker converts continuous progress percentages into discrete
// alert events. Alerts fire only on state transitions, never on steady state,
// so a budget sitting at 120% does not re-alert on every recompute.
type AlertStateTracker struct{}

// NewAlertStateTracker creates a new AlertStateTracker
func NewAlertStateTracker() *AlertStateTracker {
	return &AlertStateTracker{}
}

// EvaluationResult holds the outcome of one evaluation pass.
type EvaluationResult struct {
	// NewHistory is the full classification map after the pass. Every budget
	// in the overview gets an entry, refreshed whether or not an alert fired.
	NewHistory map[string]domain.BudgetState
	// NewAlerts are the alerts emitted by state transitions in this pass,
	// in overview order. Dismissal filtering is the alert store's concern.
	NewAlerts []*domain.Alert
}

// Classify maps a budget's progress to its discrete state.
func (t *AlertStateTracker) Classify(progress *domain.BudgetProgress) domain.BudgetState {
	if progress.IsExceeded {
		return domain.BudgetStateExceeded
	}
	if progress.IsNearLimit {
		return domain.BudgetStateWarning
	}
	return domain.BudgetStateNormal
}

// Evaluate runs the per-budget state machines over a freshly computed overview.
// previous is the persisted classification history from the last pass; a
// missing or unrecognized entry is treated as normal, so a legitimate alert
// still fires on first observation of a bad state.
//
// Transition table:
//
//	normal   -> warning    emit near-limit
//	normal   -> exceeded   emit exceeded
//	warning  -> exceeded   emit exceeded
//	warning  -> warning    no emission (steady state)
//	exceeded -> exceeded   no emission (steady state)
//	exceeded -> warning    no emission (severity decreased)
//	*        -> normal     no emission; state still updated so a future
//	                       re-entry into warning/exceeded emits again
func (t *AlertStateTracker) Evaluate(overview []*domain.BudgetProgress, previous map[string]domain.BudgetState, now time.Time) *EvaluationResult {
	result := &EvaluationResult{
		NewHistory: make(map[string]domain.BudgetState, len(previous)+len(overview)),
	}

	// History keeps one entry per budget ever evaluated, so a budget that
	// temporarily leaves the overview does not re-alert when it returns in
	// the same state.
	for budgetID, state := range previous {
		result.NewHistory[budgetID] = normalizeState(state)
	}

	for _, progress := range overview {
		current := t.Classify(progress)
		prev := normalizeState(previous[progress.BudgetID])
		result.NewHistory[progress.BudgetID] = current

		switch {
		case current == domain.BudgetStateExceeded && prev != domain.BudgetStateExceeded:
			result.NewAlerts = append(result.NewAlerts, buildAlert(progress, domain.AlertKindExceeded, now))
		case current == domain.BudgetStateWarning && prev == domain.BudgetStateNormal:
			result.NewAlerts = append(result.NewAlerts, buildAlert(progress, domain.AlertKindNearLimit, now))
		}
	}

	return result
}

// normalizeState maps a missing or corrupt history entry to normal (fail open).
func normalizeState(state domain.BudgetState) domain.BudgetState {
	switch state {
	case domain.BudgetStateNormal, domain.BudgetStateWarning, domain.BudgetStateExceeded:
		return state
	}
	return domain.BudgetStateNormal
}

func buildAlert(progress *domain.BudgetProgress, kind domain.AlertKind, now time.Time) *domain.Alert {
	var severity domain.AlertSeverity
	var message string

	switch kind {
	case domain.AlertKindExceeded:
		severity = domain.AlertSeverityHigh
		message = fmt.Sprintf("Budget for %s exceeded: spent %s of %s (%s%%)",
			progress.Category, progress.Spent.StringFixed(2), progress.BudgetAmount.StringFixed(2), progress.Percentage.StringFixed(1))
	case domain.AlertKindNearLimit:
		severity = domain.AlertSeverityMedium
		message = fmt.Sprintf("Budget for %s is near its limit: spent %s of %s (%s%%)",
			progress.Category, progress.Spent.StringFixed(2), progress.BudgetAmount.StringFixed(2), progress.Percentage.StringFixed(1))
	}

	return &domain.Alert{
		ID:         domain.AlertID(progress.BudgetID, kind),
		Kind:       kind,
		Severity:   severity,
		BudgetID:   progress.BudgetID,
		Category:   progress.Category,
		Message:    message,
		Percentage: progress.Percentage,
		CreatedAt:  now,
	}
}
