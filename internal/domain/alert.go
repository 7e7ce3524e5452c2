package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetState is the persisted classification of a budget's progress. It is
// updated on every recompute pass regardless of whether an alert fires, so the
// next pass always compares against the freshest observation.
type BudgetState string

const (
	BudgetStateNormal   BudgetState = "normal"
	BudgetStateWarning  BudgetState = "warning"
	BudgetStateExceeded BudgetState = "exceeded"
)

type AlertKind string

const (
	AlertKindExceeded  AlertKind = "exceeded"
	AlertKindNearLimit AlertKind = "near_limit"
)

type AlertSeverity string

const (
	AlertSeverityHigh   AlertSeverity = "high"
	AlertSeverityMedium AlertSeverity = "medium"
)

type Alert struct {
	ID         string          `json:"id"`
	Kind       AlertKind       `json:"kind"`
	Severity   AlertSeverity   `json:"severity"`
	BudgetID   string          `json:"budgetId"`
	Category   string          `json:"category"`
	Message    string          `json:"message"`
	Percentage decimal.Decimal `json:"percentage"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// AlertID derives the deterministic id for a (budget, kind) condition. The same
// condition always maps to the same id, so a condition can never produce two
// distinct live alert records and dismissal can be keyed by id alone.
func AlertID(budgetID string, kind AlertKind) string {
	suffix := "exceeded"
	if kind == AlertKindNearLimit {
		suffix = "nearlimit"
	}
	return fmt.Sprintf("alert_%s_%s", budgetID, suffix)
}

// AlertState bundles the three persisted collections of the alert ledger:
// live alerts, dismissed alert ids, and the per-budget classification history.
type AlertState struct {
	ActiveAlerts []*Alert               `json:"activeAlerts"`
	DismissedIDs []string               `json:"dismissedIds"`
	History      map[string]BudgetState `json:"history"`
}

// AlertStateRepository persists the alert ledger across sessions. Each of the
// three collections is stored as an independently-keyed JSON record.
type AlertStateRepository interface {
	Load() (*AlertState, error)
	SaveActiveAlerts(alerts []*Alert) error
	SaveDismissedIDs(ids []string) error
	SaveHistory(history map[string]BudgetState) error
	Reset() error
}
