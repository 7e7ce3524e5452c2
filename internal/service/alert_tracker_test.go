package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovidb/centavo/centavo-backend/internal/domain"
)

func progressEntry(budgetID string, status domain.BudgetStatus, percentage float64) *domain.BudgetProgress {
	return &domain.BudgetProgress{
		BudgetID:     budgetID,
		Category:     "food",
		BudgetAmount: decimal.NewFromInt(100),
		Spent:        decimal.NewFromFloat(percentage),
		Percentage:   decimal.NewFromFloat(percentage),
		IsExceeded:   status == domain.BudgetStatusExceeded,
		IsNearLimit:  status == domain.BudgetStatusWarning,
		Status:       status,
	}
}

func TestClassify(t *testing.T) {
	tracker := NewAlertStateTracker()

	assert.Equal(t, domain.BudgetStateNormal, tracker.Classify(progressEntry("b1", domain.BudgetStatusGood, 10)))
	assert.Equal(t, domain.BudgetStateWarning, tracker.Classify(progressEntry("b1", domain.BudgetStatusWarning, 85)))
	assert.Equal(t, domain.BudgetStateExceeded, tracker.Classify(progressEntry("b1", domain.BudgetStatusExceeded, 120)))
}

func TestEvaluate_NormalToWarningEmitsNearLimit(t *testing.T) {
	tracker := NewAlertStateTracker()
	now := time.Now().UTC()

	overview := []*domain.BudgetProgress{progressEntry("b1", domain.BudgetStatusWarning, 85)}
	result := tracker.Evaluate(overview, map[string]domain.BudgetState{"b1": domain.BudgetStateNormal}, now)

	require.Len(t, result.NewAlerts, 1)
	alert := result.NewAlerts[0]
	assert.Equal(t, domain.AlertKindNearLimit, alert.Kind)
	assert.Equal(t, domain.AlertSeverityMedium, alert.Severity)
	assert.Equal(t, "alert_b1_nearlimit", alert.ID)
	assert.Equal(t, domain.BudgetStateWarning, result.NewHistory["b1"])
}

func TestEvaluate_NormalToExceededEmitsExceeded(t *testing.T) {
	tracker := NewAlertStateTracker()
	now := time.Now().UTC()

	overview := []*domain.BudgetProgress{progressEntry("b1", domain.BudgetStatusExceeded, 120)}
	result := tracker.Evaluate(overview, map[string]domain.BudgetState{"b1": domain.BudgetStateNormal}, now)

	require.Len(t, result.NewAlerts, 1)
	alert := result.NewAlerts[0]
	assert.Equal(t, domain.AlertKindExceeded, alert.Kind)
	assert.Equal(t, domain.AlertSeverityHigh, alert.Severity)
	assert.Equal(t, "alert_b1_exceeded", alert.ID)
}

func TestEvaluate_WarningToExceededEmitsExceeded(t *testing.T) {
	tracker := NewAlertStateTracker()
	now := time.Now().UTC()

	overview := []*domain.BudgetProgress{progressEntry("b1", domain.BudgetStatusExceeded, 120)}
	result := tracker.Evaluate(overview, map[string]domain.BudgetState{"b1": domain.BudgetStateWarning}, now)

	require.Len(t, result.NewAlerts, 1)
	assert.Equal(t, domain.AlertKindExceeded, result.NewAlerts[0].Kind)
}

func TestEvaluate_SteadyStatesEmitNothing(t *testing.T) {
	tracker := NewAlertStateTracker()
	now := time.Now().UTC()

	cases := []struct {
		name     string
		previous domain.BudgetState
		status   domain.BudgetStatus
	}{
		{"warning stays warning", domain.BudgetStateWarning, domain.BudgetStatusWarning},
		{"exceeded stays exceeded", domain.BudgetStateExceeded, domain.BudgetStatusExceeded},
		{"normal stays normal", domain.BudgetStateNormal, domain.BudgetStatusGood},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			overview := []*domain.BudgetProgress{progressEntry("b1", tc.status, 50)}
			result := tracker.Evaluate(overview, map[string]domain.BudgetState{"b1": tc.previous}, now)
			assert.Empty(t, result.NewAlerts)
		})
	}
}

func TestEvaluate_ExceededToWarningEmitsNothing(t *testing.T) {
	// Severity went down; near-limit only fires when coming from normal.
	tracker := NewAlertStateTracker()
	now := time.Now().UTC()

	overview := []*domain.BudgetProgress{progressEntry("b1", domain.BudgetStatusWarning, 85)}
	result := tracker.Evaluate(overview, map[string]domain.BudgetState{"b1": domain.BudgetStateExceeded}, now)

	assert.Empty(t, result.NewAlerts)
	assert.Equal(t, domain.BudgetStateWarning, result.NewHistory["b1"])
}

func TestEvaluate_RecoveryToNormalUpdatesHistorySilently(t *testing.T) {
	tracker := NewAlertStateTracker()
	now := time.Now().UTC()

	overview := []*domain.BudgetProgress{progressEntry("b1", domain.BudgetStatusGood, 20)}
	result := tracker.Evaluate(overview, map[string]domain.BudgetState{"b1": domain.BudgetStateExceeded}, now)

	assert.Empty(t, result.NewAlerts)
	assert.Equal(t, domain.BudgetStateNormal, result.NewHistory["b1"])

	// Re-entering exceeded after the recovery emits again.
	overview = []*domain.BudgetProgress{progressEntry("b1", domain.BudgetStatusExceeded, 120)}
	result = tracker.Evaluate(overview, result.NewHistory, now)
	require.Len(t, result.NewAlerts, 1)
	assert.Equal(t, domain.AlertKindExceeded, result.NewAlerts[0].Kind)
}

func TestEvaluate_MissingHistoryTreatedAsNormal(t *testing.T) {
	tracker := NewAlertStateTracker()
	now := time.Now().UTC()

	overview := []*domain.BudgetProgress{progressEntry("new", domain.BudgetStatusExceeded, 110)}
	result := tracker.Evaluate(overview, map[string]domain.BudgetState{}, now)

	require.Len(t, result.NewAlerts, 1)
	assert.Equal(t, domain.AlertKindExceeded, result.NewAlerts[0].Kind)
}

func TestEvaluate_CorruptHistoryTreatedAsNormal(t *testing.T) {
	tracker := NewAlertStateTracker()
	now := time.Now().UTC()

	overview := []*domain.BudgetProgress{progressEntry("b1", domain.BudgetStatusExceeded, 110)}
	result := tracker.Evaluate(overview, map[string]domain.BudgetState{"b1": domain.BudgetState("garbage")}, now)

	// Fail open: the unrecognized entry must not suppress a real alert.
	require.Len(t, result.NewAlerts, 1)
	assert.Equal(t, domain.BudgetStateExceeded, result.NewHistory["b1"])
}

func TestEvaluate_HistoryRetainsAbsentBudgets(t *testing.T) {
	tracker := NewAlertStateTracker()
	now := time.Now().UTC()

	previous := map[string]domain.BudgetState{
		"gone": domain.BudgetStateExceeded,
		"b1":   domain.BudgetStateNormal,
	}
	overview := []*domain.BudgetProgress{progressEntry("b1", domain.BudgetStatusGood, 10)}

	result := tracker.Evaluate(overview, previous, now)

	// A budget missing from this pass keeps its last known state, so it does
	// not re-alert when it comes back unchanged.
	assert.Equal(t, domain.BudgetStateExceeded, result.NewHistory["gone"])
	assert.Equal(t, domain.BudgetStateNormal, result.NewHistory["b1"])
}

func TestEvaluate_AlertMessageIncludesAmounts(t *testing.T) {
	tracker := NewAlertStateTracker()
	now := time.Now().UTC()

	progress := &domain.BudgetProgress{
		BudgetID:     "b1",
		Category:     "groceries",
		BudgetAmount: decimal.NewFromInt(200),
		Spent:        decimal.NewFromInt(250),
		Percentage:   decimal.NewFromInt(125),
		IsExceeded:   true,
		Status:       domain.BudgetStatusExceeded,
	}

	result := tracker.Evaluate([]*domain.BudgetProgress{progress}, nil, now)

	require.Len(t, result.NewAlerts, 1)
	alert := result.NewAlerts[0]
	assert.Contains(t, alert.Message, "groceries")
	assert.Contains(t, alert.Message, "250.00")
	assert.Contains(t, alert.Message, "200.00")
	assert.Equal(t, now, alert.CreatedAt)
}
