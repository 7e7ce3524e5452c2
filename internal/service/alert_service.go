package service

import (
	"sort"
	"sync"

	"github.com/ovidb/centavo/centavo-backend/internal/domain"
	"github.com/rs/zerolog"
)

// AlertService is the alert ledger: live alerts, the dismissed-id set, and the
// per-budget classification history. All three collections are held in memory
// and written through to the repository; a failed write is logged and the
// in-memory state keeps serving the current session (the next successful
// write reconciles).
type AlertService struct {
	repo   domain.AlertStateRepository
	logger zerolog.Logger

	mu        sync.RWMutex
	active    []*domain.Alert
	dismissed map[string]struct{}
	history   map[string]domain.BudgetState
}

// NewAlertService creates a new AlertService
func NewAlertService(repo domain.AlertStateRepository, logger zerolog.Logger) *AlertService {
	return &AlertService{
		repo:      repo,
		logger:    logger.With().Str("component", "alert_service").Logger(),
		dismissed: make(map[string]struct{}),
		history:   make(map[string]domain.BudgetState),
	}
}

// LoadState restores the persisted ledger. A load failure leaves the service
// with empty collections; alerts may be stale for the session but the engine
// keeps running.
func (s *AlertService) LoadState() error {
	state, err := s.repo.Load()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load alert state, starting empty")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = state.ActiveAlerts
	s.dismissed = make(map[string]struct{}, len(state.DismissedIDs))
	for _, id := range state.DismissedIDs {
		s.dismissed[id] = struct{}{}
	}
	s.history = state.History
	if s.history == nil {
		s.history = make(map[string]domain.BudgetState)
	}

	s.logger.Info().
		Int("active_alerts", len(s.active)).
		Int("dismissed", len(s.dismissed)).
		Int("history_entries", len(s.history)).
		Msg("Loaded alert state")
	return nil
}

// GetActiveAlerts returns the live, non-dismissed alerts sorted by severity
// descending (high before medium); ties preserve insertion order.
func (s *AlertService) GetActiveAlerts() []*domain.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alerts := make([]*domain.Alert, len(s.active))
	copy(alerts, s.active)

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity == domain.AlertSeverityHigh && alerts[j].Severity != domain.AlertSeverityHigh
	})

	return alerts
}

// IsDismissed reports whether an alert id is in the dismissed set.
func (s *AlertService) IsDismissed(alertID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.dismissed[alertID]
	return ok
}

// History returns a copy of the per-budget classification history.
func (s *AlertService) History() map[string]domain.BudgetState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make(map[string]domain.BudgetState, len(s.history))
	for budgetID, state := range s.history {
		history[budgetID] = state
	}
	return history
}

// ApplyRecompute commits the outcome of one recompute pass: the live list is
// replaced wholesale (previous alerts minus any now-dismissed, union newly
// emitted minus dismissed) and the classification history is swapped for the
// new map. Returns the alerts that actually entered the live list. Duplicate
// emission of an id already live is a no-op overwrite, never a second record.
func (s *AlertService) ApplyRecompute(history map[string]domain.BudgetState, emitted []*domain.Alert) []*domain.Alert {
	s.mu.Lock()

	// A budget back at normal releases its dismissed ids: the condition has
	// recovered, so a future re-trigger must surface (and be dismissable) again.
	dismissedChanged := false
	for budgetID, state := range history {
		if state != domain.BudgetStateNormal {
			continue
		}
		for _, kind := range []domain.AlertKind{domain.AlertKindExceeded, domain.AlertKindNearLimit} {
			id := domain.AlertID(budgetID, kind)
			if _, ok := s.dismissed[id]; ok {
				delete(s.dismissed, id)
				dismissedChanged = true
			}
		}
	}

	merged := make([]*domain.Alert, 0, len(s.active)+len(emitted))
	index := make(map[string]int, len(s.active))
	for _, alert := range s.active {
		if _, dismissed := s.dismissed[alert.ID]; dismissed {
			continue
		}
		index[alert.ID] = len(merged)
		merged = append(merged, alert)
	}

	added := make([]*domain.Alert, 0, len(emitted))
	for _, alert := range emitted {
		if _, dismissed := s.dismissed[alert.ID]; dismissed {
			continue
		}
		if pos, exists := index[alert.ID]; exists {
			merged[pos] = alert
			continue
		}
		index[alert.ID] = len(merged)
		merged = append(merged, alert)
		added = append(added, alert)
	}

	s.active = merged
	s.history = history
	activeCopy := make([]*domain.Alert, len(merged))
	copy(activeCopy, merged)

	var dismissedIDs []string
	if dismissedChanged {
		dismissedIDs = make([]string, 0, len(s.dismissed))
		for id := range s.dismissed {
			dismissedIDs = append(dismissedIDs, id)
		}
		sort.Strings(dismissedIDs)
	}
	s.mu.Unlock()

	if err := s.repo.SaveActiveAlerts(activeCopy); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist active alerts")
	}
	if err := s.repo.SaveHistory(history); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist classification history")
	}
	if dismissedChanged {
		if err := s.repo.SaveDismissedIDs(dismissedIDs); err != nil {
			s.logger.Error().Err(err).Msg("Failed to persist dismissed ids")
		}
	}

	return added
}

// Dismiss marks an alert as acknowledged: the id joins the dismissed set and
// the alert leaves the live list. The id stays suppressed until the budget's
// classification cycles back through normal and the condition re-triggers.
func (s *AlertService) Dismiss(alertID string) {
	s.mu.Lock()

	s.dismissed[alertID] = struct{}{}

	filtered := s.active[:0]
	for _, alert := range s.active {
		if alert.ID != alertID {
			filtered = append(filtered, alert)
		}
	}
	s.active = filtered

	dismissedIDs := make([]string, 0, len(s.dismissed))
	for id := range s.dismissed {
		dismissedIDs = append(dismissedIDs, id)
	}
	sort.Strings(dismissedIDs)

	activeCopy := make([]*domain.Alert, len(s.active))
	copy(activeCopy, s.active)
	s.mu.Unlock()

	if err := s.repo.SaveDismissedIDs(dismissedIDs); err != nil {
		s.logger.Error().Err(err).Str("alert_id", alertID).Msg("Failed to persist dismissed ids")
	}
	if err := s.repo.SaveActiveAlerts(activeCopy); err != nil {
		s.logger.Error().Err(err).Str("alert_id", alertID).Msg("Failed to persist active alerts")
	}

	s.logger.Info().Str("alert_id", alertID).Msg("Alert dismissed")
}

// Reset clears all three collections. Support/testing only; normal application
// flow never calls this.
func (s *AlertService) Reset() error {
	s.mu.Lock()
	s.active = nil
	s.dismissed = make(map[string]struct{})
	s.history = make(map[string]domain.BudgetState)
	s.mu.Unlock()

	if err := s.repo.Reset(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to reset persisted alert state")
		return err
	}
	return nil
}
