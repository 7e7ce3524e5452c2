package service

import (
	"sync"
	"time"

	"github.com/ovidb/centavo/centavo-backend/internal/domain"
	"github.com/ovidb/centavo/centavo-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// Schedule causes used by the notification entry points
const (
	CauseTransactionChange = "transaction_change"
	CauseBudgetChange      = "budget_change"
	CauseStartup           = "startup"
)

// TransactionSnapshotter provides a complete, current snapshot of transactions.
type TransactionSnapshotter interface {
	GetAll() ([]*domain.Transaction, error)
}

// BudgetSnapshotter provides a complete, current snapshot of active budgets.
type BudgetSnapshotter interface {
	GetCurrentActive() ([]*domain.Budget, error)
}

// RecomputeCoordinator collapses bursts of upstream changes into a single
// recompute pass. Transactions and budgets notify through independent
// channels; without coordination, naive recompute-on-every-change does
// redundant work and can interleave reads of an inconsistent snapshot pair.
//
// Each pass reads a fresh snapshot at its start and commits history and alerts
// at its end. The compute itself is synchronous, so consumers never observe an
// overview computed against a classification history from different data.
type RecomputeCoordinator struct {
	transactions   TransactionSnapshotter
	budgets        BudgetSnapshotter
	progress       *ProgressService
	tracker        *AlertStateTracker
	alerts         *AlertService
	eventPublisher websocket.EventPublisher
	logger         zerolog.Logger

	debounce time.Duration
	cooldown time.Duration

	mu             sync.Mutex
	timer          *time.Timer
	timerSet       bool
	pendingCause   string
	isRecomputing  bool
	lastCause      string
	lastDone       time.Time
	latestOverview []*domain.BudgetProgress
	stopped        bool
}

// RecomputeCoordinatorConfig holds tuning for the coordinator
type RecomputeCoordinatorConfig struct {
	DebounceInterval time.Duration // How long to wait for a burst to settle
	CauseCooldown    time.Duration // How long a finished cause still coalesces repeats
}

// DefaultRecomputeCoordinatorConfig returns sensible defaults
func DefaultRecomputeCoordinatorConfig() RecomputeCoordinatorConfig {
	return RecomputeCoordinatorConfig{
		DebounceInterval: 300 * time.Millisecond,
		CauseCooldown:    1 * time.Second,
	}
}

// NewRecomputeCoordinator creates a new RecomputeCoordinator
func NewRecomputeCoordinator(
	transactions TransactionSnapshotter,
	budgets BudgetSnapshotter,
	progress *ProgressService,
	tracker *AlertStateTracker,
	alerts *AlertService,
	logger zerolog.Logger,
	config RecomputeCoordinatorConfig,
) *RecomputeCoordinator {
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 300 * time.Millisecond
	}
	if config.CauseCooldown <= 0 {
		config.CauseCooldown = 1 * time.Second
	}

	return &RecomputeCoordinator{
		transactions: transactions,
		budgets:      budgets,
		progress:     progress,
		tracker:      tracker,
		alerts:       alerts,
		logger:       logger.With().Str("component", "recompute_coordinator").Logger(),
		debounce:     config.DebounceInterval,
		cooldown:     config.CauseCooldown,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (c *RecomputeCoordinator) SetEventPublisher(publisher websocket.EventPublisher) {
	c.eventPublisher = publisher
}

// NotifyTransactionsChanged schedules a recompute after a transaction mutation
func (c *RecomputeCoordinator) NotifyTransactionsChanged() {
	c.Schedule(CauseTransactionChange)
}

// NotifyBudgetsChanged schedules a recompute after a budget mutation
func (c *RecomputeCoordinator) NotifyBudgetsChanged() {
	c.Schedule(CauseBudgetChange)
}

// NotifyMutationCompleted schedules a recompute with an explicit cause tag
func (c *RecomputeCoordinator) NotifyMutationCompleted(cause string) {
	c.Schedule(cause)
}

// Schedule requests a recompute. A repeat of the cause already pending inside
// the debounce window is a no-op; so is a repeat of the cause that just
// finished, within the cool-down. Any other cause (re)starts the debounce
// timer, implicitly cancelling a scheduled-but-unfired one.
func (c *RecomputeCoordinator) Schedule(cause string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}

	if c.timerSet {
		if c.pendingCause == cause {
			return
		}
		c.timer.Stop()
	} else if cause == c.lastCause && time.Since(c.lastDone) < c.cooldown {
		return
	}

	c.pendingCause = cause
	c.timerSet = true
	c.timer = time.AfterFunc(c.debounce, c.fire)

	c.logger.Debug().Str("cause", cause).Msg("Recompute scheduled")
}

// fire runs when the debounce timer elapses
func (c *RecomputeCoordinator) fire() {
	c.mu.Lock()
	c.timerSet = false
	cause := c.pendingCause
	if c.stopped {
		c.mu.Unlock()
		return
	}
	if c.isRecomputing {
		// An in-flight pass runs to completion; the next Schedule call
		// after it finishes picks up whatever changed meanwhile.
		c.mu.Unlock()
		c.logger.Debug().Str("cause", cause).Msg("Recompute already in flight, skipping")
		return
	}
	c.isRecomputing = true
	c.mu.Unlock()

	c.recompute(cause)

	c.mu.Lock()
	c.isRecomputing = false
	c.lastCause = cause
	c.lastDone = time.Now()
	c.mu.Unlock()
}

// RecomputeNow runs a pass synchronously, bypassing the debounce timer. Used
// at startup and by support tooling; respects the in-flight guard.
func (c *RecomputeCoordinator) RecomputeNow(cause string) {
	c.mu.Lock()
	if c.stopped || c.isRecomputing {
		c.mu.Unlock()
		return
	}
	c.isRecomputing = true
	c.mu.Unlock()

	c.recompute(cause)

	c.mu.Lock()
	c.isRecomputing = false
	c.lastCause = cause
	c.lastDone = time.Now()
	c.mu.Unlock()
}

// recompute is one full pass: snapshot, compute, evaluate, commit, publish.
func (c *RecomputeCoordinator) recompute(cause string) {
	start := time.Now()

	transactions, err := c.transactions.GetAll()
	if err != nil {
		c.logger.Error().Err(err).Str("cause", cause).Msg("Failed to snapshot transactions")
		return
	}
	budgets, err := c.budgets.GetCurrentActive()
	if err != nil {
		c.logger.Error().Err(err).Str("cause", cause).Msg("Failed to snapshot budgets")
		return
	}

	overview := c.progress.ComputeOverview(budgets, transactions)
	result := c.tracker.Evaluate(overview, c.alerts.History(), time.Now().UTC())
	added := c.alerts.ApplyRecompute(result.NewHistory, result.NewAlerts)

	c.mu.Lock()
	c.latestOverview = overview
	c.mu.Unlock()

	c.publishEvent(websocket.OverviewUpdated(overview))
	for _, alert := range added {
		c.publishEvent(websocket.AlertCreated(alert))
	}

	c.logger.Info().
		Str("cause", cause).
		Int("budgets", len(overview)).
		Int("transactions", len(transactions)).
		Int("emitted", len(result.NewAlerts)).
		Int("new_alerts", len(added)).
		Dur("elapsed", time.Since(start)).
		Msg("Completed recompute pass")
}

// LatestOverview returns the overview committed by the most recent pass.
func (c *RecomputeCoordinator) LatestOverview() []*domain.BudgetProgress {
	c.mu.Lock()
	defer c.mu.Unlock()

	overview := make([]*domain.BudgetProgress, len(c.latestOverview))
	copy(overview, c.latestOverview)
	return overview
}

// IsRecomputing returns whether a pass is currently executing
func (c *RecomputeCoordinator) IsRecomputing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isRecomputing
}

// Stop cancels any pending debounce timer and rejects further schedules.
// An in-flight pass still runs to completion so the alert state stays
// consistent.
func (c *RecomputeCoordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	if c.timerSet {
		c.timer.Stop()
		c.timerSet = false
	}
	c.logger.Info().Msg("Recompute coordinator stopped")
}

func (c *RecomputeCoordinator) publishEvent(event websocket.Event) {
	if c.eventPublisher != nil {
		c.eventPublisher.Publish(event)
	}
}
