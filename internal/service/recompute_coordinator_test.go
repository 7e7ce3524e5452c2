package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovidb/centavo/centavo-backend/internal/domain"
	"github.com/ovidb/centavo/centavo-backend/internal/testutil"
)

func setupCoordinator(config RecomputeCoordinatorConfig) (*RecomputeCoordinator, *testutil.MockTransactionRepository, *testutil.MockBudgetRepository, *AlertService) {
	transactionRepo := testutil.NewMockTransactionRepository()
	budgetRepo := testutil.NewMockBudgetRepository()
	alertService := NewAlertService(testutil.NewMockAlertStateRepository(), zerolog.Nop())

	coordinator := NewRecomputeCoordinator(
		transactionRepo,
		budgetRepo,
		NewProgressService(),
		NewAlertStateTracker(),
		alertService,
		zerolog.Nop(),
		config,
	)
	return coordinator, transactionRepo, budgetRepo, alertService
}

func fastConfig() RecomputeCoordinatorConfig {
	return RecomputeCoordinatorConfig{
		DebounceInterval: 30 * time.Millisecond,
		CauseCooldown:    200 * time.Millisecond,
	}
}

func TestRecomputeCoordinator_DefaultConfig(t *testing.T) {
	config := DefaultRecomputeCoordinatorConfig()

	assert.Equal(t, 300*time.Millisecond, config.DebounceInterval)
	assert.Equal(t, 1*time.Second, config.CauseCooldown)
}

func TestRecomputeNow_ComputesOverviewAndAlerts(t *testing.T) {
	coordinator, transactionRepo, budgetRepo, alertService := setupCoordinator(fastConfig())
	defer coordinator.Stop()

	start := time.Now().AddDate(0, 0, -5)
	budgetRepo.AddBudget(monthlyBudget("b1", "food", 100.00, start))
	transactionRepo.AddTransaction(expense("food", 150.00, time.Now().AddDate(0, 0, -1)))

	coordinator.RecomputeNow(CauseStartup)

	overview := coordinator.LatestOverview()
	require.Len(t, overview, 1)
	assert.True(t, overview[0].IsExceeded)

	alerts := alertService.GetActiveAlerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "alert_b1_exceeded", alerts[0].ID)
}

func TestRecomputeNow_PublishesOverviewAndAlertEvents(t *testing.T) {
	coordinator, transactionRepo, budgetRepo, _ := setupCoordinator(fastConfig())
	defer coordinator.Stop()

	publisher := &testutil.MockEventPublisher{}
	coordinator.SetEventPublisher(publisher)

	start := time.Now().AddDate(0, 0, -5)
	budgetRepo.AddBudget(monthlyBudget("b1", "food", 100.00, start))
	transactionRepo.AddTransaction(expense("food", 150.00, time.Now().AddDate(0, 0, -1)))

	coordinator.RecomputeNow(CauseStartup)

	events := publisher.PublishedEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "overview.updated", events[0].Type)
	assert.Equal(t, "alert.created", events[1].Type)
}

func TestSchedule_CoalescesBurstIntoOnePass(t *testing.T) {
	coordinator, transactionRepo, _, _ := setupCoordinator(fastConfig())
	defer coordinator.Stop()

	var snapshots int32
	transactionRepo.GetAllFn = func() ([]*domain.Transaction, error) {
		atomic.AddInt32(&snapshots, 1)
		return nil, nil
	}

	coordinator.NotifyTransactionsChanged()
	coordinator.NotifyTransactionsChanged()
	coordinator.NotifyTransactionsChanged()

	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&snapshots))
}

func TestSchedule_DifferentCauseRestartsTimerStillOnePass(t *testing.T) {
	coordinator, transactionRepo, _, _ := setupCoordinator(fastConfig())
	defer coordinator.Stop()

	var snapshots int32
	transactionRepo.GetAllFn = func() ([]*domain.Transaction, error) {
		atomic.AddInt32(&snapshots, 1)
		return nil, nil
	}

	coordinator.NotifyTransactionsChanged()
	coordinator.NotifyBudgetsChanged()
	coordinator.NotifyTransactionsChanged()

	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&snapshots))
}

func TestSchedule_PassObservesPostBurstSnapshot(t *testing.T) {
	coordinator, transactionRepo, budgetRepo, _ := setupCoordinator(fastConfig())
	defer coordinator.Stop()

	start := time.Now().AddDate(0, 0, -5)
	budgetRepo.AddBudget(monthlyBudget("b1", "food", 100.00, start))

	// Three rapid mutations; the single pass must see all of them.
	transactionRepo.AddTransaction(expense("food", 30.00, time.Now().AddDate(0, 0, -1)))
	coordinator.NotifyTransactionsChanged()
	transactionRepo.AddTransaction(expense("food", 30.00, time.Now().AddDate(0, 0, -2)))
	coordinator.NotifyBudgetsChanged()
	transactionRepo.AddTransaction(expense("food", 30.00, time.Now().AddDate(0, 0, -3)))
	coordinator.NotifyTransactionsChanged()

	time.Sleep(150 * time.Millisecond)

	overview := coordinator.LatestOverview()
	require.Len(t, overview, 1)
	assert.True(t, overview[0].Spent.Equal(decimal.NewFromFloat(90.00)),
		"expected spent 90.00, got %s", overview[0].Spent.String())
}

func TestSchedule_SameCauseWithinCooldownIsCoalesced(t *testing.T) {
	coordinator, transactionRepo, _, _ := setupCoordinator(fastConfig())
	defer coordinator.Stop()

	var snapshots int32
	transactionRepo.GetAllFn = func() ([]*domain.Transaction, error) {
		atomic.AddInt32(&snapshots, 1)
		return nil, nil
	}

	coordinator.NotifyTransactionsChanged()
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&snapshots))

	// Same cause fires again inside the cool-down window: no second pass.
	coordinator.NotifyTransactionsChanged()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&snapshots))
}

func TestSchedule_DifferentCauseAfterCompletionRunsAgain(t *testing.T) {
	coordinator, transactionRepo, _, _ := setupCoordinator(fastConfig())
	defer coordinator.Stop()

	var snapshots int32
	transactionRepo.GetAllFn = func() ([]*domain.Transaction, error) {
		atomic.AddInt32(&snapshots, 1)
		return nil, nil
	}

	coordinator.NotifyTransactionsChanged()
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&snapshots))

	coordinator.NotifyBudgetsChanged()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&snapshots))
}

func TestRecomputeNow_InFlightGuardSkips(t *testing.T) {
	coordinator, transactionRepo, _, _ := setupCoordinator(fastConfig())
	defer coordinator.Stop()

	var snapshots int32
	release := make(chan struct{})
	transactionRepo.GetAllFn = func() ([]*domain.Transaction, error) {
		atomic.AddInt32(&snapshots, 1)
		<-release
		return nil, nil
	}

	done := make(chan struct{})
	go func() {
		coordinator.RecomputeNow(CauseStartup)
		close(done)
	}()

	// Wait for the pass to be mid-flight, then try to start another.
	for i := 0; i < 100 && !coordinator.IsRecomputing(); i++ {
		time.Sleep(time.Millisecond)
	}
	require.True(t, coordinator.IsRecomputing())

	coordinator.RecomputeNow(CauseTransactionChange)
	assert.Equal(t, int32(1), atomic.LoadInt32(&snapshots))

	close(release)
	<-done
	assert.False(t, coordinator.IsRecomputing())
}

func TestSchedule_SnapshotErrorLeavesPreviousOverview(t *testing.T) {
	coordinator, transactionRepo, budgetRepo, _ := setupCoordinator(fastConfig())
	defer coordinator.Stop()

	start := time.Now().AddDate(0, 0, -5)
	budgetRepo.AddBudget(monthlyBudget("b1", "food", 100.00, start))
	coordinator.RecomputeNow(CauseStartup)
	require.Len(t, coordinator.LatestOverview(), 1)

	transactionRepo.GetAllFn = func() ([]*domain.Transaction, error) {
		return nil, assert.AnError
	}
	coordinator.RecomputeNow(CauseTransactionChange)

	// The failed pass must not clobber the last good overview.
	assert.Len(t, coordinator.LatestOverview(), 1)
}

func TestStop_CancelsPendingPass(t *testing.T) {
	coordinator, transactionRepo, _, _ := setupCoordinator(fastConfig())

	var snapshots int32
	transactionRepo.GetAllFn = func() ([]*domain.Transaction, error) {
		atomic.AddInt32(&snapshots, 1)
		return nil, nil
	}

	coordinator.NotifyTransactionsChanged()
	coordinator.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&snapshots))

	// Further schedules after Stop are rejected.
	coordinator.NotifyTransactionsChanged()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&snapshots))
}
