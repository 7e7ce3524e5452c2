package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ovidb/centavo/centavo-backend/internal/domain"
)

// Keys for the three independently persisted records of the alert ledger
const (
	stateKeyActiveAlerts = "active_alerts"
	stateKeyDismissedIDs = "dismissed_alert_ids"
	stateKeyHistory      = "classification_history"
)

// AlertStateRepository implements domain.AlertStateRepository using PostgreSQL.
// Each collection is one JSONB record in the engine_state table, keyed by name.
type AlertStateRepository struct {
	pool *pgxpool.Pool
}

// NewAlertStateRepository creates a new AlertStateRepository
func NewAlertStateRepository(pool *pgxpool.Pool) *AlertStateRepository {
	return &AlertStateRepository{pool: pool}
}

// Load reads all three collections. Missing records yield empty collections,
// not errors, so a fresh database starts the engine clean.
func (r *AlertStateRepository) Load() (*domain.AlertState, error) {
	state := &domain.AlertState{
		ActiveAlerts: []*domain.Alert{},
		DismissedIDs: []string{},
		History:      map[string]domain.BudgetState{},
	}

	if err := r.loadRecord(stateKeyActiveAlerts, &state.ActiveAlerts); err != nil {
		return nil, err
	}
	if err := r.loadRecord(stateKeyDismissedIDs, &state.DismissedIDs); err != nil {
		return nil, err
	}
	if err := r.loadRecord(stateKeyHistory, &state.History); err != nil {
		return nil, err
	}

	return state, nil
}

// SaveActiveAlerts persists the live alert list
func (r *AlertStateRepository) SaveActiveAlerts(alerts []*domain.Alert) error {
	return r.saveRecord(stateKeyActiveAlerts, alerts)
}

// SaveDismissedIDs persists the dismissed-id set
func (r *AlertStateRepository) SaveDismissedIDs(ids []string) error {
	return r.saveRecord(stateKeyDismissedIDs, ids)
}

// SaveHistory persists the per-budget classification history
func (r *AlertStateRepository) SaveHistory(history map[string]domain.BudgetState) error {
	return r.saveRecord(stateKeyHistory, history)
}

// Reset deletes all three records
func (r *AlertStateRepository) Reset() error {
	ctx := context.Background()

	_, err := r.pool.Exec(ctx, `
		DELETE FROM engine_state WHERE key = ANY($1)`,
		[]string{stateKeyActiveAlerts, stateKeyDismissedIDs, stateKeyHistory})
	return err
}

func (r *AlertStateRepository) loadRecord(key string, dest interface{}) error {
	ctx := context.Background()

	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM engine_state WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

func (r *AlertStateRepository) saveRecord(key string, value interface{}) error {
	ctx := context.Background()

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO engine_state (key, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		key, data)
	return err
}
