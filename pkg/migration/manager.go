package migration

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/marshallshelly/pebble-orders/pkg/registry"
	"github.com/marshallshelly/pebble-orders/pkg/runtime"
)

// DefaultLockID is the advisory lock key taken by a writer.
const DefaultLockID int64 = 7_314_250_001

// ErrLocked is returned by TryLock callers when another writer holds the lock.
var ErrLocked = errors.New("another run holds the ingest lock")

// Manager owns the schema of the registered tables.
type Manager struct {
	db       *runtime.DB
	registry *registry.Registry
	planner  *Planner
	lockID   int64
	logger   *zap.Logger
}

// NewManager creates a schema manager. A nil logger disables logging.
func NewManager(db *runtime.DB, reg *registry.Registry, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		db:       db,
		registry: reg,
		planner:  NewPlanner(),
		lockID:   DefaultLockID,
		logger:   logger,
	}
}

// WithLockID sets a custom advisory lock ID.
func (m *Manager) WithLockID(lockID int64) *Manager {
	if lockID != 0 {
		m.lockID = lockID
	}
	return m
}

// Plan returns the reset plan for the registered tables.
func (m *Manager) Plan() (ResetPlan, error) {
	tables, err := m.registry.Ordered()
	if err != nil {
		return ResetPlan{}, fmt.Errorf("failed to order tables: %w", err)
	}
	return m.planner.Plan(tables), nil
}

// Reset drops every table and recreates it empty. Each statement commits on its own;
// the first failure aborts the reset with a *runtime.SchemaError.
func (m *Manager) Reset(ctx context.Context) error {
	plan, err := m.Plan()
	if err != nil {
		return err
	}

	for _, stmt := range plan.Statements() {
		m.logger.Debug("executing schema statement", zap.String("statement", stmt))
		if _, err := m.db.Exec(ctx, stmt); err != nil {
			var qe *runtime.QueryError
			if errors.As(err, &qe) {
				err = qe.Err
			}
			return &runtime.SchemaError{Statement: stmt, Err: err}
		}
	}

	m.logger.Info("schema reset",
		zap.Int("dropped", len(plan.Drops)),
		zap.Int("created", len(plan.Creates)),
	)
	return nil
}

// Lock acquires the advisory lock, waiting for any other holder.
func (m *Manager) Lock(ctx context.Context) error {
	if _, err := m.db.Exec(ctx, "SELECT pg_advisory_lock($1)", m.lockID); err != nil {
		return fmt.Errorf("failed to acquire ingest lock: %w", err)
	}
	return nil
}

// TryLock attempts to acquire the advisory lock without blocking.
func (m *Manager) TryLock(ctx context.Context) (bool, error) {
	var acquired bool
	if err := m.db.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", m.lockID).Scan(&acquired); err != nil {
		return false, fmt.Errorf("failed to try ingest lock: %w", err)
	}
	return acquired, nil
}

// Unlock releases the advisory lock.
func (m *Manager) Unlock(ctx context.Context) error {
	var released bool
	if err := m.db.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", m.lockID).Scan(&released); err != nil {
		return fmt.Errorf("failed to release ingest lock: %w", err)
	}
	if !released {
		return fmt.Errorf("lock was not held")
	}
	return nil
}
