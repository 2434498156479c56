package ports

import (
	"context"

	"orderchain/internal/core/domain/model/sync"
)

// SyncTaskRepository is the persistence contract for the mirror sync outbox.
// Tasks are keyed by ledger transaction ID.
type SyncTaskRepository interface {
	// Add enqueues a task. Adding a transaction ID that is already queued is
	// a no-op, which is what makes at-least-once event delivery safe.
	Add(ctx context.Context, task *sync.Task) error

	// GetAllPending retrieves up to limit pending tasks in enqueue order.
	GetAllPending(ctx context.Context, limit int) ([]*sync.Task, error)

	// Update persists a task's processing state.
	Update(ctx context.Context, task *sync.Task) error
}
