package jobs

import (
	"fmt"
	"log/slog"

	"orderchain/internal/core/application/usecases/commands"
)

// Schedules carries the cron expressions and batch sizing for the
// background jobs.
type Schedules struct {
	Settlement    string
	InventorySync string
	SyncBatchSize int
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	settlementJob    *SettlementJob
	inventorySyncJob *InventorySyncJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	settleHandler commands.SettleOrdersCommandHandler,
	syncHandler commands.ApplyInventorySyncCommandHandler,
	schedules Schedules,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		settlementJob:    NewSettlementJob(settleHandler, schedules.Settlement, logger),
		inventorySyncJob: NewInventorySyncJob(syncHandler, schedules.InventorySync, schedules.SyncBatchSize, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.inventorySyncJob.Start(); err != nil {
		return fmt.Errorf("failed to start inventory sync job: %w", err)
	}

	if err := jm.settlementJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.inventorySyncJob.Stop()
		return fmt.Errorf("failed to start settlement job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.settlementJob.Stop()
	jm.inventorySyncJob.Stop()
}
