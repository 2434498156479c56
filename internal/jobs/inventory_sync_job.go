package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"orderchain/internal/core/application/usecases/commands"
)

// InventorySyncJob drains the mirror sync outbox on a schedule, applying
// pending stock adjustments collected from the ledger event stream.
type InventorySyncJob struct {
	handler   commands.ApplyInventorySyncCommandHandler
	schedule  string
	batchSize int
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewInventorySyncJob creates a scheduled outbox drainer processing at most
// batchSize tasks per run.
func NewInventorySyncJob(
	handler commands.ApplyInventorySyncCommandHandler,
	schedule string,
	batchSize int,
	logger *slog.Logger,
) *InventorySyncJob {
	return &InventorySyncJob{
		handler:   handler,
		schedule:  schedule,
		batchSize: batchSize,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "inventory_sync_job"),
	}
}

// Start begins the scheduled outbox drains.
func (j *InventorySyncJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()
		cmd, err := commands.NewApplyInventorySyncCommand(j.batchSize)
		if err != nil {
			j.logger.ErrorContext(ctx, "Sync drain could not be constructed", "error", err)
			return
		}

		applied, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Sync drain failed", "error", err)
			return
		}
		if applied > 0 {
			j.logger.InfoContext(ctx, "Sync drain finished", "applied", applied)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Inventory sync job started",
		"schedule", j.schedule, "batchSize", j.batchSize)
	return nil
}

// Stop stops the inventory sync job.
func (j *InventorySyncJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Inventory sync job stopped")
}
