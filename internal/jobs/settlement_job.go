package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"orderchain/internal/core/application/usecases/commands"
)

// SettlementJob runs the automated settlement scan on a schedule. Each run
// lists unsettled sub-orders on the ledger and releases funds for the ones
// whose settlement delay elapsed.
type SettlementJob struct {
	handler  commands.SettleOrdersCommandHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewSettlementJob creates a scheduled settlement scanner. The schedule is a
// six-field cron expression with a seconds column.
func NewSettlementJob(handler commands.SettleOrdersCommandHandler, schedule string, logger *slog.Logger) *SettlementJob {
	return &SettlementJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "settlement_job"),
	}
}

// Start begins the scheduled settlement scans.
func (j *SettlementJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()
		cmd, err := commands.NewSettleOrdersCommand()
		if err != nil {
			j.logger.ErrorContext(ctx, "Settlement scan could not be constructed", "error", err)
			return
		}

		settled, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Settlement scan failed", "error", err)
			return
		}
		if settled > 0 {
			j.logger.InfoContext(ctx, "Settlement scan finished", "settled", settled)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Settlement job started", "schedule", j.schedule)
	return nil
}

// Stop stops the settlement job.
func (j *SettlementJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Settlement job stopped")
}
