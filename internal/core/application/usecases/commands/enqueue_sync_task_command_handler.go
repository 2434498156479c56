package commands

import (
	"context"
	"log/slog"

	"orderchain/internal/core/domain/model/sync"
)

// EnqueueSyncTaskCommandHandler writes observed status events into the
// durable sync outbox. The outbox is keyed by transaction ID, so redelivered
// events collapse into the row that is already there.
type EnqueueSyncTaskCommandHandler struct {
	uowFactory SyncUoWFactory
	logger     *slog.Logger
}

// NewEnqueueSyncTaskCommandHandler creates a handler for event enqueueing.
func NewEnqueueSyncTaskCommandHandler(uowFactory SyncUoWFactory, logger *slog.Logger) EnqueueSyncTaskCommandHandler {
	return EnqueueSyncTaskCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "enqueue_sync_task"),
	}
}

// Handle enqueues the event as a pending task.
func (h *EnqueueSyncTaskCommandHandler) Handle(ctx context.Context, cmd EnqueueSyncTaskCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	task, err := sync.NewTask(cmd.TxID(), cmd.OrderID(), cmd.NewStatus(), cmd.At())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.SyncTaskRepository().Add(ctx, task); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
