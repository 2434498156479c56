package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/core/domain/model/sync"
)

// ApplyInventorySyncCommandHandler drains the mirror sync outbox. Each task
// runs in its own database transaction so one poisoned event cannot wedge
// the queue: the stock effect commits with the applied verdict or not at
// all, and a failed task's verdict commits separately from the rolled-back
// stock mutations.
//
// Idempotence comes from two layers. The outbox deduplicates on transaction
// ID, and the mirrored order's check-and-set flags stop a redelivered event
// from adjusting stock twice even if it slips through as a separate task.
type ApplyInventorySyncCommandHandler struct {
	uowFactory SyncUoWFactory
	now        func() time.Time
	logger     *slog.Logger
}

// NewApplyInventorySyncCommandHandler creates a handler for outbox drains.
func NewApplyInventorySyncCommandHandler(uowFactory SyncUoWFactory, logger *slog.Logger) ApplyInventorySyncCommandHandler {
	return ApplyInventorySyncCommandHandler{
		uowFactory: uowFactory,
		now:        time.Now,
		logger:     logger.With("component", "inventory_sync"),
	}
}

// Handle drains up to the command's limit of pending tasks and returns how
// many were applied.
func (h *ApplyInventorySyncCommandHandler) Handle(ctx context.Context, cmd ApplyInventorySyncCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	tasks, err := h.pendingTasks(ctx, cmd.Limit())
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, task := range tasks {
		if err := h.applyOne(ctx, task); err != nil {
			h.logger.Error("sync task failed",
				"txID", task.TxID(), "orderID", task.OrderID(),
				"status", task.NewStatus().String(), "error", err)
			continue
		}
		applied++
	}
	return applied, nil
}

func (h *ApplyInventorySyncCommandHandler) pendingTasks(ctx context.Context, limit int) ([]*sync.Task, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	tasks, err := uow.SyncTaskRepository().GetAllPending(ctx, limit)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return tasks, nil
}

// applyOne processes a single task transactionally. The stock effect and
// the applied verdict commit together; a failed adjustment rolls the whole
// transaction back, so no partial decrement ever persists, and the failed
// verdict is then recorded in a fresh transaction. Only infrastructure
// errors propagate without a verdict so the task stays pending for the
// next drain.
func (h *ApplyInventorySyncCommandHandler) applyOne(ctx context.Context, task *sync.Task) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if applyErr := h.adjustStock(ctx, uow, task); applyErr != nil {
		if err := uow.Rollback(ctx); err != nil {
			return err
		}
		if err := h.recordFailure(ctx, task, applyErr); err != nil {
			return err
		}
		return applyErr
	}

	if err := task.MarkApplied(h.now()); err != nil {
		return err
	}
	if err := uow.SyncTaskRepository().Update(ctx, task); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

// recordFailure commits the failed verdict on its own, after the stock
// transaction was rolled back.
func (h *ApplyInventorySyncCommandHandler) recordFailure(ctx context.Context, task *sync.Task, applyErr error) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := task.MarkFailed(applyErr, h.now()); err != nil {
		return err
	}
	if err := uow.SyncTaskRepository().Update(ctx, task); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

func (h *ApplyInventorySyncCommandHandler) adjustStock(ctx context.Context, uow SyncUoW, task *sync.Task) error {
	switch task.NewStatus() {
	case order.Shipped:
		return h.reduce(ctx, uow, task.OrderID())
	case order.Cancelled, order.Returned:
		return h.restore(ctx, uow, task.OrderID())
	default:
		// Other statuses carry no stock effect; the task is applied as-is.
		return nil
	}
}

func (h *ApplyInventorySyncCommandHandler) reduce(ctx context.Context, uow SyncUoW, orderID string) error {
	repo := uow.InventoryRepository()
	mirrorOrder, err := repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !mirrorOrder.MarkInventoryReduced() {
		h.logger.Info("stock already reduced", "orderID", orderID)
		return nil
	}

	for _, line := range mirrorOrder.Lines() {
		item, err := repo.GetItem(ctx, line.SKU)
		if err != nil {
			return fmt.Errorf("line %s: %w", line.SKU, err)
		}
		if err := item.Reduce(line.Quantity); err != nil {
			return fmt.Errorf("line %s: %w", line.SKU, err)
		}
		if err := repo.UpdateItem(ctx, item); err != nil {
			return fmt.Errorf("line %s: %w", line.SKU, err)
		}
		if !item.Published() {
			h.logger.Info("product unpublished, stock exhausted",
				"sku", line.SKU, "product", item.ProductCode())
		}
	}
	return repo.UpdateOrder(ctx, mirrorOrder)
}

func (h *ApplyInventorySyncCommandHandler) restore(ctx context.Context, uow SyncUoW, orderID string) error {
	repo := uow.InventoryRepository()
	mirrorOrder, err := repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !mirrorOrder.MarkInventoryRestored() {
		h.logger.Info("no stock to restore", "orderID", orderID)
		return nil
	}

	for _, line := range mirrorOrder.Lines() {
		item, err := repo.GetItem(ctx, line.SKU)
		if err != nil {
			return fmt.Errorf("line %s: %w", line.SKU, err)
		}
		if err := item.Restore(line.Quantity); err != nil {
			return fmt.Errorf("line %s: %w", line.SKU, err)
		}
		if err := repo.UpdateItem(ctx, item); err != nil {
			return fmt.Errorf("line %s: %w", line.SKU, err)
		}
	}
	return repo.UpdateOrder(ctx, mirrorOrder)
}
