package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/core/ports"
)

// SettleOrdersCommandHandler performs one settlement scan: list every
// unsettled sub-order, keep the payout candidates, and release funds for the
// ones whose settlement delay has elapsed.
//
// Listings omit deliveryTimestamp, so each candidate is re-fetched in full
// before the delay check. A failure on one candidate is logged and the scan
// moves on; nothing here is fatal because Payout is idempotent and the next
// scan picks up whatever this one missed.
type SettleOrdersCommandHandler struct {
	connector       ports.LedgerConnector
	platform        identity.Actor
	settlementDelay time.Duration
	now             func() time.Time
	logger          *slog.Logger
}

// NewSettleOrdersCommandHandler creates a handler for settlement scans.
func NewSettleOrdersCommandHandler(
	connector ports.LedgerConnector,
	platform identity.Actor,
	settlementDelay time.Duration,
	logger *slog.Logger,
) SettleOrdersCommandHandler {
	return NewSettleOrdersCommandHandlerWithClock(connector, platform, settlementDelay, time.Now, logger)
}

// NewSettleOrdersCommandHandlerWithClock creates a handler with an injected
// clock for the settlement delay check.
func NewSettleOrdersCommandHandlerWithClock(
	connector ports.LedgerConnector,
	platform identity.Actor,
	settlementDelay time.Duration,
	now func() time.Time,
	logger *slog.Logger,
) SettleOrdersCommandHandler {
	return SettleOrdersCommandHandler{
		connector:       connector,
		platform:        platform,
		settlementDelay: settlementDelay,
		now:             now,
		logger:          logger.With("component", "settle_orders"),
	}
}

// Handle runs one scan and returns how many sub-orders were settled.
func (h *SettleOrdersCommandHandler) Handle(ctx context.Context, cmd SettleOrdersCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	conn, err := h.connector.Connect(ctx, h.platform)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = conn.Close()
	}()

	raw, err := conn.Evaluate(ctx, "ListUnsettled")
	if err != nil {
		return 0, err
	}
	var summaries []order.Summary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		return 0, err
	}

	settled := 0
	for _, summary := range summaries {
		if !isPayoutCandidate(summary) {
			continue
		}
		ok, err := h.settleOne(ctx, conn, summary.OrderID)
		if err != nil {
			h.logger.Error("settlement failed", "orderID", summary.OrderID, "error", err)
			continue
		}
		if ok {
			settled++
		}
	}
	return settled, nil
}

func (h *SettleOrdersCommandHandler) settleOne(ctx context.Context, conn ports.Ledger, orderID string) (bool, error) {
	raw, err := conn.Evaluate(ctx, "GetOrder", orderID)
	if err != nil {
		return false, err
	}
	var rec order.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return false, err
	}

	if rec.DeliveryTimestamp == nil {
		return false, nil
	}
	if h.now().Before(rec.DeliveryTimestamp.Add(h.settlementDelay)) {
		return false, nil
	}

	txID, err := conn.Submit(ctx, string(order.ActionPayout), orderID)
	if err != nil {
		return false, err
	}
	h.logger.Info("sub-order settled", "orderID", orderID, "txID", txID)
	return true, nil
}

func isPayoutCandidate(summary order.Summary) bool {
	switch order.PaymentMethod(summary.PaymentMethod) {
	case order.Prepaid:
		return summary.Status == order.Delivered.String()
	case order.COD:
		return order.CodStatus(summary.CodStatus) == order.CodRemittedStatus
	default:
		return false
	}
}
