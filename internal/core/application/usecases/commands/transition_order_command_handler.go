package commands

import (
	"context"
	"log/slog"

	"orderchain/internal/core/ports"
)

// TransitionOrderCommandHandler submits lifecycle transitions to the ledger
// under the acting organization's scoped connection. The ledger enforces the
// state machine; the handler only carries the call and reports the assigned
// transaction ID.
type TransitionOrderCommandHandler struct {
	connector ports.LedgerConnector
	logger    *slog.Logger
}

// NewTransitionOrderCommandHandler creates a handler for lifecycle transitions.
func NewTransitionOrderCommandHandler(connector ports.LedgerConnector, logger *slog.Logger) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		connector: connector,
		logger:    logger.With("component", "transition_order"),
	}
}

// Handle submits the transition and returns the ledger transaction ID.
func (h *TransitionOrderCommandHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}

	conn, err := h.connector.Connect(ctx, cmd.Actor())
	if err != nil {
		return "", err
	}
	defer func() {
		_ = conn.Close()
	}()

	txID, err := conn.Submit(ctx, string(cmd.Action()), cmd.OrderID().String())
	if err != nil {
		return "", err
	}

	h.logger.Info("transition committed",
		"action", string(cmd.Action()), "orderID", cmd.OrderID().String(), "txID", txID)
	return txID, nil
}
