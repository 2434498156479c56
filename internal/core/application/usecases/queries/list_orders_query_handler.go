package queries

import (
	"context"
	"encoding/json"

	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/core/ports"
)

// ListOrdersQueryHandler lists sub-order summaries through the actor's
// scoped ledger connection. The contract applies the visibility rule, so a
// seller's listing never contains another seller's orders.
type ListOrdersQueryHandler struct {
	connector ports.LedgerConnector
}

// NewListOrdersQueryHandler creates a handler for org-scoped listings.
func NewListOrdersQueryHandler(connector ports.LedgerConnector) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{connector: connector}
}

// Handle executes the listing.
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]order.Summary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	conn, err := h.connector.Connect(ctx, query.Actor())
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = conn.Close()
	}()

	raw, err := conn.Evaluate(ctx, "ListOrdersByOrg")
	if err != nil {
		return nil, err
	}

	summaries := make([]order.Summary, 0)
	if err := json.Unmarshal(raw, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}
