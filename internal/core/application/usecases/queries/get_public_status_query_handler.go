package queries

import (
	"context"
	"encoding/json"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/core/ports"
)

// GetPublicStatusQueryHandler serves the anonymous status tier. The read
// runs under the platform's connection because anonymous callers hold no
// ledger identity of their own.
type GetPublicStatusQueryHandler struct {
	connector ports.LedgerConnector
	platform  identity.Actor
}

// NewGetPublicStatusQueryHandler creates a handler for public status reads.
func NewGetPublicStatusQueryHandler(connector ports.LedgerConnector, platform identity.Actor) GetPublicStatusQueryHandler {
	return GetPublicStatusQueryHandler{connector: connector, platform: platform}
}

// Handle executes the read and returns the public tier.
func (h GetPublicStatusQueryHandler) Handle(ctx context.Context, query GetPublicStatusQuery) (order.PublicStatus, error) {
	if err := query.Validate(); err != nil {
		return order.PublicStatus{}, err
	}

	conn, err := h.connector.Connect(ctx, h.platform)
	if err != nil {
		return order.PublicStatus{}, err
	}
	defer func() {
		_ = conn.Close()
	}()

	raw, err := conn.Evaluate(ctx, "GetPublicStatus", query.OrderID().String())
	if err != nil {
		return order.PublicStatus{}, err
	}

	var status order.PublicStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return order.PublicStatus{}, err
	}
	return status, nil
}
