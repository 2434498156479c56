package queries

import (
	"context"
	"encoding/json"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/core/ports"
	"orderchain/internal/pkg/errs"
)

// GetOrderQueryHandler fetches a sub-order's full record from the ledger and
// enforces the visibility rule: the platform sees everything, sellers and
// shippers only the orders on their side of the trade.
type GetOrderQueryHandler struct {
	connector ports.LedgerConnector
}

// NewGetOrderQueryHandler creates a handler for full-record reads.
func NewGetOrderQueryHandler(connector ports.LedgerConnector) GetOrderQueryHandler {
	return GetOrderQueryHandler{connector: connector}
}

// Handle executes the read and returns the record.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (order.Record, error) {
	if err := query.Validate(); err != nil {
		return order.Record{}, err
	}

	conn, err := h.connector.Connect(ctx, query.Actor())
	if err != nil {
		return order.Record{}, err
	}
	defer func() {
		_ = conn.Close()
	}()

	raw, err := conn.Evaluate(ctx, "GetOrder", query.OrderID().String())
	if err != nil {
		return order.Record{}, err
	}

	var rec order.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return order.Record{}, err
	}

	if !recordVisibleTo(rec, query.Actor()) {
		return order.Record{}, errs.NewAuthorizationError("GetOrder", query.Actor().String())
	}
	return rec, nil
}

func recordVisibleTo(rec order.Record, actor identity.Actor) bool {
	switch actor.Org() {
	case identity.PlatformOrg:
		return true
	case identity.SellerOrg:
		return rec.SellerOrgID == actor.CompanyCode()
	case identity.ShipperOrg:
		return rec.ShipperOrgID == actor.CompanyCode()
	default:
		return false
	}
}
