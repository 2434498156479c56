package fabricledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hyperledger/fabric-gateway/pkg/client"

	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/core/ports"
	"orderchain/internal/pkg/errs"
)

// statusChangeEvent is the wire payload the chaincode sets on every committed
// transition.
type statusChangeEvent struct {
	OrderID   string    `json:"orderID"`
	NewStatus string    `json:"newStatus"`
	Timestamp time.Time `json:"timestamp"`
}

func (c *Connector) openEventStream(ctx context.Context, creds OrgCredentials) (<-chan ports.StatusEvent, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, errs.NewLedgerUnavailableErrorWithCause("events", err)
	}

	id, err := newX509Identity(creds)
	if err != nil {
		conn.Close()
		return nil, err
	}
	sign, err := newSigner(creds)
	if err != nil {
		conn.Close()
		return nil, err
	}

	gateway, err := client.Connect(id, client.WithSign(sign), client.WithClientConnection(conn))
	if err != nil {
		conn.Close()
		return nil, errs.NewLedgerUnavailableErrorWithCause("events", err)
	}

	events, err := gateway.GetNetwork(c.cfg.ChannelName).ChaincodeEvents(ctx, c.cfg.ChaincodeName)
	if err != nil {
		gateway.Close()
		conn.Close()
		return nil, errs.NewLedgerUnavailableErrorWithCause("events", err)
	}

	out := make(chan ports.StatusEvent)
	go func() {
		defer close(out)
		defer conn.Close()
		defer gateway.Close()
		for event := range events {
			parsed, ok := c.parseEvent(event)
			if !ok {
				continue
			}
			select {
			case out <- parsed:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (c *Connector) parseEvent(event *client.ChaincodeEvent) (ports.StatusEvent, bool) {
	var payload statusChangeEvent
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		c.logger.Warn("discarding malformed chaincode event",
			"event", event.EventName, "txID", event.TransactionID, "error", err)
		return ports.StatusEvent{}, false
	}
	newStatus, err := order.StatusFromString(payload.NewStatus)
	if err != nil {
		c.logger.Warn("discarding chaincode event with unknown status",
			"event", event.EventName, "txID", event.TransactionID, "status", payload.NewStatus)
		return ports.StatusEvent{}, false
	}
	return ports.StatusEvent{
		OrderID:   payload.OrderID,
		NewStatus: newStatus,
		TxID:      event.TransactionID,
		At:        payload.Timestamp,
	}, true
}
