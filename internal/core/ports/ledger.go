package ports

import (
	"context"
	"time"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/order"
)

// StatusEvent is a committed order state change observed on the ledger's
// event stream. Delivery is at least once; consumers deduplicate on TxID.
type StatusEvent struct {
	OrderID   string
	NewStatus order.Status
	TxID      string
	At        time.Time
}

// Ledger is a connection to the order contract scoped to one acting
// organization. Submit runs a state-changing transaction through consensus
// and returns its transaction ID; Evaluate runs a read-only query against
// world state. Close releases the connection and must be called exactly once.
//
// Transport failures come back as LedgerUnavailableError and may be retried;
// every other error is a business rejection and must not be.
type Ledger interface {
	Submit(ctx context.Context, fn string, args ...string) (txID string, err error)
	Evaluate(ctx context.Context, fn string, args ...string) ([]byte, error)
	Close() error
}

// LedgerConnector opens Ledger connections scoped to an actor. Callers own
// the returned connection and release it with Close.
type LedgerConnector interface {
	Connect(ctx context.Context, actor identity.Actor) (Ledger, error)
}

// LedgerEventSource streams status events from the order contract. The
// returned channel closes when ctx is cancelled or the stream drops;
// consumers reconnect by calling Events again.
type LedgerEventSource interface {
	Events(ctx context.Context) (<-chan StatusEvent, error)
}
