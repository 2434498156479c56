// Package memledger hosts the order contract on an in-process ledger. World
// state lives in memory, transactions are serialized under one lock, and
// status events are fanned out to subscribers. Tests and single-node local
// runs use it in place of the Fabric network; the contract semantics are the
// same because the same OrderContract executes in both.
package memledger

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/core/domain/services"
	"orderchain/internal/core/ports"
	"orderchain/internal/pkg/errs"
)

// Ledger is the shared in-process network state. It implements
// ports.LedgerConnector and ports.LedgerEventSource; per-actor sessions
// obtained through Connect implement ports.Ledger.
type Ledger struct {
	contract services.OrderContract
	now      func() time.Time

	mu      sync.Mutex
	records map[string]order.Record
	subs    map[int]chan ports.StatusEvent
	nextSub int
}

// New creates an empty ledger hosting the given contract.
func New(contract services.OrderContract) *Ledger {
	return NewWithClock(contract, time.Now)
}

// NewWithClock creates a ledger whose transaction timestamps come from now.
// Tests use it to drive time-dependent guards.
func NewWithClock(contract services.OrderContract, now func() time.Time) *Ledger {
	return &Ledger{
		contract: contract,
		now:      now,
		records:  make(map[string]order.Record),
		subs:     make(map[int]chan ports.StatusEvent),
	}
}

// Connect returns a session scoped to the actor.
func (l *Ledger) Connect(_ context.Context, actor identity.Actor) (ports.Ledger, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	return &session{ledger: l, actor: actor}, nil
}

// Events subscribes to status events. The channel closes when ctx is done.
func (l *Ledger) Events(ctx context.Context) (<-chan ports.StatusEvent, error) {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	ch := make(chan ports.StatusEvent, 256)
	l.subs[id] = ch
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		delete(l.subs, id)
		close(ch)
		l.mu.Unlock()
	}()
	return ch, nil
}

func (l *Ledger) emit(change *services.StatusChange) {
	if change == nil {
		return
	}
	event := ports.StatusEvent{
		OrderID:   change.OrderID,
		NewStatus: change.NewStatus,
		TxID:      change.TxID,
		At:        change.At,
	}
	for _, ch := range l.subs {
		select {
		case ch <- event:
		default:
			// Subscriber is not draining; it will catch up via the outbox.
		}
	}
}

// worldState adapts the record map to the contract's store interface.
// Records are copied on the way in and out so aggregates never alias the
// committed state.
type worldState struct {
	records map[string]order.Record
}

func (w worldState) Get(orderID string) (order.Record, bool, error) {
	rec, ok := w.records[orderID]
	if !ok {
		return order.Record{}, false, nil
	}
	return copyRecord(rec), true, nil
}

func (w worldState) Put(orderID string, rec order.Record) error {
	w.records[orderID] = copyRecord(rec)
	return nil
}

func (w worldState) List() ([]order.Record, error) {
	out := make([]order.Record, 0, len(w.records))
	for _, rec := range w.records {
		out = append(out, copyRecord(rec))
	}
	return out, nil
}

func copyRecord(rec order.Record) order.Record {
	history := make([]order.HistoryRecord, len(rec.History))
	copy(history, rec.History)
	rec.History = history
	if rec.DeliveryTimestamp != nil {
		ts := *rec.DeliveryTimestamp
		rec.DeliveryTimestamp = &ts
	}
	return rec
}

// session is one actor's connection to the ledger.
type session struct {
	ledger *Ledger
	actor  identity.Actor

	mu     sync.Mutex
	closed bool
}

// Submit runs a state-changing contract function under the ledger lock.
func (s *session) Submit(_ context.Context, fn string, args ...string) (string, error) {
	if err := s.check(); err != nil {
		return "", err
	}

	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	tx := order.Tx{ID: uuid.NewString(), At: s.ledger.now().UTC()}
	ws := worldState{records: s.ledger.records}

	switch order.Action(fn) {
	case order.ActionCreateOrder:
		if len(args) != 1 {
			return "", errs.NewValueIsRequiredError("order record")
		}
		var rec order.Record
		if err := json.Unmarshal([]byte(args[0]), &rec); err != nil {
			return "", errs.NewValueIsInvalidErrorWithCause("order record", err)
		}
		applied, err := s.ledger.contract.Create(ws, s.actor, tx, rec)
		if err != nil {
			return "", err
		}
		if applied {
			s.ledger.emit(&services.StatusChange{
				OrderID:   rec.OrderID,
				NewStatus: order.Created,
				TxID:      tx.ID,
				At:        tx.At,
			})
		}
		return tx.ID, nil

	default:
		if len(args) != 1 {
			return "", errs.NewValueIsRequiredError("orderID")
		}
		change, err := s.ledger.contract.Transition(ws, s.actor, tx, order.Action(fn), args[0])
		if err != nil {
			return "", err
		}
		s.ledger.emit(change)
		return tx.ID, nil
	}
}

// Evaluate runs a read-only contract function.
func (s *session) Evaluate(_ context.Context, fn string, args ...string) ([]byte, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	ws := worldState{records: s.ledger.records}
	switch fn {
	case "GetOrder":
		if len(args) != 1 {
			return nil, errs.NewValueIsRequiredError("orderID")
		}
		rec, err := s.ledger.contract.Get(ws, args[0])
		if err != nil {
			return nil, err
		}
		return json.Marshal(rec)

	case "GetPublicStatus":
		if len(args) != 1 {
			return nil, errs.NewValueIsRequiredError("orderID")
		}
		status, err := s.ledger.contract.GetPublicStatus(ws, args[0])
		if err != nil {
			return nil, err
		}
		return json.Marshal(status)

	case "ListOrdersByOrg":
		summaries, err := s.ledger.contract.ListByOrg(ws, s.actor)
		if err != nil {
			return nil, err
		}
		return json.Marshal(summaries)

	case "ListUnsettled":
		summaries, err := s.ledger.contract.ListUnsettled(ws, s.actor)
		if err != nil {
			return nil, err
		}
		return json.Marshal(summaries)

	default:
		return nil, errs.NewValueIsInvalidError("unknown query: " + fn)
	}
}

// Close releases the session. Further calls fail.
func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *session) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errs.NewLedgerUnavailableError("closed session")
	}
	return nil
}
