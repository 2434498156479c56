package services

import (
	"fmt"
	"time"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/pkg/errs"
)

// WorldState is the key-value store the contract runs against. Ledger
// adapters provide it; keys are sub-order IDs in wire form.
type WorldState interface {
	// Get loads a record by order ID. The bool reports existence.
	Get(orderID string) (order.Record, bool, error)

	// Put writes a record under its order ID.
	Put(orderID string, record order.Record) error

	// List returns every order record in undefined order.
	List() ([]order.Record, error)
}

// StatusChange describes a committed transition for event emission.
type StatusChange struct {
	OrderID   string
	NewStatus order.Status
	TxID      string
	At        time.Time
}

// OrderContract executes the order lifecycle against world state. It is the
// single place transition semantics live: both the in-process ledger and the
// contract tests run it, and the Fabric chaincode implements the same
// functions with the same wire records.
//
// Every committed transition appends exactly one history entry (that happens
// inside the aggregate) and reports exactly one StatusChange. A rejected
// transition leaves world state untouched and reports nothing.
type OrderContract struct {
	returnWindow    time.Duration
	settlementDelay time.Duration
}

// NewOrderContract creates the contract with its timing policy. Both windows
// must be positive; they are deployment configuration, not constants.
func NewOrderContract(returnWindow, settlementDelay time.Duration) (OrderContract, error) {
	if returnWindow <= 0 {
		return OrderContract{}, errs.NewValueIsRequiredError("returnWindow")
	}
	if settlementDelay < 0 {
		return OrderContract{}, errs.NewValueIsInvalidError("settlementDelay must not be negative")
	}
	return OrderContract{returnWindow: returnWindow, settlementDelay: settlementDelay}, nil
}

// Create writes a new sub-order in CREATED status. Only the platform may
// create orders. Re-creating an existing order ID is a success no-op, which
// makes split retries idempotent; the bool reports whether a write happened.
func (c OrderContract) Create(ws WorldState, actor identity.Actor, tx order.Tx, rec order.Record) (bool, error) {
	if actor.Org() != identity.PlatformOrg {
		return false, errs.NewAuthorizationError(string(order.ActionCreateOrder), actor.String())
	}

	id, err := order.IDFromString(rec.OrderID)
	if err != nil {
		return false, err
	}

	if _, exists, err := ws.Get(id.String()); err != nil {
		return false, err
	} else if exists {
		return false, nil
	}

	o, err := order.NewSubOrder(
		id,
		rec.SellerOrgID,
		rec.ShipperOrgID,
		order.PaymentMethod(rec.PaymentMethod),
		order.Amounts{
			Untaxed:  rec.AmountUntaxed,
			Shipping: rec.ShippingTotal,
			Total:    rec.AmountTotal,
			Cod:      rec.CodAmount,
		},
		rec.PublicData,
		rec.SellerCipher,
		rec.ShipperCipher,
		tx,
	)
	if err != nil {
		return false, err
	}

	if err := ws.Put(id.String(), o.ToRecord()); err != nil {
		return false, err
	}
	return true, nil
}

// Transition applies a named lifecycle action to an order. On success the
// updated record is persisted and the resulting StatusChange returned; a nil
// change with a nil error means the action was an idempotent no-op.
func (c OrderContract) Transition(ws WorldState, actor identity.Actor, tx order.Tx,
	action order.Action, orderID string) (*StatusChange, error) {
	o, err := c.load(ws, orderID)
	if err != nil {
		return nil, err
	}

	applied := true
	switch action {
	case order.ActionConfirmPayment:
		err = o.ConfirmPayment(actor, tx)
	case order.ActionShipOrder:
		err = o.Ship(actor, tx)
	case order.ActionConfirmDelivery:
		err = o.ConfirmDelivery(actor, tx)
	case order.ActionConfirmCODDelivery:
		err = o.ConfirmCODDelivery(actor, tx)
	case order.ActionRemitCOD:
		err = o.RemitCOD(actor, tx)
	case order.ActionCancelOrder:
		err = o.Cancel(actor, tx)
	case order.ActionRequestReturn:
		err = o.RequestReturn(tx, c.returnWindow)
	case order.ActionShipReturn:
		err = o.ShipReturn(actor, tx)
	case order.ActionConfirmReturnReceived:
		err = o.ConfirmReturnReceived(actor, tx)
	case order.ActionPayout:
		applied, err = o.Payout(actor, tx, c.settlementDelay)
	default:
		return nil, errs.NewValueIsInvalidErrorWithCause("action",
			fmt.Errorf("%q is not a lifecycle action", string(action)))
	}
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, nil
	}

	if err := ws.Put(o.ID().String(), o.ToRecord()); err != nil {
		return nil, err
	}
	return &StatusChange{
		OrderID:   o.ID().String(),
		NewStatus: o.Status(),
		TxID:      tx.ID,
		At:        tx.At,
	}, nil
}

// Get returns the full record of an order. Full records are role-gated at
// the API layer; the contract itself only resolves existence.
func (c OrderContract) Get(ws WorldState, orderID string) (order.Record, error) {
	o, err := c.load(ws, orderID)
	if err != nil {
		return order.Record{}, err
	}
	return o.ToRecord(), nil
}

// GetPublicStatus returns the anonymous-access tier of an order.
func (c OrderContract) GetPublicStatus(ws WorldState, orderID string) (order.PublicStatus, error) {
	o, err := c.load(ws, orderID)
	if err != nil {
		return order.PublicStatus{}, err
	}
	return o.ToPublicStatus(), nil
}

// ListByOrg returns summaries of the orders visible to the actor: sellers
// and shippers see the orders on their side of the trade, the platform sees
// everything.
func (c OrderContract) ListByOrg(ws WorldState, actor identity.Actor) ([]order.Summary, error) {
	records, err := ws.List()
	if err != nil {
		return nil, err
	}

	var out []order.Summary
	for _, rec := range records {
		o, err := order.FromRecord(rec)
		if err != nil {
			return nil, err
		}

		visible := false
		switch actor.Org() {
		case identity.PlatformOrg:
			visible = true
		case identity.SellerOrg:
			visible = o.SellerOrgID() == actor.CompanyCode()
		case identity.ShipperOrg:
			visible = o.ShipperOrgID() == actor.CompanyCode()
		}
		if visible {
			out = append(out, o.ToSummary())
		}
	}
	return out, nil
}

// ListUnsettled returns summaries of every order not yet in SETTLED status.
// The settlement scanner feeds on this; only the platform may call it.
func (c OrderContract) ListUnsettled(ws WorldState, actor identity.Actor) ([]order.Summary, error) {
	if actor.Org() != identity.PlatformOrg {
		return nil, errs.NewAuthorizationError("ListUnsettled", actor.String())
	}

	records, err := ws.List()
	if err != nil {
		return nil, err
	}

	var out []order.Summary
	for _, rec := range records {
		o, err := order.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		if o.Status() != order.Settled {
			out = append(out, o.ToSummary())
		}
	}
	return out, nil
}

func (c OrderContract) load(ws WorldState, orderID string) (*order.SubOrder, error) {
	rec, exists, err := ws.Get(orderID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.NewObjectNotFoundError("orderID", orderID)
	}
	return order.FromRecord(rec)
}
