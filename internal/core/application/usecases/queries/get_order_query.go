// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Ledger reads go through organization-scoped connections; directory reads
// go straight to the store.
package queries

import (
	"errors"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/pkg/guard"
)

var (
	ErrGetOrderQueryIsNotConstructed = errors.New(
		"GetOrderQuery must be created via NewGetOrderQuery constructor",
	)
)

// GetOrderQuery retrieves the full record of one sub-order on behalf of an
// actor. Full records are visible to the platform and to the seller and
// shipper companies on the order; the encrypted tiers stay opaque until a
// decrypt query is run.
type GetOrderQuery struct { //nolint:recvcheck //using for validation
	orderID order.ID
	actor   identity.Actor

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for one sub-order's full record.
func NewGetOrderQuery(orderID order.ID, actor identity.Actor) (GetOrderQuery, error) {
	q := GetOrderQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		q.setOrderID(orderID),
		q.setActor(actor),
	); err != nil {
		return GetOrderQuery{}, err
	}

	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the target sub-order's identifier.
func (q GetOrderQuery) OrderID() order.ID {
	return q.orderID
}

// Actor returns the identity the read runs under.
func (q GetOrderQuery) Actor() identity.Actor {
	return q.actor
}

func (q *GetOrderQuery) setOrderID(orderID order.ID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	q.orderID = orderID
	return nil
}

func (q *GetOrderQuery) setActor(actor identity.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	q.actor = actor
	return nil
}
