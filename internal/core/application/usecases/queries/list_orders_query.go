package queries

import (
	"errors"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/pkg/guard"
)

var (
	ErrListOrdersQueryIsNotConstructed = errors.New(
		"ListOrdersQuery must be created via NewListOrdersQuery constructor",
	)
)

// ListOrdersQuery retrieves summaries of the sub-orders visible to an actor.
type ListOrdersQuery struct { //nolint:recvcheck //using for validation
	actor identity.Actor

	guard guard.ConstructorGuard
}

// NewListOrdersQuery creates a listing query scoped to the actor.
func NewListOrdersQuery(actor identity.Actor) (ListOrdersQuery, error) {
	q := ListOrdersQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := q.setActor(actor); err != nil {
		return ListOrdersQuery{}, err
	}

	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

// Actor returns the identity the listing runs under.
func (q ListOrdersQuery) Actor() identity.Actor {
	return q.actor
}

func (q *ListOrdersQuery) setActor(actor identity.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	q.actor = actor
	return nil
}
