package queries

import (
	"errors"

	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/pkg/guard"
)

var (
	ErrGetPublicStatusQueryIsNotConstructed = errors.New(
		"GetPublicStatusQuery must be created via NewGetPublicStatusQuery constructor",
	)
)

// GetPublicStatusQuery retrieves the anonymous-access tier of a sub-order.
// No caller identity is involved; the response never contains role-scoped
// fields or ciphertext.
type GetPublicStatusQuery struct { //nolint:recvcheck //using for validation
	orderID order.ID

	guard guard.ConstructorGuard
}

// NewGetPublicStatusQuery creates a public status query.
func NewGetPublicStatusQuery(orderID order.ID) (GetPublicStatusQuery, error) {
	q := GetPublicStatusQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := q.setOrderID(orderID); err != nil {
		return GetPublicStatusQuery{}, err
	}

	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q GetPublicStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetPublicStatusQueryIsNotConstructed)
}

// OrderID returns the target sub-order's identifier.
func (q GetPublicStatusQuery) OrderID() order.ID {
	return q.orderID
}

func (q *GetPublicStatusQuery) setOrderID(orderID order.ID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	q.orderID = orderID
	return nil
}
