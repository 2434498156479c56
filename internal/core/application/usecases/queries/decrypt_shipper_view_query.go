package queries

import (
	"errors"

	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/pkg/errs"
	"orderchain/internal/pkg/guard"
)

var (
	ErrDecryptShipperViewQueryIsNotConstructed = errors.New(
		"DecryptShipperViewQuery must be created via NewDecryptShipperViewQuery constructor",
	)
)

// DecryptShipperViewQuery opens the shipper-scoped tier of a sub-order for
// the carrier company assigned to it.
type DecryptShipperViewQuery struct { //nolint:recvcheck //using for validation
	orderID     order.ID
	shipperCode string

	guard guard.ConstructorGuard
}

// NewDecryptShipperViewQuery creates a shipper tier decryption query.
func NewDecryptShipperViewQuery(orderID order.ID, shipperCode string) (DecryptShipperViewQuery, error) {
	q := DecryptShipperViewQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		q.setOrderID(orderID),
		q.setShipperCode(shipperCode),
	); err != nil {
		return DecryptShipperViewQuery{}, err
	}

	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q DecryptShipperViewQuery) Validate() error {
	return q.guard.Validate(ErrDecryptShipperViewQueryIsNotConstructed)
}

// OrderID returns the target sub-order's identifier.
func (q DecryptShipperViewQuery) OrderID() order.ID {
	return q.orderID
}

// ShipperCode returns the requesting carrier company.
func (q DecryptShipperViewQuery) ShipperCode() string {
	return q.shipperCode
}

func (q *DecryptShipperViewQuery) setOrderID(orderID order.ID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	q.orderID = orderID
	return nil
}

func (q *DecryptShipperViewQuery) setShipperCode(shipperCode string) error {
	if shipperCode == "" {
		return errs.NewValueIsRequiredError("shipperCode")
	}

	q.shipperCode = shipperCode
	return nil
}
