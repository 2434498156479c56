package queries

import (
	"errors"

	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/pkg/errs"
	"orderchain/internal/pkg/guard"
)

var (
	ErrDecryptSellerViewQueryIsNotConstructed = errors.New(
		"DecryptSellerViewQuery must be created via NewDecryptSellerViewQuery constructor",
	)
)

// DecryptSellerViewQuery opens the seller-scoped tier of a sub-order for the
// seller company that owns it.
type DecryptSellerViewQuery struct { //nolint:recvcheck //using for validation
	orderID    order.ID
	sellerCode string

	guard guard.ConstructorGuard
}

// NewDecryptSellerViewQuery creates a seller tier decryption query.
func NewDecryptSellerViewQuery(orderID order.ID, sellerCode string) (DecryptSellerViewQuery, error) {
	q := DecryptSellerViewQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		q.setOrderID(orderID),
		q.setSellerCode(sellerCode),
	); err != nil {
		return DecryptSellerViewQuery{}, err
	}

	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q DecryptSellerViewQuery) Validate() error {
	return q.guard.Validate(ErrDecryptSellerViewQueryIsNotConstructed)
}

// OrderID returns the target sub-order's identifier.
func (q DecryptSellerViewQuery) OrderID() order.ID {
	return q.orderID
}

// SellerCode returns the requesting seller company.
func (q DecryptSellerViewQuery) SellerCode() string {
	return q.sellerCode
}

func (q *DecryptSellerViewQuery) setOrderID(orderID order.ID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	q.orderID = orderID
	return nil
}

func (q *DecryptSellerViewQuery) setSellerCode(sellerCode string) error {
	if sellerCode == "" {
		return errs.NewValueIsRequiredError("sellerCode")
	}

	q.sellerCode = sellerCode
	return nil
}
