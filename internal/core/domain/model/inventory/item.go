package inventory

import (
	"errors"
	"fmt"

	"orderchain/internal/pkg/errs"
)

// ErrItemIsNotConstructed is returned when an Item was not created through
// NewItem or RestoreItem.
var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem or RestoreItem")

// Level is the on-hand quantity of an item at one stock location.
type Level struct {
	LocationID string
	OnHand     int64
}

// Item is a sellable variant in the storefront mirror together with its
// per-location stock levels and the published flag of its parent product.
// Ledger status events drive it: shipping an order reduces stock, cancelling
// restores it, and the published flag follows total availability.
type Item struct {
	sku         string
	productCode string
	published   bool
	levels      []Level

	isConstructed bool
}

// NewItem creates a published item with the given stock levels.
func NewItem(sku, productCode string, levels []Level) (*Item, error) {
	return newItem(sku, productCode, true, levels)
}

// RestoreItem reconstructs an item from its mirrored rows.
func RestoreItem(sku, productCode string, published bool, levels []Level) (*Item, error) {
	return newItem(sku, productCode, published, levels)
}

func newItem(sku, productCode string, published bool, levels []Level) (*Item, error) {
	if sku == "" {
		return nil, errs.NewValueIsRequiredError("sku")
	}
	if productCode == "" {
		return nil, errs.NewValueIsRequiredError("productCode")
	}
	if len(levels) == 0 {
		return nil, errs.NewValueIsRequiredError("levels")
	}
	for _, l := range levels {
		if l.LocationID == "" {
			return nil, errs.NewValueIsRequiredError("locationID")
		}
		if l.OnHand < 0 {
			return nil, errs.NewValueIsInvalidErrorWithCause("onHand",
				fmt.Errorf("%d is negative", l.OnHand))
		}
	}

	copied := make([]Level, len(levels))
	copy(copied, levels)
	return &Item{
		sku:           sku,
		productCode:   productCode,
		published:     published,
		levels:        copied,
		isConstructed: true,
	}, nil
}

// Validate ensures the Item was created through a constructor.
func (i *Item) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrItemIsNotConstructed
	}
	return nil
}

// SKU returns the variant's stock keeping unit.
func (i *Item) SKU() string { return i.sku }

// ProductCode returns the parent product's code.
func (i *Item) ProductCode() string { return i.productCode }

// Published reports whether the parent product is visible in the storefront.
func (i *Item) Published() bool { return i.published }

// Levels returns a copy of the per-location stock levels.
func (i *Item) Levels() []Level {
	out := make([]Level, len(i.levels))
	copy(out, i.levels)
	return out
}

// TotalOnHand returns the stock summed across every location.
func (i *Item) TotalOnHand() int64 {
	var total int64
	for _, l := range i.levels {
		total += l.OnHand
	}
	return total
}

// Reduce decrements the shipped quantity at every location, never below
// zero, and unpublishes the product when total stock reaches zero.
func (i *Item) Reduce(qty int64) error {
	if qty <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", qty))
	}
	for n := range i.levels {
		i.levels[n].OnHand -= qty
		if i.levels[n].OnHand < 0 {
			i.levels[n].OnHand = 0
		}
	}
	if i.TotalOnHand() == 0 {
		i.published = false
	}
	return nil
}

// Restore adds the cancelled quantity back at every location and republishes
// the product while stock is positive.
func (i *Item) Restore(qty int64) error {
	if qty <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", qty))
	}
	for n := range i.levels {
		i.levels[n].OnHand += qty
	}
	if i.TotalOnHand() > 0 {
		i.published = true
	}
	return nil
}
