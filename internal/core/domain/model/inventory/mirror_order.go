package inventory

import (
	"errors"

	"orderchain/internal/pkg/errs"
)

// ErrMirrorOrderIsNotConstructed is returned when a MirrorOrder was not
// created through NewMirrorOrder or RestoreMirrorOrder.
var ErrMirrorOrderIsNotConstructed = errors.New(
	"MirrorOrder must be created via NewMirrorOrder or RestoreMirrorOrder")

// LineItem is one ordered variant and its quantity on a mirrored order.
type LineItem struct {
	SKU      string
	Quantity int64
}

// MirrorOrder is the storefront-side copy of a ledger sub-order: the line
// items needed to adjust stock, plus two check-and-set flags that make the
// adjustments idempotent under redelivered events. Stock for an order is
// reduced at most once and restored at most once, and a restore only happens
// after a reduce.
type MirrorOrder struct {
	orderID    string
	sellerCode string
	lines      []LineItem

	inventoryReduced  bool
	inventoryRestored bool

	isConstructed bool
}

// NewMirrorOrder creates the mirror row for a freshly split sub-order.
func NewMirrorOrder(orderID, sellerCode string, lines []LineItem) (*MirrorOrder, error) {
	return newMirrorOrder(orderID, sellerCode, lines, false, false)
}

// RestoreMirrorOrder reconstructs a mirror order from persistence.
func RestoreMirrorOrder(orderID, sellerCode string, lines []LineItem,
	inventoryReduced, inventoryRestored bool) (*MirrorOrder, error) {
	return newMirrorOrder(orderID, sellerCode, lines, inventoryReduced, inventoryRestored)
}

func newMirrorOrder(orderID, sellerCode string, lines []LineItem,
	reduced, restored bool) (*MirrorOrder, error) {
	if orderID == "" {
		return nil, errs.NewValueIsRequiredError("orderID")
	}
	if sellerCode == "" {
		return nil, errs.NewValueIsRequiredError("sellerCode")
	}
	if len(lines) == 0 {
		return nil, errs.NewValueIsRequiredError("lines")
	}
	for _, l := range lines {
		if l.SKU == "" {
			return nil, errs.NewValueIsRequiredError("sku")
		}
		if l.Quantity <= 0 {
			return nil, errs.NewValueIsInvalidError("quantity must be greater than 0")
		}
	}

	copied := make([]LineItem, len(lines))
	copy(copied, lines)
	return &MirrorOrder{
		orderID:           orderID,
		sellerCode:        sellerCode,
		lines:             copied,
		inventoryReduced:  reduced,
		inventoryRestored: restored,
		isConstructed:     true,
	}, nil
}

// Validate ensures the MirrorOrder was created through a constructor.
func (m *MirrorOrder) Validate() error {
	if m == nil || !m.isConstructed {
		return ErrMirrorOrderIsNotConstructed
	}
	return nil
}

// OrderID returns the ledger sub-order ID this mirror row shadows.
func (m *MirrorOrder) OrderID() string { return m.orderID }

// SellerCode returns the owning seller's company code.
func (m *MirrorOrder) SellerCode() string { return m.sellerCode }

// Lines returns a copy of the order's line items.
func (m *MirrorOrder) Lines() []LineItem {
	out := make([]LineItem, len(m.lines))
	copy(out, m.lines)
	return out
}

// InventoryReduced reports whether stock was already taken for this order.
func (m *MirrorOrder) InventoryReduced() bool { return m.inventoryReduced }

// InventoryRestored reports whether stock was already given back.
func (m *MirrorOrder) InventoryRestored() bool { return m.inventoryRestored }

// MarkInventoryReduced flips the reduced flag. Returns false when the flag
// was already set, telling the caller to skip the stock adjustment.
func (m *MirrorOrder) MarkInventoryReduced() bool {
	if m.inventoryReduced {
		return false
	}
	m.inventoryReduced = true
	return true
}

// MarkInventoryRestored flips the restored flag. Returns false when stock was
// never reduced or was already restored.
func (m *MirrorOrder) MarkInventoryRestored() bool {
	if !m.inventoryReduced || m.inventoryRestored {
		return false
	}
	m.inventoryRestored = true
	return true
}
