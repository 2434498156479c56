package commands

import (
	"errors"

	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/pkg/errs"
	"orderchain/internal/pkg/guard"
)

var (
	ErrSplitOrderCommandIsNotConstructed = errors.New(
		"SplitOrderCommand must be created via NewSplitOrderCommand constructor",
	)
)

// CartItem is one finalized line of the customer's cart.
type CartItem struct {
	SKU        string
	Name       string
	SellerCode string
	UnitPrice  int64
	Quantity   int64
}

func (i CartItem) validate() error {
	if i.SKU == "" {
		return errs.NewValueIsRequiredError("sku")
	}
	if i.SellerCode == "" {
		return errs.NewValueIsRequiredError("sellerCode")
	}
	if i.UnitPrice < 0 {
		return errs.NewValueIsInvalidError("unitPrice must not be negative")
	}
	if i.Quantity <= 0 {
		return errs.NewValueIsInvalidError("quantity must be greater than 0")
	}
	return nil
}

// SplitOrderCommand represents a finalized checkout to be split into
// per-seller sub-orders on the ledger. Shipping details stay in the command
// as plaintext; the handler encrypts them into role-scoped tiers before
// anything leaves the process.
type SplitOrderCommand struct { //nolint:recvcheck //using for validation
	masterOrderID   string
	paymentMethod   order.PaymentMethod
	shipperCode     string
	customerName    string
	shippingAddress string
	shippingPhone   string
	shippingTotal   int64
	items           []CartItem

	guard guard.ConstructorGuard
}

// NewSplitOrderCommand creates a command to split a checkout among its
// sellers. Validates identifiers, the payment method, shipping charge and
// every cart line.
func NewSplitOrderCommand(
	masterOrderID string,
	paymentMethod order.PaymentMethod,
	shipperCode string,
	customerName, shippingAddress, shippingPhone string,
	shippingTotal int64,
	items []CartItem,
) (SplitOrderCommand, error) {
	cmd := SplitOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setMasterOrderID(masterOrderID),
		cmd.setPaymentMethod(paymentMethod),
		cmd.setShipperCode(shipperCode),
		cmd.setShippingContact(customerName, shippingAddress, shippingPhone),
		cmd.setShippingTotal(shippingTotal),
		cmd.setItems(items),
	); err != nil {
		return SplitOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c SplitOrderCommand) Validate() error {
	return c.guard.Validate(ErrSplitOrderCommandIsNotConstructed)
}

// MasterOrderID returns the checkout's master order identifier.
func (c SplitOrderCommand) MasterOrderID() string {
	return c.masterOrderID
}

// PaymentMethod returns how the checkout was paid for.
func (c SplitOrderCommand) PaymentMethod() order.PaymentMethod {
	return c.paymentMethod
}

// ShipperCode returns the carrier assigned to every sub-order.
func (c SplitOrderCommand) ShipperCode() string {
	return c.shipperCode
}

// CustomerName returns the recipient's name.
func (c SplitOrderCommand) CustomerName() string {
	return c.customerName
}

// ShippingAddress returns the delivery address.
func (c SplitOrderCommand) ShippingAddress() string {
	return c.shippingAddress
}

// ShippingPhone returns the recipient's phone number.
func (c SplitOrderCommand) ShippingPhone() string {
	return c.shippingPhone
}

// ShippingTotal returns the checkout's total shipping charge in minor units.
func (c SplitOrderCommand) ShippingTotal() int64 {
	return c.shippingTotal
}

// Items returns a copy of the finalized cart lines.
func (c SplitOrderCommand) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *SplitOrderCommand) setMasterOrderID(masterOrderID string) error {
	if masterOrderID == "" {
		return errs.NewValueIsRequiredError("masterOrderID")
	}

	c.masterOrderID = masterOrderID
	return nil
}

func (c *SplitOrderCommand) setPaymentMethod(method order.PaymentMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}

	c.paymentMethod = method
	return nil
}

func (c *SplitOrderCommand) setShipperCode(shipperCode string) error {
	if shipperCode == "" {
		return errs.NewValueIsRequiredError("shipperCode")
	}

	c.shipperCode = shipperCode
	return nil
}

func (c *SplitOrderCommand) setShippingContact(name, address, phone string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("customerName")
	}
	if address == "" {
		return errs.NewValueIsRequiredError("shippingAddress")
	}
	if phone == "" {
		return errs.NewValueIsRequiredError("shippingPhone")
	}

	c.customerName = name
	c.shippingAddress = address
	c.shippingPhone = phone
	return nil
}

func (c *SplitOrderCommand) setShippingTotal(total int64) error {
	if total < 0 {
		return errs.NewValueIsInvalidError("shippingTotal must not be negative")
	}

	c.shippingTotal = total
	return nil
}

func (c *SplitOrderCommand) setItems(items []CartItem) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if err := item.validate(); err != nil {
			return err
		}
	}

	c.items = make([]CartItem, len(items))
	copy(c.items, items)
	return nil
}
