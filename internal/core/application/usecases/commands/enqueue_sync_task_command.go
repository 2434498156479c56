package commands

import (
	"errors"
	"time"

	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/pkg/errs"
	"orderchain/internal/pkg/guard"
)

var (
	ErrEnqueueSyncTaskCommandIsNotConstructed = errors.New(
		"EnqueueSyncTaskCommand must be created via NewEnqueueSyncTaskCommand constructor",
	)
)

// EnqueueSyncTaskCommand represents a ledger status event to be written into
// the mirror sync outbox.
type EnqueueSyncTaskCommand struct { //nolint:recvcheck //using for validation
	txID      string
	orderID   string
	newStatus order.Status
	at        time.Time

	guard guard.ConstructorGuard
}

// NewEnqueueSyncTaskCommand creates an enqueue command from an observed
// status event.
func NewEnqueueSyncTaskCommand(txID, orderID string, newStatus order.Status, at time.Time) (EnqueueSyncTaskCommand, error) {
	cmd := EnqueueSyncTaskCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setTxID(txID),
		cmd.setOrderID(orderID),
		cmd.setNewStatus(newStatus),
		cmd.setAt(at),
	); err != nil {
		return EnqueueSyncTaskCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c EnqueueSyncTaskCommand) Validate() error {
	return c.guard.Validate(ErrEnqueueSyncTaskCommandIsNotConstructed)
}

// TxID returns the ledger transaction ID of the event.
func (c EnqueueSyncTaskCommand) TxID() string {
	return c.txID
}

// OrderID returns the sub-order the event belongs to.
func (c EnqueueSyncTaskCommand) OrderID() string {
	return c.orderID
}

// NewStatus returns the status the order transitioned into.
func (c EnqueueSyncTaskCommand) NewStatus() order.Status {
	return c.newStatus
}

// At returns the event's transaction timestamp.
func (c EnqueueSyncTaskCommand) At() time.Time {
	return c.at
}

func (c *EnqueueSyncTaskCommand) setTxID(txID string) error {
	if txID == "" {
		return errs.NewValueIsRequiredError("txID")
	}

	c.txID = txID
	return nil
}

func (c *EnqueueSyncTaskCommand) setOrderID(orderID string) error {
	if orderID == "" {
		return errs.NewValueIsRequiredError("orderID")
	}

	c.orderID = orderID
	return nil
}

func (c *EnqueueSyncTaskCommand) setNewStatus(status order.Status) error {
	if err := status.Validate(); err != nil {
		return err
	}

	c.newStatus = status
	return nil
}

func (c *EnqueueSyncTaskCommand) setAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("at")
	}

	c.at = at
	return nil
}
