package commands

import (
	"errors"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/pkg/errs"
	"orderchain/internal/pkg/guard"
)

var (
	ErrTransitionOrderCommandIsNotConstructed = errors.New(
		"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
	)
)

// TransitionOrderCommand represents a request to apply one lifecycle action
// to a sub-order on the ledger, on behalf of the given actor.
type TransitionOrderCommand struct { //nolint:recvcheck //using for validation
	action  order.Action
	orderID order.ID
	actor   identity.Actor

	guard guard.ConstructorGuard
}

// NewTransitionOrderCommand creates a command for one lifecycle action.
// The action must be a defined post-creation transition.
func NewTransitionOrderCommand(action order.Action, orderID order.ID, actor identity.Actor) (TransitionOrderCommand, error) {
	cmd := TransitionOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setAction(action),
		cmd.setOrderID(orderID),
		cmd.setActor(actor),
	); err != nil {
		return TransitionOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

// Action returns the lifecycle action to apply.
func (c TransitionOrderCommand) Action() order.Action {
	return c.action
}

// OrderID returns the target sub-order's identifier.
func (c TransitionOrderCommand) OrderID() order.ID {
	return c.orderID
}

// Actor returns the identity the transition runs under.
func (c TransitionOrderCommand) Actor() identity.Actor {
	return c.actor
}

func (c *TransitionOrderCommand) setAction(action order.Action) error {
	for _, known := range order.TransitionActions() {
		if action == known {
			c.action = action
			return nil
		}
	}
	return errs.NewValueIsInvalidError("action is not a lifecycle transition: " + string(action))
}

func (c *TransitionOrderCommand) setOrderID(orderID order.ID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *TransitionOrderCommand) setActor(actor identity.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	c.actor = actor
	return nil
}
