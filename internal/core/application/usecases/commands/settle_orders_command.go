package commands

import (
	"errors"

	"orderchain/internal/pkg/guard"
)

var (
	ErrSettleOrdersCommandIsNotConstructed = errors.New(
		"SettleOrdersCommand must be created via NewSettleOrdersCommand constructor",
	)
)

// SettleOrdersCommand represents one scan of the ledger for sub-orders whose
// funds can be released to their sellers.
type SettleOrdersCommand struct {
	guard guard.ConstructorGuard
}

// NewSettleOrdersCommand creates a settlement scan command.
func NewSettleOrdersCommand() (SettleOrdersCommand, error) {
	return SettleOrdersCommand{
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c SettleOrdersCommand) Validate() error {
	return c.guard.Validate(ErrSettleOrdersCommandIsNotConstructed)
}
