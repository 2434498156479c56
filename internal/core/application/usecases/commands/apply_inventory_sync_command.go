package commands

import (
	"errors"

	"orderchain/internal/pkg/errs"
	"orderchain/internal/pkg/guard"
)

var (
	ErrApplyInventorySyncCommandIsNotConstructed = errors.New(
		"ApplyInventorySyncCommand must be created via NewApplyInventorySyncCommand constructor",
	)
)

// ApplyInventorySyncCommand represents one drain of the mirror sync outbox.
type ApplyInventorySyncCommand struct { //nolint:recvcheck //using for validation
	limit int

	guard guard.ConstructorGuard
}

// NewApplyInventorySyncCommand creates a drain command processing at most
// limit pending tasks.
func NewApplyInventorySyncCommand(limit int) (ApplyInventorySyncCommand, error) {
	cmd := ApplyInventorySyncCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setLimit(limit); err != nil {
		return ApplyInventorySyncCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ApplyInventorySyncCommand) Validate() error {
	return c.guard.Validate(ErrApplyInventorySyncCommandIsNotConstructed)
}

// Limit returns the maximum number of tasks processed in one drain.
func (c ApplyInventorySyncCommand) Limit() int {
	return c.limit
}

func (c *ApplyInventorySyncCommand) setLimit(limit int) error {
	if limit <= 0 {
		return errs.NewValueIsInvalidError("limit must be greater than 0")
	}

	c.limit = limit
	return nil
}
