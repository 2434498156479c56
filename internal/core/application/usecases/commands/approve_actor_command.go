package commands

import (
	"errors"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/pkg/errs"
	"orderchain/internal/pkg/guard"
)

var (
	ErrApproveActorCommandIsNotConstructed = errors.New(
		"ApproveActorCommand must be created via NewApproveActorCommand constructor",
	)
)

// ApproveActorCommand represents a request to approve a company as a ledger
// participant in an explicitly claimed organization. The role is part of the
// request; nothing is inferred from naming conventions.
type ApproveActorCommand struct { //nolint:recvcheck //using for validation
	companyCode string
	org         identity.Org

	guard guard.ConstructorGuard
}

// NewApproveActorCommand creates an approval command. The organization must
// be one an actor can be approved into.
func NewApproveActorCommand(companyCode string, org identity.Org) (ApproveActorCommand, error) {
	cmd := ApproveActorCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCompanyCode(companyCode),
		cmd.setOrg(org),
	); err != nil {
		return ApproveActorCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ApproveActorCommand) Validate() error {
	return c.guard.Validate(ErrApproveActorCommandIsNotConstructed)
}

// CompanyCode returns the company being approved.
func (c ApproveActorCommand) CompanyCode() string {
	return c.companyCode
}

// Org returns the organization the company claims.
func (c ApproveActorCommand) Org() identity.Org {
	return c.org
}

func (c *ApproveActorCommand) setCompanyCode(companyCode string) error {
	if companyCode == "" {
		return errs.NewValueIsRequiredError("companyCode")
	}

	c.companyCode = companyCode
	return nil
}

func (c *ApproveActorCommand) setOrg(org identity.Org) error {
	for _, approvable := range identity.ApprovableOrgs() {
		if org == approvable {
			c.org = org
			return nil
		}
	}
	return errs.NewValueIsInvalidError("org cannot be approved: " + org.String())
}
