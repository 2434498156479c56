package commands

import (
	"context"
	"log/slog"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/ports"
	"orderchain/internal/pkg/envelope"
	"orderchain/internal/pkg/errs"
)

// ApproveActorCommandHandler approves a company as a ledger participant.
// The RSA keypair used for role-scoped field encryption and the ledger
// wallet credential are created inside one transaction: an approved actor
// always has both, a failed approval leaves neither.
type ApproveActorCommandHandler struct {
	uowFactory ActorUoWFactory
	enroller   ports.WalletEnroller
	logger     *slog.Logger
}

// NewApproveActorCommandHandler creates a handler for actor approvals.
func NewApproveActorCommandHandler(
	uowFactory ActorUoWFactory,
	enroller ports.WalletEnroller,
	logger *slog.Logger,
) ApproveActorCommandHandler {
	return ApproveActorCommandHandler{
		uowFactory: uowFactory,
		enroller:   enroller,
		logger:     logger.With("component", "approve_actor"),
	}
}

// Handle approves the actor and returns its identity record.
func (h *ApproveActorCommandHandler) Handle(ctx context.Context, cmd ApproveActorCommand) (*identity.ActorIdentity, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	actorRepo := uow.ActorRepository()
	taken, err := actorRepo.Exists(ctx, cmd.CompanyCode())
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errs.NewValueIsInvalidError("companyCode is already approved: " + cmd.CompanyCode())
	}

	publicKeyPEM, privateKeyPEM, err := envelope.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	walletID, err := h.enroller.Enroll(ctx, cmd.CompanyCode(), cmd.Org())
	if err != nil {
		return nil, err
	}

	actor, err := identity.NewActorIdentity(cmd.CompanyCode(), cmd.Org(), publicKeyPEM, privateKeyPEM, walletID)
	if err != nil {
		return nil, err
	}

	if err := actorRepo.Add(ctx, actor); err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Info("actor approved",
		"companyCode", cmd.CompanyCode(), "org", cmd.Org().String(), "walletID", walletID)
	return actor, nil
}
