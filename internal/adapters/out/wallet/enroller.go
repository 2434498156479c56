// Package wallet issues ledger wallet credentials for approved participants.
package wallet

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"orderchain/internal/core/domain/model/identity"
)

// LocalEnroller registers participants in a process-local wallet registry.
// It stands in for a Fabric CA enrollment flow in deployments that run the
// in-process ledger; the credential IDs it mints follow the same shape the
// CA-backed enroller produces.
type LocalEnroller struct {
	logger *slog.Logger
}

// NewLocalEnroller creates an enroller backed by locally minted credentials.
func NewLocalEnroller(logger *slog.Logger) *LocalEnroller {
	return &LocalEnroller{
		logger: logger.With("component", "wallet_enroller"),
	}
}

// Enroll mints a wallet credential for the participant.
func (e *LocalEnroller) Enroll(_ context.Context, companyCode string, org identity.Org) (string, error) {
	walletID := "wallet-" + companyCode + "-" + uuid.NewString()

	e.logger.Info("participant enrolled",
		"company_code", companyCode,
		"org", org.String(),
		"wallet_id", walletID)

	return walletID, nil
}
