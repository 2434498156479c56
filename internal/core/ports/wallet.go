package ports

import (
	"context"

	"orderchain/internal/core/domain/model/identity"
)

// WalletEnroller registers a participant with the ledger network's identity
// provider and returns the wallet credential ID. Approval calls it inside
// the same transaction that stores the keypair, so a failed enrollment
// leaves no half-approved actor behind.
type WalletEnroller interface {
	Enroll(ctx context.Context, companyCode string, org identity.Org) (walletID string, err error)
}
