// Package ports defines the contracts between the application core and its
// adapters: repositories over the off-ledger store and the ledger client
// itself. They enable dependency inversion and testability.
package ports

import (
	"context"

	"orderchain/internal/core/domain/model/identity"
)

// ActorRepository is the persistence contract for approved participant
// identities. Company codes are unique across the directory.
type ActorRepository interface {
	// Add persists a freshly approved identity.
	// Fails when the company code is already taken.
	Add(ctx context.Context, actor *identity.ActorIdentity) error

	// Get retrieves an identity by its company code.
	// Returns ObjectNotFoundError when no such actor was approved.
	Get(ctx context.Context, companyCode string) (*identity.ActorIdentity, error)

	// Exists reports whether an identity with the company code was approved.
	Exists(ctx context.Context, companyCode string) (bool, error)
}
