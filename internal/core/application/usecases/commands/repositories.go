// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS
// architecture. All commands follow a consistent pattern: validation,
// transaction management, and persistence or ledger submission.
package commands

import (
	"context"

	"orderchain/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// ActorRepoFactory provides access to the actor directory within a transaction.
	ActorRepoFactory interface {
		ActorRepository() ports.ActorRepository
	}

	// InventoryRepoFactory provides access to the storefront mirror within a transaction.
	InventoryRepoFactory interface {
		InventoryRepository() ports.InventoryRepository
	}

	// SyncTaskRepoFactory provides access to the sync outbox within a transaction.
	SyncTaskRepoFactory interface {
		SyncTaskRepository() ports.SyncTaskRepository
	}

	// ActorUoW manages transactions for actor-directory operations.
	ActorUoW interface {
		TxManager
		ActorRepoFactory
	}

	// ActorUoWFactory creates new actor unit of work instances.
	ActorUoWFactory interface {
		Create() ActorUoW
	}

	// SplitUoW manages transactions for the order splitter, which reads the
	// actor directory for encryption keys and writes mirror order rows.
	SplitUoW interface {
		TxManager
		ActorRepoFactory
		InventoryRepoFactory
	}

	// SplitUoWFactory creates new splitter unit of work instances.
	SplitUoWFactory interface {
		Create() SplitUoW
	}

	// SyncUoW manages transactions for the mirror sync applier: the outbox
	// and the inventory it adjusts change atomically.
	SyncUoW interface {
		TxManager
		InventoryRepoFactory
		SyncTaskRepoFactory
	}

	// SyncUoWFactory creates new sync unit of work instances.
	SyncUoWFactory interface {
		Create() SyncUoW
	}
)
