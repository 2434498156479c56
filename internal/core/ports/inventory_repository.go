package ports

import (
	"context"

	"orderchain/internal/core/domain/model/inventory"
)

// InventoryRepository is the persistence contract for the storefront mirror:
// sellable items with their stock levels and the mirrored orders whose
// idempotence flags guard stock adjustments.
type InventoryRepository interface {
	// GetItem retrieves an item with all its location levels by SKU.
	// Returns ObjectNotFoundError when the SKU is not mirrored.
	GetItem(ctx context.Context, sku string) (*inventory.Item, error)

	// UpdateItem persists changed stock levels and the published flag.
	UpdateItem(ctx context.Context, item *inventory.Item) error

	// AddOrder persists the mirror row for a freshly split sub-order.
	AddOrder(ctx context.Context, mirrorOrder *inventory.MirrorOrder) error

	// GetOrder retrieves a mirrored order with its line items and sync flags.
	// Returns ObjectNotFoundError when the order is not mirrored.
	GetOrder(ctx context.Context, orderID string) (*inventory.MirrorOrder, error)

	// UpdateOrder persists the mirrored order's sync flags.
	UpdateOrder(ctx context.Context, mirrorOrder *inventory.MirrorOrder) error
}
