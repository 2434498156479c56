package inventoryrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orderchain/internal/core/domain/model/inventory"
	"orderchain/internal/pkg/errs"
)

// GormInventoryRepository implements InventoryRepository using GORM.
type GormInventoryRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id string, aggregate any)
}

// NewGormInventoryRepository creates a new GORM inventory repository.
func NewGormInventoryRepository(db *gorm.DB, tracker aggregateTracker) *GormInventoryRepository {
	return &GormInventoryRepository{
		db:      db,
		tracker: tracker,
	}
}

// GetItem retrieves an item with all its location levels by SKU.
func (r *GormInventoryRepository) GetItem(ctx context.Context, sku string) (*inventory.Item, error) {
	if sku == "" {
		return nil, errs.NewValueIsRequiredError("sku")
	}

	var dto ItemDTO
	if err := r.db.WithContext(ctx).Preload("Levels").First(&dto, "sku = ?", sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("sku", sku)
		}
		return nil, err
	}

	return itemToDomain(dto)
}

// UpdateItem persists changed stock levels and the published flag.
func (r *GormInventoryRepository) UpdateItem(ctx context.Context, item *inventory.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	dto := itemFromDomain(item)

	// FullSaveAssociations keeps the level rows in step with the aggregate.
	if err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).Save(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(item.SKU(), item)
	return nil
}

// AddOrder persists the mirror row for a freshly split sub-order. Inserting
// an order ID that is already mirrored is a no-op, never an error, so a
// checkout retry collapses the same way the ledger-side create does.
func (r *GormInventoryRepository) AddOrder(ctx context.Context, mirrorOrder *inventory.MirrorOrder) error {
	if err := mirrorOrder.Validate(); err != nil {
		return err
	}

	dto := orderFromDomain(mirrorOrder)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(mirrorOrder.OrderID(), mirrorOrder)
	return nil
}

// GetOrder retrieves a mirrored order with its line items and sync flags.
func (r *GormInventoryRepository) GetOrder(ctx context.Context, orderID string) (*inventory.MirrorOrder, error) {
	if orderID == "" {
		return nil, errs.NewValueIsRequiredError("orderID")
	}

	var dto MirrorOrderDTO
	if err := r.db.WithContext(ctx).Preload("Lines").First(&dto, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("orderID", orderID)
		}
		return nil, err
	}

	return orderToDomain(dto)
}

// UpdateOrder persists the mirrored order's sync flags.
func (r *GormInventoryRepository) UpdateOrder(ctx context.Context, mirrorOrder *inventory.MirrorOrder) error {
	if err := mirrorOrder.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&MirrorOrderDTO{}).
		Where("order_id = ?", mirrorOrder.OrderID()).
		Updates(map[string]any{
			"inventory_reduced":  mirrorOrder.InventoryReduced(),
			"inventory_restored": mirrorOrder.InventoryRestored(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("orderID", mirrorOrder.OrderID())
	}

	r.tracker.TrackAggregate(mirrorOrder.OrderID(), mirrorOrder)
	return nil
}
