// Package inventoryrepo provides data transfer objects and mapping functions
// for the storefront mirror: sellable items with their per-location stock
// levels and the mirrored orders that guard stock adjustments.
package inventoryrepo

import (
	"orderchain/internal/core/domain/model/inventory"
)

// ItemDTO represents the database structure for persisting mirror items.
// Stock levels live in a child table keyed by SKU and location.
type ItemDTO struct {
	SKU         string     `gorm:"type:varchar(64);primaryKey"`
	ProductCode string     `gorm:"type:varchar(64);not null;index"`
	Published   bool       `gorm:"not null"`
	Levels      []LevelDTO `gorm:"foreignKey:SKU;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default naming to use "inventory_items".
func (ItemDTO) TableName() string {
	return "inventory_items"
}

// LevelDTO represents the on-hand quantity of an item at one stock location.
type LevelDTO struct {
	SKU        string `gorm:"type:varchar(64);primaryKey"`
	LocationID string `gorm:"type:varchar(64);primaryKey"`
	OnHand     int64  `gorm:"not null"`
}

// TableName overrides GORM's default naming to use "inventory_levels".
func (LevelDTO) TableName() string {
	return "inventory_levels"
}

// MirrorOrderDTO represents the database structure for mirrored sub-orders.
// The idempotence flags record which stock adjustments already ran.
type MirrorOrderDTO struct {
	OrderID           string          `gorm:"type:varchar(128);primaryKey"`
	SellerCode        string          `gorm:"type:varchar(64);not null;index"`
	InventoryReduced  bool            `gorm:"not null"`
	InventoryRestored bool            `gorm:"not null"`
	Lines             []MirrorLineDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default naming to use "mirror_orders".
func (MirrorOrderDTO) TableName() string {
	return "mirror_orders"
}

// MirrorLineDTO represents one line item of a mirrored sub-order.
type MirrorLineDTO struct {
	OrderID  string `gorm:"type:varchar(128);primaryKey"`
	SKU      string `gorm:"type:varchar(64);primaryKey"`
	Quantity int64  `gorm:"not null"`
}

// TableName overrides GORM's default naming to use "mirror_order_lines".
func (MirrorLineDTO) TableName() string {
	return "mirror_order_lines"
}

func itemFromDomain(item *inventory.Item) ItemDTO {
	levels := make([]LevelDTO, 0, len(item.Levels()))
	for _, level := range item.Levels() {
		levels = append(levels, LevelDTO{
			SKU:        item.SKU(),
			LocationID: level.LocationID,
			OnHand:     level.OnHand,
		})
	}

	return ItemDTO{
		SKU:         item.SKU(),
		ProductCode: item.ProductCode(),
		Published:   item.Published(),
		Levels:      levels,
	}
}

func itemToDomain(dto ItemDTO) (*inventory.Item, error) {
	levels := make([]inventory.Level, 0, len(dto.Levels))
	for _, level := range dto.Levels {
		levels = append(levels, inventory.Level{
			LocationID: level.LocationID,
			OnHand:     level.OnHand,
		})
	}

	return inventory.RestoreItem(dto.SKU, dto.ProductCode, dto.Published, levels)
}

func orderFromDomain(mirrorOrder *inventory.MirrorOrder) MirrorOrderDTO {
	lines := make([]MirrorLineDTO, 0, len(mirrorOrder.Lines()))
	for _, line := range mirrorOrder.Lines() {
		lines = append(lines, MirrorLineDTO{
			OrderID:  mirrorOrder.OrderID(),
			SKU:      line.SKU,
			Quantity: line.Quantity,
		})
	}

	return MirrorOrderDTO{
		OrderID:           mirrorOrder.OrderID(),
		SellerCode:        mirrorOrder.SellerCode(),
		InventoryReduced:  mirrorOrder.InventoryReduced(),
		InventoryRestored: mirrorOrder.InventoryRestored(),
		Lines:             lines,
	}
}

func orderToDomain(dto MirrorOrderDTO) (*inventory.MirrorOrder, error) {
	lines := make([]inventory.LineItem, 0, len(dto.Lines))
	for _, line := range dto.Lines {
		lines = append(lines, inventory.LineItem{
			SKU:      line.SKU,
			Quantity: line.Quantity,
		})
	}

	return inventory.RestoreMirrorOrder(dto.OrderID, dto.SellerCode, lines,
		dto.InventoryReduced, dto.InventoryRestored)
}
