// Package inventory models the storefront mirror that ledger status events
// keep in sync: sellable items with per-location stock, and mirrored orders
// carrying the idempotence flags that guard repeated stock adjustments.
package inventory
