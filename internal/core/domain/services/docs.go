// Package services provides domain services that orchestrate business
// operations across multiple domain entities. OrderContract is the order
// lifecycle contract executed against ledger world state; it is shared
// between the in-process ledger used by tests and local runs and the
// semantics deployed on the network.
package services
