// Package order contains the SubOrder aggregate: the per-seller portion of a
// multi-seller retail order tracked as an independent ledger entity.
//
// The aggregate owns the lifecycle state machine. Transitions are gated on
// the acting organization and the caller's company scope, guarded on the
// current state, and audited: every committed transition appends exactly one
// history entry, and a rejected transition leaves state and history
// untouched. The Record type is the wire form shared with the chaincode.
package order
