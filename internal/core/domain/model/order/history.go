package order

import "time"

// HistoryEntry is one line of a sub-order's audit trail. The history is
// append-only and ordered: entries are never mutated, reordered, or removed,
// and every committed transition contributes exactly one entry.
type HistoryEntry struct {
	Action    Action
	ActorOrg  string
	TxID      string
	Timestamp time.Time
}
