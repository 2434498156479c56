package order

import (
	"fmt"
	"strconv"
	"strings"

	"orderchain/internal/pkg/errs"
)

// ErrIDIsNotConstructed indicates an ID was not created through NewID or IDFromString.
var ErrIDIsNotConstructed = errs.NewValueIsRequiredError("ID must be created via NewID or IDFromString")

// ID identifies a sub-order on the ledger. Its string form is
// "{masterOrderID}_{n}" where n is the 1-based index of the seller in the
// stable (sorted) seller ordering of the master order. The index is part of
// the identity so that re-splitting the same cart always produces the same
// sub-order IDs, which is what makes creation retries idempotent.
type ID struct {
	master string
	seq    int
}

// NewID builds a sub-order ID from a master order ID and a 1-based sequence.
func NewID(master string, seq int) (ID, error) {
	if master == "" {
		return ID{}, errs.NewValueIsRequiredError("masterOrderID")
	}
	if seq <= 0 {
		return ID{}, errs.NewValueIsInvalidErrorWithCause("seq",
			fmt.Errorf("%d is not greater than 0", seq))
	}
	return ID{master: master, seq: seq}, nil
}

// IDFromString parses the "{masterOrderID}_{n}" wire form. The master order
// ID may itself contain underscores; the sequence is the last segment.
func IDFromString(s string) (ID, error) {
	idx := strings.LastIndex(s, "_")
	if idx <= 0 || idx == len(s)-1 {
		return ID{}, errs.NewValueIsInvalidErrorWithCause("orderID",
			fmt.Errorf("%q does not match {masterOrderID}_{n}", s))
	}
	seq, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return ID{}, errs.NewValueIsInvalidErrorWithCause("orderID", err)
	}
	return NewID(s[:idx], seq)
}

// Validate ensures the ID was created via a constructor.
func (id ID) Validate() error {
	if id.master == "" || id.seq <= 0 {
		return ErrIDIsNotConstructed
	}
	return nil
}

// Master returns the originating master order ID.
func (id ID) Master() string {
	return id.master
}

// Seq returns the 1-based sub-order sequence within the master order.
func (id ID) Seq() int {
	return id.seq
}

// IsEqual compares two IDs by value.
func (id ID) IsEqual(other ID) bool {
	return id.master == other.master && id.seq == other.seq
}

// String returns the "{masterOrderID}_{n}" wire form.
func (id ID) String() string {
	return id.master + "_" + strconv.Itoa(id.seq)
}
