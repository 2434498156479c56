package identity

import (
	"fmt"

	"orderchain/internal/pkg/errs"
)

// Org is the organization category a ledger identity belongs to. Each org is
// a distinct cryptographic identity domain on the network; transition
// permissions are gated on it.
type Org int

const (
	// UnknownOrg represents an invalid or undefined organization.
	UnknownOrg Org = iota

	// SellerOrg is the organization of marketplace sellers.
	SellerOrg

	// ShipperOrg is the organization of delivery carriers.
	ShipperOrg

	// PlatformOrg is the platform operator's organization.
	PlatformOrg

	// CustomerOrg is the pseudo-organization recorded for customer-initiated
	// actions (return requests). Customers hold no ledger identity; their
	// calls are scoped by order instead.
	CustomerOrg
)

func getOrgStrings() map[Org]string {
	return map[Org]string{
		UnknownOrg:  "UnknownOrg",
		SellerOrg:   "SellerOrg",
		ShipperOrg:  "ShipperOrg",
		PlatformOrg: "PlatformOrg",
		CustomerOrg: "CustomerOrg",
	}
}

// ApprovableOrgs returns the organizations an actor identity can be approved
// into. CustomerOrg is excluded: it never holds key material or a wallet.
func ApprovableOrgs() []Org {
	return []Org{SellerOrg, ShipperOrg, PlatformOrg}
}

// Validate checks the Org is one of the defined organizations.
func (o Org) Validate() error {
	switch o {
	case SellerOrg, ShipperOrg, PlatformOrg, CustomerOrg:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("org", fmt.Errorf("%d is not a valid org", o))
	}
}

// String returns the organization name. Implements fmt.Stringer.
func (o Org) String() string {
	if s, ok := getOrgStrings()[o]; ok {
		return s
	}
	return "UnknownOrg"
}

// OrgFromString parses an organization name produced by String.
func OrgFromString(s string) (Org, error) {
	for org, name := range getOrgStrings() {
		if name == s && org != UnknownOrg {
			return org, nil
		}
	}
	return UnknownOrg, errs.NewValueIsInvalidErrorWithCause("org", fmt.Errorf("%q is not a valid org", s))
}
