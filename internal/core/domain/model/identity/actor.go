package identity

import (
	"errors"

	"orderchain/internal/pkg/errs"
)

var (
	// ErrActorIsNotConstructed is returned when an Actor was not created via NewActor.
	ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor constructor")

	// ErrActorIdentityIsNotConstructed is returned when an ActorIdentity was not
	// created through NewActorIdentity or RestoreActorIdentity.
	ErrActorIdentityIsNotConstructed = errors.New(
		"ActorIdentity must be created via NewActorIdentity or RestoreActorIdentity")
)

// Actor is the caller of a ledger operation: an organization plus the company
// the caller belongs to inside that organization. It is the unit of
// authorization for every transition: the org gates the verb, the company
// code scopes it to a specific order.
type Actor struct {
	org         Org
	companyCode string
}

// NewActor creates a validated Actor. CustomerOrg actors carry no company
// code; every other org requires one.
func NewActor(org Org, companyCode string) (Actor, error) {
	if err := org.Validate(); err != nil {
		return Actor{}, err
	}
	if org != CustomerOrg && companyCode == "" {
		return Actor{}, errs.NewValueIsRequiredError("companyCode")
	}
	return Actor{org: org, companyCode: companyCode}, nil
}

// Customer returns the pseudo-actor recorded for order-scoped customer calls.
func Customer() Actor {
	return Actor{org: CustomerOrg}
}

// Org returns the actor's organization.
func (a Actor) Org() Org {
	return a.org
}

// CompanyCode returns the actor's company code within its organization.
func (a Actor) CompanyCode() string {
	return a.companyCode
}

// Validate ensures the actor was created via NewActor or Customer.
func (a Actor) Validate() error {
	if a.org == UnknownOrg {
		return ErrActorIsNotConstructed
	}
	return nil
}

// String renders the actor as "Org/companyCode" for audit and error messages.
func (a Actor) String() string {
	if a.companyCode == "" {
		return a.org.String()
	}
	return a.org.String() + "/" + a.companyCode
}

// ActorIdentity is an approved participant's off-ledger identity record:
// the RSA keypair used for role-scoped field encryption and the wallet
// credential binding the identity to the ledger network.
//
// Invariant: an approved actor always holds both the keypair and the wallet
// credential. The approval step creates them together in one transaction;
// RestoreActorIdentity refuses records that carry one without the other.
type ActorIdentity struct {
	companyCode   string
	org           Org
	publicKeyPEM  string
	privateKeyPEM string
	walletID      string

	isConstructed bool
}

// NewActorIdentity creates an identity from freshly generated key material.
func NewActorIdentity(companyCode string, org Org, publicKeyPEM, privateKeyPEM, walletID string) (*ActorIdentity, error) {
	return newActorIdentity(companyCode, org, publicKeyPEM, privateKeyPEM, walletID)
}

// RestoreActorIdentity reconstructs an identity from persistence, re-checking
// the keypair/wallet completeness invariant.
func RestoreActorIdentity(companyCode string, org Org, publicKeyPEM, privateKeyPEM, walletID string) (*ActorIdentity, error) {
	return newActorIdentity(companyCode, org, publicKeyPEM, privateKeyPEM, walletID)
}

func newActorIdentity(companyCode string, org Org, publicKeyPEM, privateKeyPEM, walletID string) (*ActorIdentity, error) {
	if companyCode == "" {
		return nil, errs.NewValueIsRequiredError("companyCode")
	}
	if err := org.Validate(); err != nil {
		return nil, err
	}
	if org == CustomerOrg {
		return nil, errs.NewValueIsInvalidError("org: customers cannot be approved as actors")
	}
	if publicKeyPEM == "" {
		return nil, errs.NewValueIsRequiredError("publicKeyPEM")
	}
	if privateKeyPEM == "" {
		return nil, errs.NewValueIsRequiredError("privateKeyPEM")
	}
	if walletID == "" {
		return nil, errs.NewValueIsRequiredError("walletID")
	}

	return &ActorIdentity{
		companyCode:   companyCode,
		org:           org,
		publicKeyPEM:  publicKeyPEM,
		privateKeyPEM: privateKeyPEM,
		walletID:      walletID,
		isConstructed: true,
	}, nil
}

// Validate ensures the identity was created through a constructor.
func (a *ActorIdentity) Validate() error {
	if a == nil || !a.isConstructed {
		return ErrActorIdentityIsNotConstructed
	}
	return nil
}

// CompanyCode returns the unique company code of the identity.
func (a *ActorIdentity) CompanyCode() string {
	return a.companyCode
}

// Org returns the organization the identity was approved into.
func (a *ActorIdentity) Org() Org {
	return a.org
}

// PublicKeyPEM returns the public half of the keypair. It is attached to the
// actor's directory profile and discoverable by counterparties.
func (a *ActorIdentity) PublicKeyPEM() string {
	return a.publicKeyPEM
}

// PrivateKeyPEM returns the private half of the keypair. It lives only in the
// actor's own record and must never cross a trust boundary.
func (a *ActorIdentity) PrivateKeyPEM() string {
	return a.privateKeyPEM
}

// WalletID returns the ledger wallet credential of the identity.
func (a *ActorIdentity) WalletID() string {
	return a.walletID
}

// Actor returns the Actor value this identity authenticates as.
func (a *ActorIdentity) Actor() Actor {
	return Actor{org: a.org, companyCode: a.companyCode}
}
