package order

import (
	"errors"
	"fmt"
	"time"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/pkg/errs"
)

var (
	// ErrSubOrderIsNotConstructed is returned when a SubOrder instance was not
	// created through NewSubOrder or RestoreSubOrder.
	ErrSubOrderIsNotConstructed = errors.New(
		"SubOrder must be created via NewSubOrder or RestoreSubOrder")
)

// Tx carries the ledger transaction identity of a state change: the
// consensus-assigned transaction ID and the transaction timestamp. Both come
// from the ledger, never from caller wall clocks, so replicas agree on them.
type Tx struct {
	ID string
	At time.Time
}

func (t Tx) validate() error {
	if t.ID == "" {
		return errs.NewValueIsRequiredError("txID")
	}
	if t.At.IsZero() {
		return errs.NewValueIsRequiredError("txTimestamp")
	}
	return nil
}

// Amounts groups the monetary fields of a sub-order, in minor units.
type Amounts struct {
	Untaxed  int64
	Shipping int64
	Total    int64
	Cod      int64
}

// Validate checks internal consistency of the amounts against the payment
// method: Total = Untaxed + Shipping, COD orders collect exactly Total,
// PREPAID orders collect nothing.
func (a Amounts) Validate(method PaymentMethod) error {
	if a.Untaxed < 0 || a.Shipping < 0 {
		return errs.NewValueIsInvalidError("amounts must not be negative")
	}
	if a.Total != a.Untaxed+a.Shipping {
		return errs.NewValueIsInvalidErrorWithCause("amountTotal",
			fmt.Errorf("%d is not %d + %d", a.Total, a.Untaxed, a.Shipping))
	}
	switch method {
	case COD:
		if a.Cod != a.Total {
			return errs.NewValueIsInvalidErrorWithCause("codAmount",
				fmt.Errorf("COD order must collect the full total, got %d of %d", a.Cod, a.Total))
		}
	default:
		if a.Cod != 0 {
			return errs.NewValueIsInvalidErrorWithCause("codAmount",
				fmt.Errorf("PREPAID order must not collect cash, got %d", a.Cod))
		}
	}
	return nil
}

// SubOrder is the ledger-resident aggregate for one seller's portion of a
// multi-seller order. It owns the lifecycle state machine: every transition
// method checks the acting organization and the current-state guard before
// mutating anything, appends exactly one history entry when it commits, and
// leaves the aggregate untouched when a guard fails.
//
// Field visibility is tiered: the plain fields here are the public tier,
// sellerCipher and shipperCipher are opaque envelope ciphertexts that only
// the matching role's private key can open.
type SubOrder struct {
	id            ID
	sellerOrgID   string
	shipperOrgID  string
	paymentMethod PaymentMethod
	status        Status
	codStatus     CodStatus
	amounts       Amounts

	deliveryTimestamp time.Time
	createdAt         time.Time
	updatedAt         time.Time

	history []HistoryEntry

	publicData    string
	sellerCipher  string
	shipperCipher string

	isConstructed bool
}

// NewSubOrder creates a sub-order in CREATED status with its creation
// recorded as the first history entry.
func NewSubOrder(
	id ID,
	sellerOrgID, shipperOrgID string,
	paymentMethod PaymentMethod,
	amounts Amounts,
	publicData, sellerCipher, shipperCipher string,
	tx Tx,
) (*SubOrder, error) {
	if err := errors.Join(
		id.Validate(),
		requireValue("sellerOrgID", sellerOrgID),
		requireValue("shipperOrgID", shipperOrgID),
		paymentMethod.Validate(),
		amounts.Validate(paymentMethod),
		tx.validate(),
	); err != nil {
		return nil, err
	}

	o := &SubOrder{
		id:            id,
		sellerOrgID:   sellerOrgID,
		shipperOrgID:  shipperOrgID,
		paymentMethod: paymentMethod,
		status:        Created,
		codStatus:     CodNone,
		amounts:       amounts,
		createdAt:     tx.At,
		updatedAt:     tx.At,
		publicData:    publicData,
		sellerCipher:  sellerCipher,
		shipperCipher: shipperCipher,
		isConstructed: true,
	}
	o.appendHistory(ActionCreateOrder, identity.PlatformOrg.String(), tx)
	return o, nil
}

// RestoreSubOrder reconstructs a sub-order from its persisted record.
// Used by world-state adapters; it re-validates the restored values.
func RestoreSubOrder(
	id ID,
	sellerOrgID, shipperOrgID string,
	paymentMethod PaymentMethod,
	status Status,
	codStatus CodStatus,
	amounts Amounts,
	deliveryTimestamp, createdAt, updatedAt time.Time,
	history []HistoryEntry,
	publicData, sellerCipher, shipperCipher string,
) (*SubOrder, error) {
	if err := errors.Join(
		id.Validate(),
		requireValue("sellerOrgID", sellerOrgID),
		requireValue("shipperOrgID", shipperOrgID),
		paymentMethod.Validate(),
		status.Validate(),
		codStatus.Validate(),
	); err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, errs.NewValueIsRequiredError("history")
	}

	return &SubOrder{
		id:                id,
		sellerOrgID:       sellerOrgID,
		shipperOrgID:      shipperOrgID,
		paymentMethod:     paymentMethod,
		status:            status,
		codStatus:         codStatus,
		amounts:           amounts,
		deliveryTimestamp: deliveryTimestamp,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
		history:           history,
		publicData:        publicData,
		sellerCipher:      sellerCipher,
		shipperCipher:     shipperCipher,
		isConstructed:     true,
	}, nil
}

func requireValue(name, v string) error {
	if v == "" {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}

// Validate ensures the SubOrder was created through a constructor.
func (o *SubOrder) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrSubOrderIsNotConstructed
	}
	return nil
}

// ID returns the sub-order's ledger key.
func (o *SubOrder) ID() ID { return o.id }

// SellerOrgID returns the company code of the owning seller.
func (o *SubOrder) SellerOrgID() string { return o.sellerOrgID }

// ShipperOrgID returns the company code of the assigned carrier.
func (o *SubOrder) ShipperOrgID() string { return o.shipperOrgID }

// PaymentMethod returns how the sub-order is paid for.
func (o *SubOrder) PaymentMethod() PaymentMethod { return o.paymentMethod }

// Status returns the current lifecycle state.
func (o *SubOrder) Status() Status { return o.status }

// CodStatus returns the remittance state of the COD leg.
// It is CodNone for PREPAID orders.
func (o *SubOrder) CodStatus() CodStatus { return o.codStatus }

// Amounts returns the monetary fields of the sub-order.
func (o *SubOrder) Amounts() Amounts { return o.amounts }

// DeliveryTimestamp returns the moment of the first delivery confirmation.
// Zero until the order is delivered; set exactly once.
func (o *SubOrder) DeliveryTimestamp() time.Time { return o.deliveryTimestamp }

// CreatedAt returns the creation transaction timestamp.
func (o *SubOrder) CreatedAt() time.Time { return o.createdAt }

// UpdatedAt returns the timestamp of the last committed transition.
func (o *SubOrder) UpdatedAt() time.Time { return o.updatedAt }

// History returns a copy of the append-only audit trail.
func (o *SubOrder) History() []HistoryEntry {
	out := make([]HistoryEntry, len(o.history))
	copy(out, o.history)
	return out
}

// PublicData returns the plaintext tier blob attached at creation.
func (o *SubOrder) PublicData() string { return o.publicData }

// SellerCipher returns the seller-scoped envelope ciphertext.
func (o *SubOrder) SellerCipher() string { return o.sellerCipher }

// ShipperCipher returns the shipper-scoped envelope ciphertext.
func (o *SubOrder) ShipperCipher() string { return o.shipperCipher }

func (o *SubOrder) appendHistory(action Action, actorOrg string, tx Tx) {
	o.history = append(o.history, HistoryEntry{
		Action:    action,
		ActorOrg:  actorOrg,
		TxID:      tx.ID,
		Timestamp: tx.At,
	})
	o.updatedAt = tx.At
}

// requireOrg gates a transition on the acting organization.
func requireOrg(action Action, actor identity.Actor, allowed ...identity.Org) error {
	for _, org := range allowed {
		if actor.Org() == org {
			return nil
		}
	}
	return errs.NewAuthorizationError(string(action), actor.String())
}

// requireCompany scopes a transition to the company that owns the order side.
func requireCompany(action Action, actor identity.Actor, ownerCompany string) error {
	if actor.CompanyCode() != ownerCompany {
		return errs.NewAuthorizationErrorWithCause(string(action), actor.String(),
			fmt.Errorf("order belongs to %q", ownerCompany))
	}
	return nil
}

// ConfirmPayment records the platform's payment confirmation for a PREPAID
// order, moving CREATED -> PAID.
func (o *SubOrder) ConfirmPayment(actor identity.Actor, tx Tx) error {
	if err := requireOrg(ActionConfirmPayment, actor, identity.PlatformOrg); err != nil {
		return err
	}
	if o.paymentMethod != Prepaid {
		return errs.NewInvalidTransitionErrorWithCause(string(ActionConfirmPayment), o.status.String(),
			errors.New("only PREPAID orders confirm payment"))
	}
	if o.status != Created {
		return errs.NewInvalidTransitionError(string(ActionConfirmPayment), o.status.String())
	}

	o.status = Paid
	o.appendHistory(ActionConfirmPayment, actor.Org().String(), tx)
	return nil
}

// Ship records the seller handing the order to the carrier, moving
// CREATED -> SHIPPED for COD orders and PAID -> SHIPPED for PREPAID orders.
func (o *SubOrder) Ship(actor identity.Actor, tx Tx) error {
	if err := requireOrg(ActionShipOrder, actor, identity.SellerOrg); err != nil {
		return err
	}
	if err := requireCompany(ActionShipOrder, actor, o.sellerOrgID); err != nil {
		return err
	}
	if o.paymentMethod == Prepaid && o.status != Paid {
		return errs.NewInvalidTransitionErrorWithCause(string(ActionShipOrder), o.status.String(),
			errors.New("PREPAID orders ship only after payment"))
	}
	if o.paymentMethod == COD && o.status != Created {
		return errs.NewInvalidTransitionErrorWithCause(string(ActionShipOrder), o.status.String(),
			errors.New("COD orders ship from CREATED"))
	}

	o.status = Shipped
	o.appendHistory(ActionShipOrder, actor.Org().String(), tx)
	return nil
}

// ConfirmDelivery records delivery of a PREPAID order by its carrier,
// moving SHIPPED -> DELIVERED and stamping deliveryTimestamp.
func (o *SubOrder) ConfirmDelivery(actor identity.Actor, tx Tx) error {
	if err := requireOrg(ActionConfirmDelivery, actor, identity.ShipperOrg); err != nil {
		return err
	}
	if err := requireCompany(ActionConfirmDelivery, actor, o.shipperOrgID); err != nil {
		return err
	}
	if o.paymentMethod != Prepaid {
		return errs.NewInvalidTransitionErrorWithCause(string(ActionConfirmDelivery), o.status.String(),
			errors.New("COD orders use ConfirmCODDelivery"))
	}
	if o.status != Shipped {
		return errs.NewInvalidTransitionError(string(ActionConfirmDelivery), o.status.String())
	}

	o.status = Delivered
	o.deliveryTimestamp = tx.At
	o.appendHistory(ActionConfirmDelivery, actor.Org().String(), tx)
	return nil
}

// ConfirmCODDelivery records delivery and cash collection of a COD order,
// moving SHIPPED -> DELIVERED_COD_PENDING with codStatus PENDING_REMITTANCE
// and stamping deliveryTimestamp.
func (o *SubOrder) ConfirmCODDelivery(actor identity.Actor, tx Tx) error {
	if err := requireOrg(ActionConfirmCODDelivery, actor, identity.ShipperOrg); err != nil {
		return err
	}
	if err := requireCompany(ActionConfirmCODDelivery, actor, o.shipperOrgID); err != nil {
		return err
	}
	if o.paymentMethod != COD {
		return errs.NewInvalidTransitionErrorWithCause(string(ActionConfirmCODDelivery), o.status.String(),
			errors.New("PREPAID orders use ConfirmDelivery"))
	}
	if o.status != Shipped {
		return errs.NewInvalidTransitionError(string(ActionConfirmCODDelivery), o.status.String())
	}

	o.status = DeliveredCodPending
	o.codStatus = CodPendingRemittance
	o.deliveryTimestamp = tx.At
	o.appendHistory(ActionConfirmCODDelivery, actor.Org().String(), tx)
	return nil
}

// RemitCOD records the platform receiving the collected cash from the
// carrier, moving DELIVERED_COD_PENDING -> COD_REMITTED.
func (o *SubOrder) RemitCOD(actor identity.Actor, tx Tx) error {
	if err := requireOrg(ActionRemitCOD, actor, identity.PlatformOrg); err != nil {
		return err
	}
	if o.codStatus != CodPendingRemittance {
		return errs.NewInvalidTransitionErrorWithCause(string(ActionRemitCOD), o.status.String(),
			fmt.Errorf("codStatus is %q, not %q", o.codStatus, CodPendingRemittance))
	}

	o.status = CodRemitted
	o.codStatus = CodRemittedStatus
	o.appendHistory(ActionRemitCOD, actor.Org().String(), tx)
	return nil
}

// Cancel voids an order that has not shipped, moving CREATED or PAID ->
// CANCELLED. Sellers may cancel their own orders; the platform may cancel any.
func (o *SubOrder) Cancel(actor identity.Actor, tx Tx) error {
	if err := requireOrg(ActionCancelOrder, actor, identity.SellerOrg, identity.PlatformOrg); err != nil {
		return err
	}
	if actor.Org() == identity.SellerOrg {
		if err := requireCompany(ActionCancelOrder, actor, o.sellerOrgID); err != nil {
			return err
		}
	}
	if o.status != Created && o.status != Paid {
		return errs.NewInvalidTransitionError(string(ActionCancelOrder), o.status.String())
	}

	o.status = Cancelled
	o.appendHistory(ActionCancelOrder, actor.Org().String(), tx)
	return nil
}

// RequestReturn opens a customer return on a delivered PREPAID order within
// the return window, moving DELIVERED -> RETURN_REQUESTED. The call is
// order-scoped rather than identity-gated; the window is measured against
// deliveryTimestamp using the transaction timestamp.
func (o *SubOrder) RequestReturn(tx Tx, window time.Duration) error {
	if o.status != Delivered {
		return errs.NewInvalidTransitionError(string(ActionRequestReturn), o.status.String())
	}
	if o.deliveryTimestamp.IsZero() {
		return errs.NewInvalidTransitionErrorWithCause(string(ActionRequestReturn), o.status.String(),
			errors.New("delivery timestamp is missing"))
	}
	if tx.At.After(o.deliveryTimestamp.Add(window)) {
		return errs.NewInvalidTransitionErrorWithCause(string(ActionRequestReturn), o.status.String(),
			fmt.Errorf("return window closed at %s", o.deliveryTimestamp.Add(window).Format(time.RFC3339)))
	}

	o.status = ReturnRequested
	o.appendHistory(ActionRequestReturn, identity.CustomerOrg.String(), tx)
	return nil
}

// ShipReturn records the carrier picking the return up from the customer,
// moving RETURN_REQUESTED -> RETURN_IN_TRANSIT.
func (o *SubOrder) ShipReturn(actor identity.Actor, tx Tx) error {
	if err := requireOrg(ActionShipReturn, actor, identity.ShipperOrg); err != nil {
		return err
	}
	if err := requireCompany(ActionShipReturn, actor, o.shipperOrgID); err != nil {
		return err
	}
	if o.status != ReturnRequested {
		return errs.NewInvalidTransitionError(string(ActionShipReturn), o.status.String())
	}

	o.status = ReturnInTransit
	o.appendHistory(ActionShipReturn, actor.Org().String(), tx)
	return nil
}

// ConfirmReturnReceived records the seller receiving the returned goods,
// moving RETURN_IN_TRANSIT -> RETURNED.
func (o *SubOrder) ConfirmReturnReceived(actor identity.Actor, tx Tx) error {
	if err := requireOrg(ActionConfirmReturnReceived, actor, identity.SellerOrg); err != nil {
		return err
	}
	if err := requireCompany(ActionConfirmReturnReceived, actor, o.sellerOrgID); err != nil {
		return err
	}
	if o.status != ReturnInTransit {
		return errs.NewInvalidTransitionError(string(ActionConfirmReturnReceived), o.status.String())
	}

	o.status = Returned
	o.appendHistory(ActionConfirmReturnReceived, actor.Org().String(), tx)
	return nil
}

// Payout settles the order to the seller once the settlement delay has
// elapsed since delivery: (PREPAID and DELIVERED) or (COD and REMITTED) ->
// SETTLED. Paying out an already settled order is a no-op, not an error, so
// overlapping scanner runs stay safe; the returned bool reports whether the
// transition applied.
func (o *SubOrder) Payout(actor identity.Actor, tx Tx, delay time.Duration) (bool, error) {
	if err := requireOrg(ActionPayout, actor, identity.PlatformOrg); err != nil {
		return false, err
	}
	if o.status == Settled {
		return false, nil
	}
	eligible := (o.paymentMethod == Prepaid && o.status == Delivered) ||
		(o.paymentMethod == COD && o.codStatus == CodRemittedStatus)
	if !eligible {
		return false, errs.NewInvalidTransitionError(string(ActionPayout), o.status.String())
	}
	if o.deliveryTimestamp.IsZero() {
		return false, errs.NewInvalidTransitionErrorWithCause(string(ActionPayout), o.status.String(),
			errors.New("delivery timestamp is missing"))
	}
	if unlock := o.deliveryTimestamp.Add(delay); tx.At.Before(unlock) {
		return false, errs.NewInvalidTransitionErrorWithCause(string(ActionPayout), o.status.String(),
			fmt.Errorf("settlement locked until %s", unlock.Format(time.RFC3339)))
	}

	o.status = Settled
	o.appendHistory(ActionPayout, actor.Org().String(), tx)
	return true, nil
}
