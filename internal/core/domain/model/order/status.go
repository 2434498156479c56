package order

import (
	"fmt"

	"orderchain/internal/pkg/errs"
)

// Status represents the lifecycle state of a sub-order.
//
// State transitions (actor gates and guards are enforced by SubOrder):
//
//	CREATED ──ConfirmPayment──> PAID
//	CREATED/PAID ──ShipOrder──> SHIPPED
//	CREATED/PAID ──CancelOrder──> CANCELLED
//	SHIPPED ──ConfirmDelivery──> DELIVERED (PREPAID)
//	SHIPPED ──ConfirmCODDelivery──> DELIVERED_COD_PENDING (COD)
//	DELIVERED_COD_PENDING ──RemitCOD──> COD_REMITTED
//	DELIVERED ──RequestReturn──> RETURN_REQUESTED ──> RETURN_IN_TRANSIT ──> RETURNED
//	DELIVERED / COD_REMITTED ──Payout──> SETTLED
//
// The string forms are the ledger wire values and are shared with the
// chaincode, the event stream, and the public status tier.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// Created is the initial status assigned by CreateOrder.
	Created

	// Paid indicates a PREPAID order whose payment the platform confirmed.
	Paid

	// Shipped indicates the seller handed the order to the carrier.
	Shipped

	// Delivered indicates a PREPAID order confirmed delivered by the carrier.
	Delivered

	// DeliveredCodPending indicates a COD order delivered with the collected
	// cash still held by the carrier.
	DeliveredCodPending

	// CodRemitted indicates the carrier forwarded the collected COD cash to
	// the platform.
	CodRemitted

	// Settled is the terminal success state: funds released to the seller.
	Settled

	// Cancelled is the terminal state of an order cancelled before shipping.
	Cancelled

	// ReturnRequested indicates the customer opened a return within the
	// return window.
	ReturnRequested

	// ReturnInTransit indicates the carrier picked the return up.
	ReturnInTransit

	// Returned is the terminal state of a completed return.
	Returned
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:             "UNKNOWN",
		Created:             "CREATED",
		Paid:                "PAID",
		Shipped:             "SHIPPED",
		Delivered:           "DELIVERED",
		DeliveredCodPending: "DELIVERED_COD_PENDING",
		CodRemitted:         "COD_REMITTED",
		Settled:             "SETTLED",
		Cancelled:           "CANCELLED",
		ReturnRequested:     "RETURN_REQUESTED",
		ReturnInTransit:     "RETURN_IN_TRANSIT",
		Returned:            "RETURNED",
	}
}

// Validate checks the Status is one of the defined lifecycle states.
func (s Status) Validate() error {
	if s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the ledger wire form of the status. Implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// StatusFromString parses a ledger wire status value.
func StatusFromString(v string) (Status, error) {
	for s, str := range getStatusStrings() {
		if str == v && s != Unknown {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", v))
}

// PaymentMethod is how a sub-order is paid for.
type PaymentMethod string

const (
	// Prepaid orders are captured up front and confirmed by the platform.
	Prepaid PaymentMethod = "PREPAID"

	// COD orders are collected in cash by the carrier at delivery.
	COD PaymentMethod = "COD"
)

// Validate checks the payment method is one of the defined methods.
func (p PaymentMethod) Validate() error {
	if p != Prepaid && p != COD {
		return errs.NewValueIsInvalidErrorWithCause("paymentMethod",
			fmt.Errorf("%q is not a valid payment method", string(p)))
	}
	return nil
}

// CodStatus tracks the cash-on-delivery remittance leg. It is meaningful
// only for COD orders; PREPAID orders keep it empty.
type CodStatus string

const (
	// CodNone is the cod status of PREPAID orders and of COD orders before delivery.
	CodNone CodStatus = ""

	// CodPendingRemittance means the carrier collected cash not yet forwarded.
	CodPendingRemittance CodStatus = "PENDING_REMITTANCE"

	// CodRemittedStatus means the collected cash reached the platform.
	CodRemittedStatus CodStatus = "REMITTED"
)

// Validate checks the cod status is one of the defined values.
func (c CodStatus) Validate() error {
	switch c {
	case CodNone, CodPendingRemittance, CodRemittedStatus:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("codStatus",
			fmt.Errorf("%q is not a valid cod status", string(c)))
	}
}

// Action names the ledger transactions of the order lifecycle. The values
// are the chaincode function names and appear verbatim in the audit history.
type Action string

const (
	ActionCreateOrder           Action = "CreateOrder"
	ActionConfirmPayment        Action = "ConfirmPayment"
	ActionShipOrder             Action = "ShipOrder"
	ActionConfirmDelivery       Action = "ConfirmDelivery"
	ActionConfirmCODDelivery    Action = "ConfirmCODDelivery"
	ActionRemitCOD              Action = "RemitCOD"
	ActionCancelOrder           Action = "CancelOrder"
	ActionRequestReturn         Action = "RequestReturn"
	ActionShipReturn            Action = "ShipReturn"
	ActionConfirmReturnReceived Action = "ConfirmReturnReceived"
	ActionPayout                Action = "PayoutToSeller"
)

// TransitionActions lists every post-creation transition in table order.
func TransitionActions() []Action {
	return []Action{
		ActionConfirmPayment,
		ActionShipOrder,
		ActionConfirmDelivery,
		ActionConfirmCODDelivery,
		ActionRemitCOD,
		ActionCancelOrder,
		ActionRequestReturn,
		ActionShipReturn,
		ActionConfirmReturnReceived,
		ActionPayout,
	}
}
