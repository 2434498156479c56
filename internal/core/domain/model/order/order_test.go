package order_test

import (
	"fmt"
	"testing"
	"time"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	txSeq  int
	baseAt = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
)

func nextTx(t *testing.T) order.Tx {
	t.Helper()
	txSeq++
	return order.Tx{ID: fmt.Sprintf("tx-%04d", txSeq), At: baseAt.Add(time.Duration(txSeq) * time.Second)}
}

func platformActor(t *testing.T) identity.Actor {
	t.Helper()
	a, err := identity.NewActor(identity.PlatformOrg, "PLATFORM")
	require.NoError(t, err)
	return a
}

func sellerActor(t *testing.T, company string) identity.Actor {
	t.Helper()
	a, err := identity.NewActor(identity.SellerOrg, company)
	require.NoError(t, err)
	return a
}

func shipperActor(t *testing.T, company string) identity.Actor {
	t.Helper()
	a, err := identity.NewActor(identity.ShipperOrg, company)
	require.NoError(t, err)
	return a
}

func newSubOrder(t *testing.T, method order.PaymentMethod) *order.SubOrder {
	t.Helper()
	id, err := order.NewID("order_abc", 1)
	require.NoError(t, err)

	amounts := order.Amounts{Untaxed: 3000, Shipping: 600, Total: 3600}
	if method == order.COD {
		amounts.Cod = amounts.Total
	}

	o, err := order.NewSubOrder(id, "SHOP-A", "GHN", method, amounts,
		`{"masterOrderID":"order_abc"}`, "seller-cipher", "shipper-cipher", nextTx(t))
	require.NoError(t, err)
	return o
}

// driveTo advances a fresh sub-order to the given state along the happy path.
func driveTo(t *testing.T, method order.PaymentMethod, target order.Status) *order.SubOrder {
	t.Helper()
	o := newSubOrder(t, method)
	if target == order.Created {
		return o
	}

	steps := map[order.Status][]order.Action{
		order.Paid:                {order.ActionConfirmPayment},
		order.Shipped:             {order.ActionConfirmPayment, order.ActionShipOrder},
		order.Delivered:           {order.ActionConfirmPayment, order.ActionShipOrder, order.ActionConfirmDelivery},
		order.DeliveredCodPending: {order.ActionShipOrder, order.ActionConfirmCODDelivery},
		order.CodRemitted:         {order.ActionShipOrder, order.ActionConfirmCODDelivery, order.ActionRemitCOD},
		order.Cancelled:           {order.ActionCancelOrder},
		order.ReturnRequested: {
			order.ActionConfirmPayment, order.ActionShipOrder, order.ActionConfirmDelivery, order.ActionRequestReturn,
		},
		order.ReturnInTransit: {
			order.ActionConfirmPayment, order.ActionShipOrder, order.ActionConfirmDelivery,
			order.ActionRequestReturn, order.ActionShipReturn,
		},
		order.Returned: {
			order.ActionConfirmPayment, order.ActionShipOrder, order.ActionConfirmDelivery,
			order.ActionRequestReturn, order.ActionShipReturn, order.ActionConfirmReturnReceived,
		},
	}

	if target == order.Settled {
		if method == order.COD {
			steps[order.Settled] = append(steps[order.CodRemitted], order.ActionPayout)
		} else {
			steps[order.Settled] = append(steps[order.Delivered], order.ActionPayout)
		}
	}

	route, ok := steps[target]
	require.True(t, ok, "no route to %s", target)
	if method == order.COD {
		// COD orders skip payment confirmation.
		filtered := route[:0:0]
		for _, a := range route {
			if a != order.ActionConfirmPayment {
				filtered = append(filtered, a)
			}
		}
		route = filtered
	}

	for _, action := range route {
		require.NoError(t, apply(t, o, action), "driving to %s via %s", target, action)
	}
	require.Equal(t, target, o.Status())
	return o
}

// apply invokes the named transition with the correctly scoped actor.
func apply(t *testing.T, o *order.SubOrder, action order.Action) error {
	t.Helper()
	tx := nextTx(t)
	switch action {
	case order.ActionConfirmPayment:
		return o.ConfirmPayment(platformActor(t), tx)
	case order.ActionShipOrder:
		return o.Ship(sellerActor(t, o.SellerOrgID()), tx)
	case order.ActionConfirmDelivery:
		return o.ConfirmDelivery(shipperActor(t, o.ShipperOrgID()), tx)
	case order.ActionConfirmCODDelivery:
		return o.ConfirmCODDelivery(shipperActor(t, o.ShipperOrgID()), tx)
	case order.ActionRemitCOD:
		return o.RemitCOD(platformActor(t), tx)
	case order.ActionCancelOrder:
		return o.Cancel(platformActor(t), tx)
	case order.ActionRequestReturn:
		return o.RequestReturn(tx, 7*24*time.Hour)
	case order.ActionShipReturn:
		return o.ShipReturn(shipperActor(t, o.ShipperOrgID()), tx)
	case order.ActionConfirmReturnReceived:
		return o.ConfirmReturnReceived(sellerActor(t, o.SellerOrgID()), tx)
	case order.ActionPayout:
		_, err := o.Payout(platformActor(t), tx, 0)
		return err
	default:
		t.Fatalf("unknown action %s", action)
		return nil
	}
}

func TestNewSubOrder(t *testing.T) {
	t.Run("should create order in CREATED status with one history entry", func(t *testing.T) {
		o := newSubOrder(t, order.Prepaid)

		require.NoError(t, o.Validate())
		assert.Equal(t, order.Created, o.Status())
		assert.Equal(t, order.CodNone, o.CodStatus())
		assert.True(t, o.DeliveryTimestamp().IsZero())
		require.Len(t, o.History(), 1)
		assert.Equal(t, order.ActionCreateOrder, o.History()[0].Action)
	})

	t.Run("should reject COD amounts below the order total", func(t *testing.T) {
		id, err := order.NewID("order_abc", 1)
		require.NoError(t, err)

		_, err = order.NewSubOrder(id, "SHOP-A", "GHN", order.COD,
			order.Amounts{Untaxed: 3000, Shipping: 600, Total: 3600, Cod: 100},
			"", "c1", "c2", order.Tx{ID: "tx", At: baseAt})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "codAmount")
	})

	t.Run("should reject a nonzero cod amount on PREPAID orders", func(t *testing.T) {
		id, err := order.NewID("order_abc", 1)
		require.NoError(t, err)

		_, err = order.NewSubOrder(id, "SHOP-A", "GHN", order.Prepaid,
			order.Amounts{Untaxed: 3000, Shipping: 600, Total: 3600, Cod: 3600},
			"", "c1", "c2", order.Tx{ID: "tx", At: baseAt})

		require.Error(t, err)
	})

	t.Run("should fail validation for zero value", func(t *testing.T) {
		var o order.SubOrder
		require.ErrorIs(t, o.Validate(), order.ErrSubOrderIsNotConstructed)
	})
}

// allowedActions returns the transition table row for a (state, method) pair.
// Anything absent must be rejected with InvalidTransitionError.
func allowedActions(method order.PaymentMethod, state order.Status) map[order.Action]bool {
	prepaid := method == order.Prepaid
	switch state {
	case order.Created:
		if prepaid {
			return map[order.Action]bool{order.ActionConfirmPayment: true, order.ActionCancelOrder: true}
		}
		return map[order.Action]bool{order.ActionShipOrder: true, order.ActionCancelOrder: true}
	case order.Paid:
		return map[order.Action]bool{order.ActionShipOrder: true, order.ActionCancelOrder: true}
	case order.Shipped:
		if prepaid {
			return map[order.Action]bool{order.ActionConfirmDelivery: true}
		}
		return map[order.Action]bool{order.ActionConfirmCODDelivery: true}
	case order.Delivered:
		return map[order.Action]bool{order.ActionRequestReturn: true, order.ActionPayout: true}
	case order.DeliveredCodPending:
		return map[order.Action]bool{order.ActionRemitCOD: true}
	case order.CodRemitted:
		return map[order.Action]bool{order.ActionPayout: true}
	case order.ReturnRequested:
		return map[order.Action]bool{order.ActionShipReturn: true}
	case order.ReturnInTransit:
		return map[order.Action]bool{order.ActionConfirmReturnReceived: true}
	default:
		// SETTLED, CANCELLED, RETURNED are terminal.
		return map[order.Action]bool{}
	}
}

func reachableStates(method order.PaymentMethod) []order.Status {
	if method == order.COD {
		return []order.Status{
			order.Created, order.Shipped, order.DeliveredCodPending,
			order.CodRemitted, order.Settled, order.Cancelled,
		}
	}
	return []order.Status{
		order.Created, order.Paid, order.Shipped, order.Delivered, order.Settled,
		order.Cancelled, order.ReturnRequested, order.ReturnInTransit, order.Returned,
	}
}

func TestTransitionClosure(t *testing.T) {
	for _, method := range []order.PaymentMethod{order.Prepaid, order.COD} {
		for _, state := range reachableStates(method) {
			allowed := allowedActions(method, state)
			for _, action := range order.TransitionActions() {
				if allowed[action] {
					continue
				}
				name := string(method) + "/" + state.String() + "/" + string(action)
				t.Run("should reject "+name, func(t *testing.T) {
					o := driveTo(t, method, state)
					before := o.History()
					statusBefore := o.Status()
					codBefore := o.CodStatus()

					err := apply(t, o, action)

					// Payout on a settled order is an idempotent no-op.
					if action == order.ActionPayout && state == order.Settled {
						require.NoError(t, err)
					} else {
						require.Error(t, err)
						assert.ErrorIs(t, err, errs.ErrInvalidTransition)
					}
					assert.Equal(t, statusBefore, o.Status())
					assert.Equal(t, codBefore, o.CodStatus())
					assert.Equal(t, before, o.History())
				})
			}
		}
	}
}

func TestConfirmDelivery(t *testing.T) {
	t.Run("should fail on a CREATED order and leave status unchanged", func(t *testing.T) {
		o := newSubOrder(t, order.Prepaid)

		err := o.ConfirmDelivery(shipperActor(t, "GHN"), nextTx(t))

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, order.Created, o.Status())
		assert.Len(t, o.History(), 1)
	})

	t.Run("should set deliveryTimestamp from the transaction time", func(t *testing.T) {
		o := driveTo(t, order.Prepaid, order.Shipped)
		tx := nextTx(t)

		require.NoError(t, o.ConfirmDelivery(shipperActor(t, "GHN"), tx))

		assert.Equal(t, order.Delivered, o.Status())
		assert.Equal(t, tx.At, o.DeliveryTimestamp())
	})

	t.Run("should reject a shipper from another company", func(t *testing.T) {
		o := driveTo(t, order.Prepaid, order.Shipped)

		err := o.ConfirmDelivery(shipperActor(t, "OTHER-CARRIER"), nextTx(t))

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrAuthorization)
		assert.Equal(t, order.Shipped, o.Status())
	})

	t.Run("should reject the wrong organization", func(t *testing.T) {
		o := driveTo(t, order.Prepaid, order.Shipped)

		err := o.ConfirmDelivery(sellerActor(t, "SHOP-A"), nextTx(t))

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrAuthorization)
	})
}

func TestShip(t *testing.T) {
	t.Run("should ship a COD order straight from CREATED", func(t *testing.T) {
		o := newSubOrder(t, order.COD)

		require.NoError(t, o.Ship(sellerActor(t, "SHOP-A"), nextTx(t)))
		assert.Equal(t, order.Shipped, o.Status())
	})

	t.Run("should require payment before shipping a PREPAID order", func(t *testing.T) {
		o := newSubOrder(t, order.Prepaid)

		err := o.Ship(sellerActor(t, "SHOP-A"), nextTx(t))

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("should reject a seller that does not own the order", func(t *testing.T) {
		o := driveTo(t, order.Prepaid, order.Paid)

		err := o.Ship(sellerActor(t, "SHOP-B"), nextTx(t))

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrAuthorization)
		assert.Equal(t, order.Paid, o.Status())
	})
}

func TestCODFlow(t *testing.T) {
	t.Run("should track cod status through delivery and remittance", func(t *testing.T) {
		o := driveTo(t, order.COD, order.Shipped)

		require.NoError(t, o.ConfirmCODDelivery(shipperActor(t, "GHN"), nextTx(t)))
		assert.Equal(t, order.DeliveredCodPending, o.Status())
		assert.Equal(t, order.CodPendingRemittance, o.CodStatus())
		assert.False(t, o.DeliveryTimestamp().IsZero())

		require.NoError(t, o.RemitCOD(platformActor(t), nextTx(t)))
		assert.Equal(t, order.CodRemitted, o.Status())
		assert.Equal(t, order.CodRemittedStatus, o.CodStatus())
	})

	t.Run("should keep cod status empty on the PREPAID path", func(t *testing.T) {
		o := driveTo(t, order.Prepaid, order.Delivered)
		assert.Equal(t, order.CodNone, o.CodStatus())
	})
}

func TestRequestReturn(t *testing.T) {
	t.Run("should open a return inside the window", func(t *testing.T) {
		o := driveTo(t, order.Prepaid, order.Delivered)
		tx := order.Tx{ID: "tx-return", At: o.DeliveryTimestamp().Add(time.Hour)}

		require.NoError(t, o.RequestReturn(tx, 7*24*time.Hour))
		assert.Equal(t, order.ReturnRequested, o.Status())
	})

	t.Run("should reject a return after the window closes", func(t *testing.T) {
		o := driveTo(t, order.Prepaid, order.Delivered)
		tx := order.Tx{ID: "tx-return", At: o.DeliveryTimestamp().Add(8 * 24 * time.Hour)}

		err := o.RequestReturn(tx, 7*24*time.Hour)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, order.Delivered, o.Status())
	})
}

func TestPayout(t *testing.T) {
	t.Run("should settle a delivered PREPAID order after the delay", func(t *testing.T) {
		o := driveTo(t, order.Prepaid, order.Delivered)
		tx := order.Tx{ID: "tx-payout", At: o.DeliveryTimestamp().Add(48 * time.Hour)}

		applied, err := o.Payout(platformActor(t), tx, 24*time.Hour)

		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, order.Settled, o.Status())
	})

	t.Run("should refuse settlement before the delay elapses", func(t *testing.T) {
		o := driveTo(t, order.Prepaid, order.Delivered)
		tx := order.Tx{ID: "tx-payout", At: o.DeliveryTimestamp().Add(time.Hour)}

		applied, err := o.Payout(platformActor(t), tx, 24*time.Hour)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.False(t, applied)
		assert.Equal(t, order.Delivered, o.Status())
	})

	t.Run("should be a no-op on an already settled order", func(t *testing.T) {
		o := driveTo(t, order.Prepaid, order.Settled)
		entries := len(o.History())

		applied, err := o.Payout(platformActor(t), order.Tx{ID: "tx-again", At: baseAt.Add(time.Hour)}, 0)

		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, order.Settled, o.Status())
		assert.Len(t, o.History(), entries, "no-op payout must not append history")
	})

	t.Run("should refuse a COD order that has not been remitted", func(t *testing.T) {
		o := driveTo(t, order.COD, order.DeliveredCodPending)
		tx := order.Tx{ID: "tx-payout", At: o.DeliveryTimestamp().Add(48 * time.Hour)}

		_, err := o.Payout(platformActor(t), tx, 0)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}

func TestHistoryAuditTrail(t *testing.T) {
	t.Run("should append exactly one entry per committed transition", func(t *testing.T) {
		o := driveTo(t, order.Prepaid, order.Settled)

		history := o.History()
		require.Len(t, history, 5)
		actions := make([]order.Action, len(history))
		for i, h := range history {
			actions[i] = h.Action
		}
		assert.Equal(t, []order.Action{
			order.ActionCreateOrder,
			order.ActionConfirmPayment,
			order.ActionShipOrder,
			order.ActionConfirmDelivery,
			order.ActionPayout,
		}, actions)

		for i := 1; i < len(history); i++ {
			assert.False(t, history[i].Timestamp.Before(history[i-1].Timestamp),
				"history must stay in transaction order")
		}
	})

	t.Run("should record the acting organization on each entry", func(t *testing.T) {
		o := driveTo(t, order.Prepaid, order.ReturnRequested)

		history := o.History()
		last := history[len(history)-1]
		assert.Equal(t, order.ActionRequestReturn, last.Action)
		assert.Equal(t, identity.CustomerOrg.String(), last.ActorOrg)
	})

	t.Run("should return a defensive copy", func(t *testing.T) {
		o := newSubOrder(t, order.Prepaid)

		h := o.History()
		h[0].Action = "Tampered"

		assert.Equal(t, order.ActionCreateOrder, o.History()[0].Action)
	})
}

func TestRecordRoundTrip(t *testing.T) {
	t.Run("should restore an aggregate from its wire record", func(t *testing.T) {
		o := driveTo(t, order.COD, order.CodRemitted)

		restored, err := order.FromRecord(o.ToRecord())

		require.NoError(t, err)
		assert.True(t, restored.ID().IsEqual(o.ID()))
		assert.Equal(t, o.Status(), restored.Status())
		assert.Equal(t, o.CodStatus(), restored.CodStatus())
		assert.Equal(t, o.Amounts(), restored.Amounts())
		assert.Equal(t, o.History(), restored.History())
		assert.Equal(t, o.DeliveryTimestamp(), restored.DeliveryTimestamp())
		assert.Equal(t, o.SellerCipher(), restored.SellerCipher())
	})
}
