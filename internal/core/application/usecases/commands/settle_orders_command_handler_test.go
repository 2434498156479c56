package commands_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderchain/internal/adapters/out/ledger/memledger"
	"orderchain/internal/core/application/usecases/commands"
	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/order"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time { return c.current }

func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

type settleFixture struct {
	clock    *fakeClock
	ledger   *memledger.Ledger
	platform identity.Actor
	handler  commands.SettleOrdersCommandHandler
}

func newSettleFixture(t *testing.T) *settleFixture {
	t.Helper()

	f := &settleFixture{
		clock:    &fakeClock{current: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		platform: platformActor(t),
	}
	f.ledger = newTestLedger(t, f.clock.Now)
	f.handler = commands.NewSettleOrdersCommandHandlerWithClock(
		f.ledger, f.platform, 72*time.Hour, f.clock.Now, slog.Default())
	return f
}

func (f *settleFixture) submitAs(t *testing.T, actor identity.Actor, fn string, args ...string) {
	t.Helper()

	conn, err := f.ledger.Connect(context.Background(), actor)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	_, err = conn.Submit(context.Background(), fn, args...)
	require.NoError(t, err)
}

// seedDelivered drives a prepaid order to DELIVERED at the current clock.
func (f *settleFixture) seedDelivered(t *testing.T, orderID string) {
	t.Helper()

	rec := order.Record{
		OrderID:       orderID,
		SellerOrgID:   "ACME",
		ShipperOrgID:  "SHIPCO",
		PaymentMethod: string(order.Prepaid),
		AmountUntaxed: 30,
		ShippingTotal: 6,
		AmountTotal:   36,
	}
	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	seller, err := identity.NewActor(identity.SellerOrg, "ACME")
	require.NoError(t, err)
	shipper, err := identity.NewActor(identity.ShipperOrg, "SHIPCO")
	require.NoError(t, err)

	f.submitAs(t, f.platform, string(order.ActionCreateOrder), string(raw))
	f.submitAs(t, f.platform, string(order.ActionConfirmPayment), orderID)
	f.submitAs(t, seller, string(order.ActionShipOrder), orderID)
	f.submitAs(t, shipper, string(order.ActionConfirmDelivery), orderID)
}

// seedCodRemitted drives a cod order to COD_REMITTED at the current clock.
func (f *settleFixture) seedCodRemitted(t *testing.T, orderID string, remit bool) {
	t.Helper()

	rec := order.Record{
		OrderID:       orderID,
		SellerOrgID:   "ACME",
		ShipperOrgID:  "SHIPCO",
		PaymentMethod: string(order.COD),
		AmountUntaxed: 70,
		ShippingTotal: 14,
		AmountTotal:   84,
		CodAmount:     84,
	}
	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	seller, err := identity.NewActor(identity.SellerOrg, "ACME")
	require.NoError(t, err)
	shipper, err := identity.NewActor(identity.ShipperOrg, "SHIPCO")
	require.NoError(t, err)

	f.submitAs(t, f.platform, string(order.ActionCreateOrder), string(raw))
	f.submitAs(t, seller, string(order.ActionShipOrder), orderID)
	f.submitAs(t, shipper, string(order.ActionConfirmCODDelivery), orderID)
	if remit {
		f.submitAs(t, f.platform, string(order.ActionRemitCOD), orderID)
	}
}

func (f *settleFixture) scan(t *testing.T) int {
	t.Helper()

	cmd, err := commands.NewSettleOrdersCommand()
	require.NoError(t, err)
	settled, err := f.handler.Handle(context.Background(), cmd)
	require.NoError(t, err)
	return settled
}

func (f *settleFixture) status(t *testing.T, orderID string) string {
	t.Helper()

	conn, err := f.ledger.Connect(context.Background(), f.platform)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	return evaluateRecord(t, conn, orderID).Status
}

func TestSettleOrdersCommandHandler(t *testing.T) {
	t.Run("should not settle a delivered order before the delay elapses", func(t *testing.T) {
		f := newSettleFixture(t)
		f.seedDelivered(t, "M1_1")

		assert.Zero(t, f.scan(t))
		assert.Equal(t, order.Delivered.String(), f.status(t, "M1_1"))
	})

	t.Run("should settle a delivered prepaid order after the delay", func(t *testing.T) {
		f := newSettleFixture(t)
		f.seedDelivered(t, "M1_1")

		f.clock.Advance(73 * time.Hour)
		assert.Equal(t, 1, f.scan(t))
		assert.Equal(t, order.Settled.String(), f.status(t, "M1_1"))
	})

	t.Run("should find nothing to settle on a repeated scan", func(t *testing.T) {
		f := newSettleFixture(t)
		f.seedDelivered(t, "M1_1")
		f.clock.Advance(73 * time.Hour)

		assert.Equal(t, 1, f.scan(t))
		assert.Zero(t, f.scan(t))
	})

	t.Run("should settle a cod order only after remittance", func(t *testing.T) {
		f := newSettleFixture(t)
		f.seedCodRemitted(t, "M2_1", false)
		f.clock.Advance(73 * time.Hour)

		assert.Zero(t, f.scan(t))
		assert.Equal(t, order.DeliveredCodPending.String(), f.status(t, "M2_1"))

		f.submitAs(t, f.platform, string(order.ActionRemitCOD), "M2_1")
		assert.Equal(t, 1, f.scan(t))
		assert.Equal(t, order.Settled.String(), f.status(t, "M2_1"))
	})

	t.Run("should settle eligible orders and skip the rest in one scan", func(t *testing.T) {
		f := newSettleFixture(t)
		f.seedDelivered(t, "M1_1")
		f.clock.Advance(73 * time.Hour)
		f.seedDelivered(t, "M3_1")
		f.seedCodRemitted(t, "M2_1", true)

		assert.Equal(t, 1, f.scan(t))
		assert.Equal(t, order.Settled.String(), f.status(t, "M1_1"))
		assert.Equal(t, order.Delivered.String(), f.status(t, "M3_1"))
		assert.Equal(t, order.CodRemitted.String(), f.status(t, "M2_1"))
	})
}
