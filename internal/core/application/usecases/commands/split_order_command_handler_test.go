package commands_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderchain/internal/adapters/out/ledger/memledger"
	"orderchain/internal/core/application/usecases/commands"
	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/core/ports"
	"orderchain/internal/pkg/envelope"
	"orderchain/internal/pkg/errs"
)

type splitFixture struct {
	uow      *fakeUoW
	ledger   *memledger.Ledger
	platform identity.Actor
	handler  commands.SplitOrderCommandHandler

	seller  *identity.ActorIdentity
	shipper *identity.ActorIdentity
}

// newSplitFixture approves sellers ACME and BOLT plus shipper SHIPCO, leaving
// out any codes listed in skip.
func newSplitFixture(t *testing.T, skip ...string) *splitFixture {
	t.Helper()

	f := &splitFixture{uow: newFakeUoW(), platform: platformActor(t)}
	skipped := func(code string) bool {
		for _, s := range skip {
			if s == code {
				return true
			}
		}
		return false
	}
	if !skipped("ACME") {
		f.seller = approveTestActor(t, f.uow.actors, "ACME", identity.SellerOrg)
	}
	if !skipped("BOLT") {
		approveTestActor(t, f.uow.actors, "BOLT", identity.SellerOrg)
	}
	if !skipped("SHIPCO") {
		f.shipper = approveTestActor(t, f.uow.actors, "SHIPCO", identity.ShipperOrg)
	}

	f.ledger = newTestLedger(t, time.Now)
	f.handler = commands.NewSplitOrderCommandHandler(
		fakeUoWFactory{uow: f.uow}, f.ledger, f.platform, slog.Default())
	return f
}

func (f *splitFixture) record(t *testing.T, orderID string) order.Record {
	t.Helper()

	conn, err := f.ledger.Connect(context.Background(), f.platform)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	return evaluateRecord(t, conn, orderID)
}

func evaluateRecord(t *testing.T, conn ports.Ledger, orderID string) order.Record {
	t.Helper()

	raw, err := conn.Evaluate(context.Background(), "GetOrder", orderID)
	require.NoError(t, err)
	var rec order.Record
	require.NoError(t, json.Unmarshal(raw, &rec))
	return rec
}

func testCart() []commands.CartItem {
	return []commands.CartItem{
		{SKU: "SKU-A", Name: "Kettle", SellerCode: "ACME", UnitPrice: 30, Quantity: 1},
		{SKU: "SKU-B", Name: "Lamp", SellerCode: "BOLT", UnitPrice: 70, Quantity: 1},
	}
}

func newSplitCommand(t *testing.T, method order.PaymentMethod, shipping int64, items []commands.CartItem) commands.SplitOrderCommand {
	t.Helper()

	cmd, err := commands.NewSplitOrderCommand(
		"M100", method, "SHIPCO", "Jane Doe", "1 Main St", "555-0101", shipping, items)
	require.NoError(t, err)
	return cmd
}

func TestSplitOrderCommandHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("should prorate shipping by each seller's share of the items total", func(t *testing.T) {
		f := newSplitFixture(t)

		outcomes, err := f.handler.Handle(ctx, newSplitCommand(t, order.Prepaid, 20, testCart()))
		require.NoError(t, err)
		require.Len(t, outcomes, 2)
		for _, outcome := range outcomes {
			require.NoError(t, outcome.Err)
			assert.True(t, outcome.Submitted)
		}
		assert.Equal(t, "M100_1", outcomes[0].OrderID)
		assert.Equal(t, "ACME", outcomes[0].SellerCode)
		assert.Equal(t, "M100_2", outcomes[1].OrderID)
		assert.Equal(t, "BOLT", outcomes[1].SellerCode)

		first := f.record(t, "M100_1")
		assert.Equal(t, int64(30), first.AmountUntaxed)
		assert.Equal(t, int64(6), first.ShippingTotal)
		assert.Equal(t, int64(36), first.AmountTotal)

		second := f.record(t, "M100_2")
		assert.Equal(t, int64(70), second.AmountUntaxed)
		assert.Equal(t, int64(14), second.ShippingTotal)
		assert.Equal(t, int64(84), second.AmountTotal)
	})

	t.Run("should encrypt role tiers readable only with the owning keys", func(t *testing.T) {
		f := newSplitFixture(t)

		_, err := f.handler.Handle(ctx, newSplitCommand(t, order.Prepaid, 20, testCart()))
		require.NoError(t, err)
		rec := f.record(t, "M100_1")

		plaintext, err := envelope.Decrypt(rec.SellerCipher, f.seller.PrivateKeyPEM())
		require.NoError(t, err)
		var sellerView order.SellerView
		require.NoError(t, json.Unmarshal(plaintext, &sellerView))
		assert.Equal(t, "Jane Doe", sellerView.CustomerName)
		assert.Equal(t, "1 Main St", sellerView.ShippingAddress)
		require.Len(t, sellerView.Lines, 1)
		assert.Equal(t, "SKU-A", sellerView.Lines[0].VariantID)
		assert.Equal(t, int64(30), sellerView.AmountUntaxed)

		plaintext, err = envelope.Decrypt(rec.ShipperCipher, f.shipper.PrivateKeyPEM())
		require.NoError(t, err)
		var shipperView order.ShipperView
		require.NoError(t, json.Unmarshal(plaintext, &shipperView))
		assert.Equal(t, "1 Main St", shipperView.ShippingAddress)
		assert.Equal(t, string(order.Prepaid), shipperView.PaymentMethod)
		assert.Zero(t, shipperView.CodAmount)

		_, err = envelope.Decrypt(rec.SellerCipher, f.shipper.PrivateKeyPEM())
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrDecryption))
	})

	t.Run("should put the cod amount on the shipper tier for cod checkouts", func(t *testing.T) {
		f := newSplitFixture(t)

		_, err := f.handler.Handle(ctx, newSplitCommand(t, order.COD, 20, testCart()))
		require.NoError(t, err)

		rec := f.record(t, "M100_2")
		assert.Equal(t, int64(84), rec.CodAmount)

		plaintext, err := envelope.Decrypt(rec.ShipperCipher, f.shipper.PrivateKeyPEM())
		require.NoError(t, err)
		var shipperView order.ShipperView
		require.NoError(t, json.Unmarshal(plaintext, &shipperView))
		assert.Equal(t, int64(84), shipperView.CodAmount)
	})

	t.Run("should mirror line items for the inventory synchronizer", func(t *testing.T) {
		f := newSplitFixture(t)

		_, err := f.handler.Handle(ctx, newSplitCommand(t, order.Prepaid, 20, testCart()))
		require.NoError(t, err)

		mirrored, err := f.uow.inv.GetOrder(ctx, "M100_1")
		require.NoError(t, err)
		assert.Equal(t, "ACME", mirrored.SellerCode())
		require.Len(t, mirrored.Lines(), 1)
		assert.Equal(t, "SKU-A", mirrored.Lines()[0].SKU)
		assert.Equal(t, int64(1), mirrored.Lines()[0].Quantity)
		assert.Positive(t, f.uow.commits)
	})

	t.Run("should be idempotent across retries of the same checkout", func(t *testing.T) {
		f := newSplitFixture(t)

		cmd := newSplitCommand(t, order.Prepaid, 20, testCart())
		_, err := f.handler.Handle(ctx, cmd)
		require.NoError(t, err)
		outcomes, err := f.handler.Handle(ctx, cmd)
		require.NoError(t, err)
		for _, outcome := range outcomes {
			require.NoError(t, outcome.Err)
			assert.True(t, outcome.Submitted)
		}

		rec := f.record(t, "M100_1")
		assert.Len(t, rec.History, 1)

		mirrored, err := f.uow.inv.GetOrder(ctx, "M100_1")
		require.NoError(t, err)
		require.Len(t, mirrored.Lines(), 1)
	})

	t.Run("should complete the remaining sellers when a partial checkout is retried", func(t *testing.T) {
		f := newSplitFixture(t, "BOLT")

		cmd := newSplitCommand(t, order.Prepaid, 20, testCart())
		outcomes, err := f.handler.Handle(ctx, cmd)
		require.NoError(t, err)
		require.Error(t, outcomes[1].Err)

		approveTestActor(t, f.uow.actors, "BOLT", identity.SellerOrg)

		outcomes, err = f.handler.Handle(ctx, cmd)
		require.NoError(t, err)
		require.Len(t, outcomes, 2)
		for _, outcome := range outcomes {
			require.NoError(t, outcome.Err)
			assert.True(t, outcome.Submitted)
		}

		mirrored, err := f.uow.inv.GetOrder(ctx, "M100_2")
		require.NoError(t, err)
		assert.Equal(t, "BOLT", mirrored.SellerCode())
	})

	t.Run("should report a per-seller failure without failing the whole split", func(t *testing.T) {
		f := newSplitFixture(t, "BOLT")

		outcomes, err := f.handler.Handle(ctx, newSplitCommand(t, order.Prepaid, 20, testCart()))
		require.NoError(t, err)
		require.Len(t, outcomes, 2)
		assert.True(t, outcomes[0].Submitted)
		require.Error(t, outcomes[1].Err)
		assert.True(t, errors.Is(outcomes[1].Err, errs.ErrObjectNotFound))

		_, err = f.uow.inv.GetOrder(ctx, "M100_2")
		require.Error(t, err)
	})

	t.Run("should fail when the shipper is not an approved actor", func(t *testing.T) {
		f := newSplitFixture(t, "SHIPCO")

		_, err := f.handler.Handle(ctx, newSplitCommand(t, order.Prepaid, 20, testCart()))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrObjectNotFound))
	})

	t.Run("should split shipping evenly when the items total is zero", func(t *testing.T) {
		f := newSplitFixture(t)

		freeItems := []commands.CartItem{
			{SKU: "SKU-A", Name: "Sample", SellerCode: "ACME", UnitPrice: 0, Quantity: 1},
			{SKU: "SKU-B", Name: "Sample", SellerCode: "BOLT", UnitPrice: 0, Quantity: 1},
		}
		_, err := f.handler.Handle(ctx, newSplitCommand(t, order.Prepaid, 20, freeItems))
		require.NoError(t, err)

		assert.Equal(t, int64(10), f.record(t, "M100_1").ShippingTotal)
		assert.Equal(t, int64(10), f.record(t, "M100_2").ShippingTotal)
	})
}
