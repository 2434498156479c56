package queries_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"orderchain/internal/adapters/out/ledger/memledger"
	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/core/domain/services"
	"orderchain/internal/pkg/envelope"
	"orderchain/internal/pkg/errs"
)

type fakeActorRepository struct {
	actors map[string]*identity.ActorIdentity
}

func newFakeActorRepository() *fakeActorRepository {
	return &fakeActorRepository{actors: make(map[string]*identity.ActorIdentity)}
}

func (r *fakeActorRepository) Add(_ context.Context, actor *identity.ActorIdentity) error {
	r.actors[actor.CompanyCode()] = actor
	return nil
}

func (r *fakeActorRepository) Get(_ context.Context, companyCode string) (*identity.ActorIdentity, error) {
	actor, ok := r.actors[companyCode]
	if !ok {
		return nil, errs.NewObjectNotFoundError("companyCode", companyCode)
	}
	return actor, nil
}

func (r *fakeActorRepository) Exists(_ context.Context, companyCode string) (bool, error) {
	_, ok := r.actors[companyCode]
	return ok, nil
}

// queryFixture is a ledger populated with encrypted sub-orders plus the
// actor directory holding the decryption keys.
type queryFixture struct {
	ledger   *memledger.Ledger
	actors   *fakeActorRepository
	platform identity.Actor
}

func newQueryFixture(t *testing.T) *queryFixture {
	t.Helper()

	contract, err := services.NewOrderContract(7*24*time.Hour, 72*time.Hour)
	require.NoError(t, err)

	platform, err := identity.NewActor(identity.PlatformOrg, "PLATFORM")
	require.NoError(t, err)

	f := &queryFixture{
		ledger:   memledger.New(contract),
		actors:   newFakeActorRepository(),
		platform: platform,
	}
	f.approve(t, "ACME", identity.SellerOrg)
	f.approve(t, "BOLT", identity.SellerOrg)
	f.approve(t, "SHIPCO", identity.ShipperOrg)
	f.approve(t, "HAULIT", identity.ShipperOrg)
	return f
}

func (f *queryFixture) approve(t *testing.T, companyCode string, org identity.Org) {
	t.Helper()

	publicKeyPEM, privateKeyPEM, err := envelope.GenerateKeyPair()
	require.NoError(t, err)
	actor, err := identity.NewActorIdentity(companyCode, org, publicKeyPEM, privateKeyPEM, "wallet-"+companyCode)
	require.NoError(t, err)
	require.NoError(t, f.actors.Add(context.Background(), actor))
}

func (f *queryFixture) key(t *testing.T, companyCode string) *identity.ActorIdentity {
	t.Helper()

	actor, err := f.actors.Get(context.Background(), companyCode)
	require.NoError(t, err)
	return actor
}

// seedOrder creates an encrypted sub-order for the seller and shipper pair.
func (f *queryFixture) seedOrder(t *testing.T, orderID, sellerCode, shipperCode string) {
	t.Helper()

	sellerView := order.SellerView{
		CustomerName:    "Jane Doe",
		ShippingAddress: "1 Main St",
		ShippingPhone:   "555-0101",
		Lines: []order.Line{
			{ProductName: "Kettle", VariantID: "SKU-A", Quantity: 1, UnitPrice: 30, Subtotal: 30},
		},
		AmountUntaxed: 30,
	}
	shipperView := order.ShipperView{
		ShippingAddress: "1 Main St",
		ShippingPhone:   "555-0101",
		PaymentMethod:   string(order.Prepaid),
	}

	sellerPlain, err := json.Marshal(sellerView)
	require.NoError(t, err)
	sellerCipher, err := envelope.Encrypt(sellerPlain, f.key(t, sellerCode).PublicKeyPEM())
	require.NoError(t, err)

	shipperPlain, err := json.Marshal(shipperView)
	require.NoError(t, err)
	shipperCipher, err := envelope.Encrypt(shipperPlain, f.key(t, shipperCode).PublicKeyPEM())
	require.NoError(t, err)

	rec := order.Record{
		OrderID:       orderID,
		SellerOrgID:   sellerCode,
		ShipperOrgID:  shipperCode,
		PaymentMethod: string(order.Prepaid),
		AmountUntaxed: 30,
		ShippingTotal: 6,
		AmountTotal:   36,
		PublicData:    `{"itemCount":1}`,
		SellerCipher:  sellerCipher,
		ShipperCipher: shipperCipher,
	}
	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	conn, err := f.ledger.Connect(context.Background(), f.platform)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	_, err = conn.Submit(context.Background(), string(order.ActionCreateOrder), string(raw))
	require.NoError(t, err)
}

func mustActor(t *testing.T, org identity.Org, companyCode string) identity.Actor {
	t.Helper()

	actor, err := identity.NewActor(org, companyCode)
	require.NoError(t, err)
	return actor
}

func mustID(t *testing.T, master string, seq int) order.ID {
	t.Helper()

	id, err := order.NewID(master, seq)
	require.NoError(t, err)
	return id
}
