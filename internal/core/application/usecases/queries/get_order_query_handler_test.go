package queries_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderchain/internal/core/application/usecases/queries"
	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/pkg/errs"
)

func TestGetOrderQueryHandler(t *testing.T) {
	ctx := context.Background()

	f := newQueryFixture(t)
	f.seedOrder(t, "M100_1", "ACME", "SHIPCO")
	handler := queries.NewGetOrderQueryHandler(f.ledger)

	fetch := func(t *testing.T, actor identity.Actor) (order.Record, error) {
		t.Helper()
		query, err := queries.NewGetOrderQuery(mustID(t, "M100", 1), actor)
		require.NoError(t, err)
		return handler.Handle(ctx, query)
	}

	t.Run("should return the full record to the platform", func(t *testing.T) {
		rec, err := fetch(t, f.platform)
		require.NoError(t, err)
		assert.Equal(t, "M100_1", rec.OrderID)
		assert.Equal(t, order.Created.String(), rec.Status)
		assert.NotEmpty(t, rec.SellerCipher)
		assert.NotEmpty(t, rec.ShipperCipher)
	})

	t.Run("should return the record to the owning seller", func(t *testing.T) {
		rec, err := fetch(t, mustActor(t, identity.SellerOrg, "ACME"))
		require.NoError(t, err)
		assert.Equal(t, "ACME", rec.SellerOrgID)
	})

	t.Run("should return the record to the assigned shipper", func(t *testing.T) {
		rec, err := fetch(t, mustActor(t, identity.ShipperOrg, "SHIPCO"))
		require.NoError(t, err)
		assert.Equal(t, "SHIPCO", rec.ShipperOrgID)
	})

	t.Run("should hide the record from an unrelated seller", func(t *testing.T) {
		_, err := fetch(t, mustActor(t, identity.SellerOrg, "BOLT"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrAuthorization))
	})

	t.Run("should hide the record from an unrelated shipper", func(t *testing.T) {
		_, err := fetch(t, mustActor(t, identity.ShipperOrg, "HAULIT"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrAuthorization))
	})

	t.Run("should report an unknown order as not found", func(t *testing.T) {
		query, err := queries.NewGetOrderQuery(mustID(t, "GHOST", 1), f.platform)
		require.NoError(t, err)
		_, err = handler.Handle(ctx, query)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrObjectNotFound))
	})

	t.Run("should reject an unconstructed query", func(t *testing.T) {
		var query queries.GetOrderQuery
		require.ErrorIs(t, query.Validate(), queries.ErrGetOrderQueryIsNotConstructed)
	})
}
