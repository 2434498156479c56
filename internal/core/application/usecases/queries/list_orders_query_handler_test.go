package queries_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderchain/internal/core/application/usecases/queries"
	"orderchain/internal/core/domain/model/identity"
)

func TestListOrdersQueryHandler(t *testing.T) {
	ctx := context.Background()

	f := newQueryFixture(t)
	f.seedOrder(t, "M100_1", "ACME", "SHIPCO")
	f.seedOrder(t, "M100_2", "BOLT", "SHIPCO")
	f.seedOrder(t, "M200_1", "ACME", "HAULIT")
	handler := queries.NewListOrdersQueryHandler(f.ledger)

	list := func(t *testing.T, actor identity.Actor) []string {
		t.Helper()
		query, err := queries.NewListOrdersQuery(actor)
		require.NoError(t, err)
		summaries, err := handler.Handle(ctx, query)
		require.NoError(t, err)

		ids := make([]string, len(summaries))
		for i, summary := range summaries {
			ids[i] = summary.OrderID
		}
		return ids
	}

	t.Run("should list every order for the platform", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"M100_1", "M100_2", "M200_1"}, list(t, f.platform))
	})

	t.Run("should list only the seller's own orders", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"M100_1", "M200_1"}, list(t, mustActor(t, identity.SellerOrg, "ACME")))
	})

	t.Run("should list only the shipper's assigned orders", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"M100_1", "M100_2"}, list(t, mustActor(t, identity.ShipperOrg, "SHIPCO")))
	})

	t.Run("should return an empty list for an actor with no orders", func(t *testing.T) {
		assert.Empty(t, list(t, mustActor(t, identity.SellerOrg, "NEWCO")))
	})

	t.Run("should reject an unconstructed query", func(t *testing.T) {
		var query queries.ListOrdersQuery
		require.ErrorIs(t, query.Validate(), queries.ErrListOrdersQueryIsNotConstructed)
	})
}
