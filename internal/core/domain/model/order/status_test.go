package order_test

import (
	"testing"

	"orderchain/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	t.Run("should round-trip every defined status through its wire form", func(t *testing.T) {
		statuses := []order.Status{
			order.Created, order.Paid, order.Shipped, order.Delivered,
			order.DeliveredCodPending, order.CodRemitted, order.Settled,
			order.Cancelled, order.ReturnRequested, order.ReturnInTransit, order.Returned,
		}
		for _, s := range statuses {
			require.NoError(t, s.Validate())
			parsed, err := order.StatusFromString(s.String())
			require.NoError(t, err, "status %s", s)
			assert.Equal(t, s, parsed)
		}
	})

	t.Run("should reject unknown wire values", func(t *testing.T) {
		_, err := order.StatusFromString("SHIPPING")
		require.Error(t, err)

		_, err = order.StatusFromString("UNKNOWN")
		require.Error(t, err)
	})

	t.Run("should fail validation for the zero value", func(t *testing.T) {
		require.Error(t, order.Unknown.Validate())
	})
}

func TestPaymentMethod(t *testing.T) {
	t.Run("should accept the two defined methods", func(t *testing.T) {
		require.NoError(t, order.Prepaid.Validate())
		require.NoError(t, order.COD.Validate())
	})

	t.Run("should reject anything else", func(t *testing.T) {
		require.Error(t, order.PaymentMethod("").Validate())
		require.Error(t, order.PaymentMethod("CARD").Validate())
	})
}

func TestCodStatus(t *testing.T) {
	t.Run("should accept the defined remittance states", func(t *testing.T) {
		require.NoError(t, order.CodNone.Validate())
		require.NoError(t, order.CodPendingRemittance.Validate())
		require.NoError(t, order.CodRemittedStatus.Validate())
	})

	t.Run("should reject unknown values", func(t *testing.T) {
		require.Error(t, order.CodStatus("COLLECTED").Validate())
	})
}
