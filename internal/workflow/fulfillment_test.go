package workflow

import (
	"context"
	"testing"

	"github.com/autoparts-mx/commerce-engine/internal/commerce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(gw *fakeGateway, id string, status commerce.OrderStatus) {
	gw.orders[id] = &commerce.Order{ID: id, CustomerID: "cust-1", Status: status, TotalCents: 35000}
}

func TestAdvanceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Forward Chain", func(t *testing.T) {
		gw := newFakeGateway()
		seedOrder(gw, "ord-1", commerce.OrderPending)
		eng := newTestEngine(gw)

		steps := []commerce.OrderStatus{
			commerce.OrderPacking, commerce.OrderShipped, commerce.OrderInTransit, commerce.OrderDelivered,
		}
		for _, next := range steps {
			res, err := eng.AdvanceOrder(ctx, admin, "ord-1", next, "")
			require.NoError(t, err, "advance to %s", next)
			assert.Equal(t, string(next), res.NewStatus)
		}
		assert.Equal(t, commerce.OrderDelivered, gw.orders["ord-1"].Status)
	})

	t.Run("Backwards Move Is Invalid", func(t *testing.T) {
		gw := newFakeGateway()
		seedOrder(gw, "ord-1", commerce.OrderShipped)
		eng := newTestEngine(gw)

		_, err := eng.AdvanceOrder(ctx, admin, "ord-1", commerce.OrderPending, "")
		require.Error(t, err)
		assert.Equal(t, commerce.CodeInvalidTransition, commerce.CodeOf(err))
		assert.Equal(t, commerce.OrderShipped, gw.orders["ord-1"].Status)
	})

	t.Run("Skipping A Step Is Invalid", func(t *testing.T) {
		gw := newFakeGateway()
		seedOrder(gw, "ord-1", commerce.OrderPending)
		eng := newTestEngine(gw)

		_, err := eng.AdvanceOrder(ctx, admin, "ord-1", commerce.OrderShipped, "")
		require.Error(t, err)
		assert.Equal(t, commerce.CodeInvalidTransition, commerce.CodeOf(err))
	})

	t.Run("Cancel From Any Non-Terminal State", func(t *testing.T) {
		for _, from := range []commerce.OrderStatus{
			commerce.OrderPending, commerce.OrderPacking, commerce.OrderShipped, commerce.OrderInTransit,
		} {
			gw := newFakeGateway()
			seedOrder(gw, "ord-1", from)
			eng := newTestEngine(gw)

			res, err := eng.AdvanceOrder(ctx, admin, "ord-1", commerce.OrderCancelled, "")
			require.NoError(t, err, "cancel from %s", from)
			assert.Equal(t, string(commerce.OrderCancelled), res.NewStatus)
		}
	})

	t.Run("Terminal States Reject Everything", func(t *testing.T) {
		for _, terminal := range []commerce.OrderStatus{commerce.OrderDelivered, commerce.OrderCancelled} {
			for _, next := range []commerce.OrderStatus{
				commerce.OrderPending, commerce.OrderPacking, commerce.OrderCancelled, commerce.OrderDelivered,
			} {
				gw := newFakeGateway()
				seedOrder(gw, "ord-1", terminal)
				eng := newTestEngine(gw)

				_, err := eng.AdvanceOrder(ctx, admin, "ord-1", next, "")
				require.Error(t, err, "%s -> %s", terminal, next)
				assert.Equal(t, commerce.CodeAlreadyTerminal, commerce.CodeOf(err))
			}
		}
	})

	t.Run("Tracking Number Is Monotonic", func(t *testing.T) {
		gw := newFakeGateway()
		seedOrder(gw, "ord-1", commerce.OrderPacking)
		eng := newTestEngine(gw)

		_, err := eng.AdvanceOrder(ctx, admin, "ord-1", commerce.OrderShipped, "GUIA-123")
		require.NoError(t, err)
		assert.Equal(t, "GUIA-123", gw.orders["ord-1"].TrackingNumber)

		// later transition without a tracking number must not clear it
		_, err = eng.AdvanceOrder(ctx, admin, "ord-1", commerce.OrderInTransit, "")
		require.NoError(t, err)
		assert.Equal(t, "GUIA-123", gw.orders["ord-1"].TrackingNumber)

		// a new non-empty value wins
		_, err = eng.AdvanceOrder(ctx, admin, "ord-1", commerce.OrderDelivered, "GUIA-456")
		require.NoError(t, err)
		assert.Equal(t, "GUIA-456", gw.orders["ord-1"].TrackingNumber)
	})

	t.Run("Order Not Found", func(t *testing.T) {
		eng := newTestEngine(newFakeGateway())
		_, err := eng.AdvanceOrder(ctx, admin, "ord-missing", commerce.OrderPacking, "")
		require.Error(t, err)
		assert.Equal(t, commerce.CodeOrderNotFound, commerce.CodeOf(err))
	})

	t.Run("Requires Admin", func(t *testing.T) {
		gw := newFakeGateway()
		seedOrder(gw, "ord-1", commerce.OrderPending)
		eng := newTestEngine(gw)

		_, err := eng.AdvanceOrder(ctx, Actor{ID: "cust-1", Role: "CUSTOMER"}, "ord-1", commerce.OrderPacking, "")
		require.Error(t, err)
		assert.Equal(t, commerce.CodeNotAuthorized, commerce.CodeOf(err))
	})
}
