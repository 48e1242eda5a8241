package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/autoparts-mx/commerce-engine/internal/commerce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceivePurchaseOrder(t *testing.T) {
	ctx := context.Background()

	lineA := commerce.PurchaseOrderLine{ID: "line-a", ProductID: "prod-a", OrderedQty: 5, UnitCostCents: 1000}
	lineB := commerce.PurchaseOrderLine{ID: "line-b", ProductID: "prod-b", OrderedQty: 3, UnitCostCents: 2500}

	t.Run("Success - Full Receipt", func(t *testing.T) {
		gw := newFakeGateway()
		seedPurchaseOrder(gw, "po-1", lineA, lineB)
		eng := newTestEngine(gw)

		res, err := eng.ReceivePurchaseOrder(ctx, admin, "po-1", []commerce.ReceivedLine{
			{LineID: "line-a", Qty: 5},
			{LineID: "line-b", Qty: 3},
		})
		require.NoError(t, err)
		assert.Equal(t, string(commerce.PurchaseOrderPending), res.PreviousStatus)
		assert.Equal(t, string(commerce.PurchaseOrderReceived), res.NewStatus)
		assert.Equal(t, commerce.PurchaseOrderReceived, gw.pos["po-1"].Status)
		assert.Equal(t, 15, gw.products["prod-a"].Stock)
		assert.Equal(t, 13, gw.products["prod-b"].Stock)
	})

	t.Run("Success - Short Receipt Allowed", func(t *testing.T) {
		gw := newFakeGateway()
		seedPurchaseOrder(gw, "po-1", lineA)
		eng := newTestEngine(gw)

		_, err := eng.ReceivePurchaseOrder(ctx, admin, "po-1", []commerce.ReceivedLine{{LineID: "line-a", Qty: 2}})
		require.NoError(t, err)
		assert.Equal(t, 12, gw.products["prod-a"].Stock)
	})

	t.Run("Idempotence - Second Receive Fails Without Double Credit", func(t *testing.T) {
		gw := newFakeGateway()
		seedPurchaseOrder(gw, "po-1", lineA)
		eng := newTestEngine(gw)

		lines := []commerce.ReceivedLine{{LineID: "line-a", Qty: 5}}
		_, err := eng.ReceivePurchaseOrder(ctx, admin, "po-1", lines)
		require.NoError(t, err)

		_, err = eng.ReceivePurchaseOrder(ctx, admin, "po-1", lines)
		require.Error(t, err)
		assert.Equal(t, commerce.CodeAlreadyReceived, commerce.CodeOf(err))
		assert.True(t, commerce.IsKind(err, commerce.KindPreconditionFailed))
		assert.Equal(t, 15, gw.products["prod-a"].Stock, "stock must be credited exactly once")
	})

	t.Run("Validation Failures - Nothing Mutated", func(t *testing.T) {
		cases := []struct {
			name  string
			lines []commerce.ReceivedLine
		}{
			{"unknown line", []commerce.ReceivedLine{{LineID: "line-x", Qty: 1}}},
			{"negative qty", []commerce.ReceivedLine{{LineID: "line-a", Qty: -1}}},
			{"over receipt", []commerce.ReceivedLine{{LineID: "line-a", Qty: 6}}},
			{"duplicate line", []commerce.ReceivedLine{{LineID: "line-a", Qty: 2}, {LineID: "line-a", Qty: 2}}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				gw := newFakeGateway()
				seedPurchaseOrder(gw, "po-1", lineA)
				eng := newTestEngine(gw)

				_, err := eng.ReceivePurchaseOrder(ctx, admin, "po-1", tc.lines)
				require.Error(t, err)
				assert.Equal(t, commerce.CodeInvalidLine, commerce.CodeOf(err))
				assert.True(t, commerce.IsKind(err, commerce.KindValidationFailed))
				assert.Equal(t, commerce.PurchaseOrderPending, gw.pos["po-1"].Status)
				assert.Equal(t, 10, gw.products["prod-a"].Stock)
			})
		}
	})

	t.Run("Partial Failure - Order Stays Pending, Retry Does Not Double Credit", func(t *testing.T) {
		gw := newFakeGateway()
		seedPurchaseOrder(gw, "po-1", lineA, lineB)
		gw.stockErr["prod-b"] = errors.New("connection reset")
		eng := newTestEngine(gw)

		_, err := eng.ReceivePurchaseOrder(ctx, admin, "po-1", []commerce.ReceivedLine{
			{LineID: "line-a", Qty: 5},
			{LineID: "line-b", Qty: 3},
		})
		require.Error(t, err)
		assert.Equal(t, commerce.CodeInventoryUpdateFailed, commerce.CodeOf(err))
		assert.True(t, commerce.IsKind(err, commerce.KindGatewayFailure))
		assert.Equal(t, commerce.PurchaseOrderPending, gw.pos["po-1"].Status)
		assert.Equal(t, 15, gw.products["prod-a"].Stock, "line A applied before the failure")
		assert.Equal(t, 10, gw.products["prod-b"].Stock, "line B untouched")

		// gateway recovers; resubmitting only the failed line completes the order
		delete(gw.stockErr, "prod-b")
		res, err := eng.ReceivePurchaseOrder(ctx, admin, "po-1", []commerce.ReceivedLine{{LineID: "line-b", Qty: 3}})
		require.NoError(t, err)
		assert.Equal(t, string(commerce.PurchaseOrderReceived), res.NewStatus)
		assert.Equal(t, 15, gw.products["prod-a"].Stock, "line A not re-credited")
		assert.Equal(t, 13, gw.products["prod-b"].Stock)
	})

	t.Run("Partial Failure - Retry With All Lines Skips Credited Ones", func(t *testing.T) {
		gw := newFakeGateway()
		seedPurchaseOrder(gw, "po-1", lineA, lineB)
		gw.stockErr["prod-b"] = errors.New("timeout")
		eng := newTestEngine(gw)

		all := []commerce.ReceivedLine{{LineID: "line-a", Qty: 5}, {LineID: "line-b", Qty: 3}}
		_, err := eng.ReceivePurchaseOrder(ctx, admin, "po-1", all)
		require.Error(t, err)

		delete(gw.stockErr, "prod-b")
		_, err = eng.ReceivePurchaseOrder(ctx, admin, "po-1", all)
		require.NoError(t, err)
		assert.Equal(t, 15, gw.products["prod-a"].Stock)
		assert.Equal(t, 13, gw.products["prod-b"].Stock)
	})

	t.Run("Order Not Found", func(t *testing.T) {
		eng := newTestEngine(newFakeGateway())
		_, err := eng.ReceivePurchaseOrder(ctx, admin, "po-missing", []commerce.ReceivedLine{{LineID: "l", Qty: 1}})
		require.Error(t, err)
		assert.Equal(t, commerce.CodePurchaseOrderNotFound, commerce.CodeOf(err))
		assert.True(t, commerce.IsKind(err, commerce.KindNotFound))
	})

	t.Run("Requires Admin", func(t *testing.T) {
		gw := newFakeGateway()
		seedPurchaseOrder(gw, "po-1", lineA)
		eng := newTestEngine(gw)

		_, err := eng.ReceivePurchaseOrder(ctx, Actor{ID: "u-1", Role: "CUSTOMER"}, "po-1",
			[]commerce.ReceivedLine{{LineID: "line-a", Qty: 1}})
		require.Error(t, err)
		assert.Equal(t, commerce.CodeNotAuthorized, commerce.CodeOf(err))
		assert.Equal(t, 10, gw.products["prod-a"].Stock)
	})
}
