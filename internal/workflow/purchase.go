package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/autoparts-mx/commerce-engine/internal/commerce"
	"github.com/autoparts-mx/commerce-engine/internal/fsm"
	"github.com/autoparts-mx/commerce-engine/internal/gateway"
	"go.uber.org/zap"
)

const entityPurchaseOrder = "purchase_order"

// ReceivePurchaseOrder confirms physical arrival of goods and credits stock
// per line. The Pending -> Received transition is committed only after every
// line increment succeeded; on a gateway failure the order stays Pending and
// the call is safely retryable (already-credited lines are never re-applied).
func (e *Engine) ReceivePurchaseOrder(ctx context.Context, actor Actor, orderID string, lines []commerce.ReceivedLine) (*Result, error) {
	if err := requireAdmin(actor, entityPurchaseOrder, orderID); err != nil {
		return nil, err
	}

	po, err := e.GW.GetPurchaseOrder(ctx, orderID)
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, &commerce.Error{Kind: commerce.KindNotFound, Code: commerce.CodePurchaseOrderNotFound,
			Entity: entityPurchaseOrder, ID: orderID}
	}
	if err != nil {
		return nil, gwFailure(entityPurchaseOrder, orderID, commerce.CodeGatewayFailure, err)
	}
	if _, err := fsm.Transition(po.Status, commerce.PurchaseOrderReceived, commerce.PurchaseOrderEdges); err != nil {
		return nil, &commerce.Error{Kind: commerce.KindPreconditionFailed, Code: commerce.CodeAlreadyReceived,
			Entity: entityPurchaseOrder, ID: orderID, Status: string(po.Status),
			Attempted: string(commerce.PurchaseOrderReceived), Err: err}
	}

	byLine := make(map[string]commerce.PurchaseOrderLine, len(po.Lines))
	for _, l := range po.Lines {
		byLine[l.ID] = l
	}
	seen := make(map[string]bool, len(lines))
	for _, rl := range lines {
		l, ok := byLine[rl.LineID]
		switch {
		case !ok:
			return nil, invalidLine(orderID, rl.LineID, "unknown line")
		case seen[rl.LineID]:
			return nil, invalidLine(orderID, rl.LineID, "duplicate line")
		case rl.Qty < 0:
			return nil, invalidLine(orderID, rl.LineID, "negative quantity")
		case rl.Qty > l.OrderedQty:
			// over-receipt is rejected, not clamped: no phantom stock
			return nil, invalidLine(orderID, rl.LineID,
				fmt.Sprintf("received %d exceeds ordered %d", rl.Qty, l.OrderedQty))
		}
		seen[rl.LineID] = true
	}

	// all validation done; mutate from here on
	for _, rl := range lines {
		applied, err := e.GW.ApplyLineReceipt(ctx, orderID, rl.LineID, byLine[rl.LineID].ProductID, rl.Qty)
		if err != nil {
			// order stays Pending; caller retries with the lines that failed
			return nil, gwFailure(entityPurchaseOrder, orderID, commerce.CodeInventoryUpdateFailed, err)
		}
		if !applied {
			e.Log.Info("line already credited, skipping",
				zap.String("purchase_order_id", orderID), zap.String("line_id", rl.LineID))
		}
	}

	if err := e.GW.SetPurchaseOrderStatus(ctx, orderID, commerce.PurchaseOrderPending, commerce.PurchaseOrderReceived); err != nil {
		if errors.Is(err, gateway.ErrStaleStatus) {
			return nil, &commerce.Error{Kind: commerce.KindConflict, Code: commerce.CodeAlreadyReceived,
				Entity: entityPurchaseOrder, ID: orderID, Status: string(commerce.PurchaseOrderPending)}
		}
		return nil, gwFailure(entityPurchaseOrder, orderID, commerce.CodeGatewayFailure, err)
	}

	e.Log.Info("purchase order received",
		zap.String("purchase_order_id", orderID), zap.Int("lines", len(lines)), zap.String("actor", actor.ID))
	e.publish(commerce.TopicPurchaseOrderReceived, commerce.EventPurchaseOrderReceived, orderID, actor.ID,
		commerce.PurchaseOrderReceivedPayload{PurchaseOrderID: orderID, SupplierID: po.SupplierID, Lines: lines})

	return &Result{
		Entity: entityPurchaseOrder, ID: orderID,
		PreviousStatus: string(commerce.PurchaseOrderPending),
		NewStatus:      string(commerce.PurchaseOrderReceived),
	}, nil
}

func invalidLine(orderID, lineID, reason string) error {
	return &commerce.Error{Kind: commerce.KindValidationFailed, Code: commerce.CodeInvalidLine,
		Entity: entityPurchaseOrder, ID: orderID, Err: fmt.Errorf("line %s: %s", lineID, reason)}
}

func gwFailure(entity, id, code string, err error) error {
	return &commerce.Error{Kind: commerce.KindGatewayFailure, Code: code, Entity: entity, ID: id, Err: err}
}
