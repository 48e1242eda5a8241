package workflow

import (
	"context"
	"errors"

	"github.com/autoparts-mx/commerce-engine/internal/commerce"
	"github.com/autoparts-mx/commerce-engine/internal/fsm"
	"github.com/autoparts-mx/commerce-engine/internal/gateway"
	"go.uber.org/zap"
)

const entityOrder = "order"

// AdvanceOrder moves a customer order one step along the fulfillment chain,
// or cancels it from any non-terminal state. trackingNumber is optional on
// every transition; once set it is never cleared.
func (e *Engine) AdvanceOrder(ctx context.Context, actor Actor, orderID string, next commerce.OrderStatus, trackingNumber string) (*Result, error) {
	if err := requireAdmin(actor, entityOrder, orderID); err != nil {
		return nil, err
	}

	o, err := e.GW.GetOrder(ctx, orderID)
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, &commerce.Error{Kind: commerce.KindNotFound, Code: commerce.CodeOrderNotFound,
			Entity: entityOrder, ID: orderID}
	}
	if err != nil {
		return nil, gwFailure(entityOrder, orderID, commerce.CodeGatewayFailure, err)
	}

	if _, err := fsm.Transition(o.Status, next, commerce.OrderEdges); err != nil {
		code := commerce.CodeInvalidTransition
		if errors.Is(err, fsm.ErrTerminalState) {
			code = commerce.CodeAlreadyTerminal
		}
		return nil, &commerce.Error{Kind: commerce.KindPreconditionFailed, Code: code,
			Entity: entityOrder, ID: orderID, Status: string(o.Status), Attempted: string(next), Err: err}
	}

	if err := e.GW.SetOrderStatus(ctx, orderID, o.Status, next, trackingNumber); err != nil {
		if errors.Is(err, gateway.ErrStaleStatus) {
			return nil, &commerce.Error{Kind: commerce.KindConflict, Code: commerce.CodeInvalidTransition,
				Entity: entityOrder, ID: orderID, Status: string(o.Status), Attempted: string(next)}
		}
		return nil, gwFailure(entityOrder, orderID, commerce.CodeGatewayFailure, err)
	}

	e.Log.Info("order status advanced",
		zap.String("order_id", orderID), zap.String("from", string(o.Status)),
		zap.String("to", string(next)), zap.String("actor", actor.ID))
	e.publish(commerce.TopicOrderStatusChanged, commerce.EventOrderStatusChanged, orderID, actor.ID,
		commerce.OrderStatusChangedPayload{
			OrderID: orderID, PreviousStatus: o.Status, NewStatus: next, TrackingNumber: trackingNumber,
		})

	return &Result{
		Entity: entityOrder, ID: orderID,
		PreviousStatus: string(o.Status),
		NewStatus:      string(next),
	}, nil
}
