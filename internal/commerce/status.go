package commerce

import "github.com/autoparts-mx/commerce-engine/internal/fsm"

type PurchaseOrderStatus string

const (
	PurchaseOrderPending  PurchaseOrderStatus = "PENDING"
	PurchaseOrderReceived PurchaseOrderStatus = "RECEIVED"
)

// A purchase order is received exactly once.
var PurchaseOrderEdges = fsm.Edges[PurchaseOrderStatus]{
	PurchaseOrderPending:  {PurchaseOrderReceived: true},
	PurchaseOrderReceived: {},
}

type ListingStatus string

const (
	ListingPending  ListingStatus = "PENDING"
	ListingActive   ListingStatus = "ACTIVE"
	ListingRejected ListingStatus = "REJECTED"
	ListingSold     ListingStatus = "SOLD"
)

var ListingEdges = fsm.Edges[ListingStatus]{
	ListingPending:  {ListingActive: true, ListingRejected: true},
	ListingActive:   {ListingSold: true},
	ListingRejected: {},
	ListingSold:     {},
}

type BidStatus string

const (
	BidPending  BidStatus = "PENDING"
	BidAccepted BidStatus = "ACCEPTED"
	BidRejected BidStatus = "REJECTED"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPacking   OrderStatus = "PACKING"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderInTransit OrderStatus = "IN_TRANSIT"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Fulfillment moves forward one step at a time; cancellation is reachable
// from any non-terminal state.
var OrderEdges = fsm.Edges[OrderStatus]{
	OrderPending:   {OrderPacking: true, OrderCancelled: true},
	OrderPacking:   {OrderShipped: true, OrderCancelled: true},
	OrderShipped:   {OrderInTransit: true, OrderCancelled: true},
	OrderInTransit: {OrderDelivered: true, OrderCancelled: true},
	OrderDelivered: {},
	OrderCancelled: {},
}

// ParseOrderStatus validates a status value coming from the outside.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderPending, OrderPacking, OrderShipped, OrderInTransit, OrderDelivered, OrderCancelled:
		return OrderStatus(s), true
	}
	return "", false
}
