package commerce

import (
	"encoding/json"
	"time"
)

const (
	EventPurchaseOrderReceived = "PurchaseOrderReceived"
	EventListingApproved       = "ListingApproved"
	EventListingRejected       = "ListingRejected"
	EventSaleCompleted         = "SaleCompleted"
	EventOrderStatusChanged    = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "commerce-admin-api"
	ActorID       string          `json:"actor_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // entity id
	Payload       json.RawMessage `json:"payload"`
}

// ---- payloads per event ----

type PurchaseOrderReceivedPayload struct {
	PurchaseOrderID string         `json:"purchase_order_id"`
	SupplierID      string         `json:"supplier_id"`
	Lines           []ReceivedLine `json:"lines"`
}

type ListingModeratedPayload struct {
	ListingID string        `json:"listing_id"`
	SellerID  string        `json:"seller_id"`
	Status    ListingStatus `json:"status"` // ACTIVE | REJECTED
}

type SaleCompletedPayload struct {
	SaleID              string `json:"sale_id"`
	ListingID           string `json:"listing_id"`
	BidID               string `json:"bid_id"`
	BuyerID             string `json:"buyer_id"`
	PaymentMethod       string `json:"payment_method"`
	CommissionCents     int64  `json:"commission_cents"`
	AmountReceivedCents int64  `json:"amount_received_cents"`
}

type OrderStatusChangedPayload struct {
	OrderID        string      `json:"order_id"`
	PreviousStatus OrderStatus `json:"previous_status"`
	NewStatus      OrderStatus `json:"new_status"`
	TrackingNumber string      `json:"tracking_number,omitempty"`
}
