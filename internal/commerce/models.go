package commerce

import "time"

type Product struct {
	ID         string
	SKU        string
	Name       string
	Stock      int
	PriceCents int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type PurchaseOrder struct {
	ID          string
	OrderNumber string
	SupplierID  string
	Status      PurchaseOrderStatus
	Lines       []PurchaseOrderLine
	TotalCents  int64
	OrderedAt   time.Time
	UpdatedAt   time.Time
}

type PurchaseOrderLine struct {
	ID            string
	ProductID     string
	OrderedQty    int
	UnitCostCents int64
}

// ReceivedLine is one line of a receive request: how many units actually
// arrived for a purchase order line.
type ReceivedLine struct {
	LineID string `json:"line_id"`
	Qty    int    `json:"qty"`
}

type Listing struct {
	ID         string
	SellerID   string
	Title      string
	Status     ListingStatus
	PriceCents int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Bid struct {
	ID          string
	ListingID   string
	BuyerID     string
	AmountCents int64
	Status      BidStatus
	Message     string
	CreatedAt   time.Time
}

// Sale is written once when an accepted bid is completed and never mutated.
type Sale struct {
	ID                  string
	ListingID           string
	BidID               string
	BuyerID             string
	PaymentMethod       string
	PaymentReference    string
	CommissionCents     int64
	AmountReceivedCents int64
	CompletedAt         time.Time
}

type Order struct {
	ID              string
	CustomerID      string
	Status          OrderStatus
	TotalCents      int64
	ShippingAddress string
	TrackingNumber  string
	PlacedAt        time.Time
	UpdatedAt       time.Time
}
