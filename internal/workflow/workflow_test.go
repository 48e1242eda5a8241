package workflow

import (
	"context"
	"fmt"

	"github.com/autoparts-mx/commerce-engine/internal/commerce"
	"github.com/autoparts-mx/commerce-engine/internal/gateway"
	kafkago "github.com/segmentio/kafka-go"
)

var admin = Actor{ID: "admin-1", Role: RoleAdmin}

// fakeGateway is an in-memory gateway with the same guarded-write semantics
// as the real store, plus injectable per-product failures.
type fakeGateway struct {
	pos      map[string]*commerce.PurchaseOrder
	products map[string]*commerce.Product
	receipts map[string]int // "orderID/lineID" -> qty credited
	listings map[string]*commerce.Listing
	bids     map[string]*commerce.Bid
	sales    map[string]*commerce.Sale // keyed by listing id
	orders   map[string]*commerce.Order
	stockErr map[string]error // productID -> injected failure
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		pos:      map[string]*commerce.PurchaseOrder{},
		products: map[string]*commerce.Product{},
		receipts: map[string]int{},
		listings: map[string]*commerce.Listing{},
		bids:     map[string]*commerce.Bid{},
		sales:    map[string]*commerce.Sale{},
		orders:   map[string]*commerce.Order{},
		stockErr: map[string]error{},
	}
}

var _ gateway.Gateway = (*fakeGateway)(nil)

func (f *fakeGateway) GetPurchaseOrder(_ context.Context, id string) (*commerce.PurchaseOrder, error) {
	po, ok := f.pos[id]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := *po
	cp.Lines = append([]commerce.PurchaseOrderLine(nil), po.Lines...)
	return &cp, nil
}

func (f *fakeGateway) SetPurchaseOrderStatus(_ context.Context, id string, expected, next commerce.PurchaseOrderStatus) error {
	po, ok := f.pos[id]
	if !ok {
		return gateway.ErrNotFound
	}
	if po.Status != expected {
		return gateway.ErrStaleStatus
	}
	po.Status = next
	return nil
}

func (f *fakeGateway) ApplyLineReceipt(_ context.Context, orderID, lineID, productID string, qty int) (bool, error) {
	if err := f.stockErr[productID]; err != nil {
		return false, err
	}
	key := orderID + "/" + lineID
	if _, done := f.receipts[key]; done {
		return false, nil
	}
	p, ok := f.products[productID]
	if !ok {
		return false, gateway.ErrNotFound
	}
	f.receipts[key] = qty
	p.Stock += qty
	return true, nil
}

func (f *fakeGateway) GetListing(_ context.Context, id string) (*commerce.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeGateway) SetListingStatus(_ context.Context, id string, expected, next commerce.ListingStatus) error {
	l, ok := f.listings[id]
	if !ok {
		return gateway.ErrNotFound
	}
	if l.Status != expected {
		return gateway.ErrStaleStatus
	}
	l.Status = next
	return nil
}

func (f *fakeGateway) GetBid(_ context.Context, id string) (*commerce.Bid, error) {
	b, ok := f.bids[id]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeGateway) GetBidsForListing(_ context.Context, listingID string) ([]commerce.Bid, error) {
	var out []commerce.Bid
	for _, b := range f.bids {
		if b.ListingID == listingID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeGateway) CreateSale(_ context.Context, sale *commerce.Sale) error {
	if _, exists := f.sales[sale.ListingID]; exists {
		return gateway.ErrSaleExists
	}
	cp := *sale
	f.sales[sale.ListingID] = &cp
	return nil
}

func (f *fakeGateway) GetSaleForListing(_ context.Context, listingID string) (*commerce.Sale, error) {
	s, ok := f.sales[listingID]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeGateway) GetOrder(_ context.Context, id string) (*commerce.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeGateway) SetOrderStatus(_ context.Context, id string, expected, next commerce.OrderStatus, trackingNumber string) error {
	o, ok := f.orders[id]
	if !ok {
		return gateway.ErrNotFound
	}
	if o.Status != expected {
		return gateway.ErrStaleStatus
	}
	o.Status = next
	if trackingNumber != "" {
		o.TrackingNumber = trackingNumber
	}
	return nil
}

type published struct {
	topic string
	key   string
	value []byte
}

type capturePublisher struct{ msgs []published }

func (c *capturePublisher) Publish(topic string, key, value []byte, _ ...kafkago.Header) {
	c.msgs = append(c.msgs, published{topic: topic, key: string(key), value: value})
}

func newTestEngine(gw gateway.Gateway) *Engine {
	return New(gw, nil, nil, "test")
}

func seedPurchaseOrder(gw *fakeGateway, id string, lines ...commerce.PurchaseOrderLine) {
	gw.pos[id] = &commerce.PurchaseOrder{
		ID: id, OrderNumber: "OC-" + id, SupplierID: "sup-1",
		Status: commerce.PurchaseOrderPending, Lines: lines,
	}
	for i, l := range lines {
		if _, ok := gw.products[l.ProductID]; !ok {
			gw.products[l.ProductID] = &commerce.Product{
				ID: l.ProductID, SKU: fmt.Sprintf("SKU-%d", i), Stock: 10,
			}
		}
	}
}
