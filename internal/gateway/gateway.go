// Package gateway defines the port to the commerce platform's data store.
// The workflow engine owns no storage of its own; every read and write goes
// through this interface, and each call is atomic on a single entity only.
package gateway

import (
	"context"
	"errors"

	"github.com/autoparts-mx/commerce-engine/internal/commerce"
)

var (
	// ErrNotFound means the entity does not exist at the gateway.
	ErrNotFound = errors.New("entity not found")
	// ErrStaleStatus means a guarded status write lost to another writer:
	// the row's status no longer matched the expected pre-state.
	ErrStaleStatus = errors.New("status changed by another writer")
	// ErrSaleExists means a sale was already recorded for the listing.
	ErrSaleExists = errors.New("sale already recorded for listing")
)

type Gateway interface {
	GetPurchaseOrder(ctx context.Context, id string) (*commerce.PurchaseOrder, error)
	// SetPurchaseOrderStatus is a compare-and-swap keyed on the expected
	// current status; it fails with ErrStaleStatus if another admin won.
	SetPurchaseOrderStatus(ctx context.Context, id string, expected, next commerce.PurchaseOrderStatus) error
	// ApplyLineReceipt increments product stock for one received line,
	// at most once per (order, line). applied=false means the line was
	// already credited by an earlier call and nothing changed.
	ApplyLineReceipt(ctx context.Context, orderID, lineID, productID string, qty int) (applied bool, err error)

	GetListing(ctx context.Context, id string) (*commerce.Listing, error)
	SetListingStatus(ctx context.Context, id string, expected, next commerce.ListingStatus) error

	GetBid(ctx context.Context, id string) (*commerce.Bid, error)
	GetBidsForListing(ctx context.Context, listingID string) ([]commerce.Bid, error)
	CreateSale(ctx context.Context, sale *commerce.Sale) error
	// GetSaleForListing returns the sale recorded for the listing, or
	// ErrNotFound when none exists yet.
	GetSaleForListing(ctx context.Context, listingID string) (*commerce.Sale, error)

	GetOrder(ctx context.Context, id string) (*commerce.Order, error)
	// SetOrderStatus keeps the tracking number monotonic: an empty value
	// never clears one that was set before.
	SetOrderStatus(ctx context.Context, id string, expected, next commerce.OrderStatus, trackingNumber string) error
}
