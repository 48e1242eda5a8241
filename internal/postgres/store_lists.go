package postgres

import (
	"context"

	"github.com/autoparts-mx/commerce-engine/internal/commerce"
)

// List reads backing the admin console's table views. Lines and bids are
// fetched per entity on demand, not here.

func (s *Store) ListPurchaseOrders(ctx context.Context) ([]commerce.PurchaseOrder, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, order_number, supplier_id, status, total_cents, ordered_at, updated_at
		FROM purchase_orders ORDER BY ordered_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []commerce.PurchaseOrder
	for rows.Next() {
		var po commerce.PurchaseOrder
		if err := rows.Scan(&po.ID, &po.OrderNumber, &po.SupplierID, &po.Status, &po.TotalCents, &po.OrderedAt, &po.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, po)
	}
	return out, rows.Err()
}

// ListListings filters by status when one is given; the console tabs
// between ACTIVE and PENDING.
func (s *Store) ListListings(ctx context.Context, status commerce.ListingStatus) ([]commerce.Listing, error) {
	q := `SELECT id, seller_id, title, status, price_cents, created_at, updated_at
	      FROM listings`
	args := []any{}
	if status != "" {
		q += ` WHERE status=$1`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []commerce.Listing
	for rows.Next() {
		var l commerce.Listing
		if err := rows.Scan(&l.ID, &l.SellerID, &l.Title, &l.Status, &l.PriceCents, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) ListOrders(ctx context.Context, status commerce.OrderStatus) ([]commerce.Order, error) {
	q := `SELECT id, customer_id, status, total_cents, shipping_address, COALESCE(tracking_number,''), placed_at, updated_at
	      FROM orders`
	args := []any{}
	if status != "" {
		q += ` WHERE status=$1`
		args = append(args, status)
	}
	q += ` ORDER BY placed_at DESC`

	rows, err := s.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []commerce.Order
	for rows.Next() {
		var o commerce.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.TotalCents, &o.ShippingAddress, &o.TrackingNumber, &o.PlacedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
