package postgres

import (
	"context"
	"errors"

	"github.com/autoparts-mx/commerce-engine/internal/commerce"
	"github.com/autoparts-mx/commerce-engine/internal/gateway"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements gateway.Gateway on Postgres. All status writes are
// guarded by the expected pre-state so a racing admin loses cleanly
// instead of double-applying a side effect.
type Store struct{ DB *pgxpool.Pool }

var _ gateway.Gateway = (*Store)(nil)

func (s *Store) GetPurchaseOrder(ctx context.Context, id string) (*commerce.PurchaseOrder, error) {
	var po commerce.PurchaseOrder
	err := s.DB.QueryRow(ctx, `
		SELECT id, order_number, supplier_id, status, total_cents, ordered_at, updated_at
		FROM purchase_orders WHERE id=$1`, id).
		Scan(&po.ID, &po.OrderNumber, &po.SupplierID, &po.Status, &po.TotalCents, &po.OrderedAt, &po.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, gateway.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.Query(ctx, `
		SELECT id, product_id, ordered_qty, unit_cost_cents
		FROM purchase_order_lines WHERE purchase_order_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l commerce.PurchaseOrderLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.OrderedQty, &l.UnitCostCents); err != nil {
			return nil, err
		}
		po.Lines = append(po.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &po, nil
}

func (s *Store) SetPurchaseOrderStatus(ctx context.Context, id string, expected, next commerce.PurchaseOrderStatus) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE purchase_orders SET status=$3, updated_at=now()
		WHERE id=$1 AND status=$2`, id, expected, next)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return s.staleOrMissing(ctx, `SELECT 1 FROM purchase_orders WHERE id=$1`, id)
	}
	return nil
}

// ApplyLineReceipt: record the receipt row first (conflict-guarded), then
// credit stock, in one transaction. A retry of an already-credited line
// hits the conflict and changes nothing.
func (s *Store) ApplyLineReceipt(ctx context.Context, orderID, lineID, productID string, qty int) (bool, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		INSERT INTO purchase_order_receipts(purchase_order_id, line_id, qty)
		VALUES ($1,$2,$3)
		ON CONFLICT (purchase_order_id, line_id) DO NOTHING`, orderID, lineID, qty)
	if err != nil {
		return false, err
	}
	if ct.RowsAffected() == 0 {
		return false, nil // already credited
	}

	var stock int
	if err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1 FOR UPDATE`, productID).Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, gateway.ErrNotFound
		}
		return false, err
	}
	if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock + $2, updated_at=now() WHERE id=$1`, productID, qty); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) GetListing(ctx context.Context, id string) (*commerce.Listing, error) {
	var l commerce.Listing
	err := s.DB.QueryRow(ctx, `
		SELECT id, seller_id, title, status, price_cents, created_at, updated_at
		FROM listings WHERE id=$1`, id).
		Scan(&l.ID, &l.SellerID, &l.Title, &l.Status, &l.PriceCents, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, gateway.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) SetListingStatus(ctx context.Context, id string, expected, next commerce.ListingStatus) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE listings SET status=$3, updated_at=now()
		WHERE id=$1 AND status=$2`, id, expected, next)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return s.staleOrMissing(ctx, `SELECT 1 FROM listings WHERE id=$1`, id)
	}
	return nil
}

func (s *Store) GetBid(ctx context.Context, id string) (*commerce.Bid, error) {
	var b commerce.Bid
	err := s.DB.QueryRow(ctx, `
		SELECT id, listing_id, buyer_id, amount_cents, status, COALESCE(message,''), created_at
		FROM bids WHERE id=$1`, id).
		Scan(&b.ID, &b.ListingID, &b.BuyerID, &b.AmountCents, &b.Status, &b.Message, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, gateway.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) GetBidsForListing(ctx context.Context, listingID string) ([]commerce.Bid, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, listing_id, buyer_id, amount_cents, status, COALESCE(message,''), created_at
		FROM bids WHERE listing_id=$1 ORDER BY amount_cents DESC, created_at`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []commerce.Bid
	for rows.Next() {
		var b commerce.Bid
		if err := rows.Scan(&b.ID, &b.ListingID, &b.BuyerID, &b.AmountCents, &b.Status, &b.Message, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CreateSale is write-once per listing via the unique constraint.
func (s *Store) CreateSale(ctx context.Context, sale *commerce.Sale) error {
	ct, err := s.DB.Exec(ctx, `
		INSERT INTO sales(id, listing_id, bid_id, buyer_id, payment_method, payment_reference,
		                  commission_cents, amount_received_cents, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (listing_id) DO NOTHING`,
		sale.ID, sale.ListingID, sale.BidID, sale.BuyerID, sale.PaymentMethod, sale.PaymentReference,
		sale.CommissionCents, sale.AmountReceivedCents, sale.CompletedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return gateway.ErrSaleExists
	}
	return nil
}

func (s *Store) GetSaleForListing(ctx context.Context, listingID string) (*commerce.Sale, error) {
	var sale commerce.Sale
	err := s.DB.QueryRow(ctx, `
		SELECT id, listing_id, bid_id, buyer_id, payment_method, payment_reference,
		       commission_cents, amount_received_cents, completed_at
		FROM sales WHERE listing_id=$1`, listingID).
		Scan(&sale.ID, &sale.ListingID, &sale.BidID, &sale.BuyerID, &sale.PaymentMethod, &sale.PaymentReference,
			&sale.CommissionCents, &sale.AmountReceivedCents, &sale.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, gateway.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*commerce.Order, error) {
	var o commerce.Order
	err := s.DB.QueryRow(ctx, `
		SELECT id, customer_id, status, total_cents, shipping_address, COALESCE(tracking_number,''), placed_at, updated_at
		FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.CustomerID, &o.Status, &o.TotalCents, &o.ShippingAddress, &o.TrackingNumber, &o.PlacedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, gateway.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) SetOrderStatus(ctx context.Context, id string, expected, next commerce.OrderStatus, trackingNumber string) error {
	// NULLIF keeps the tracking number monotonic: empty input never clears it.
	ct, err := s.DB.Exec(ctx, `
		UPDATE orders SET status=$3,
		       tracking_number = COALESCE(NULLIF($4,''), tracking_number),
		       updated_at=now()
		WHERE id=$1 AND status=$2`, id, expected, next, trackingNumber)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return s.staleOrMissing(ctx, `SELECT 1 FROM orders WHERE id=$1`, id)
	}
	return nil
}

// staleOrMissing disambiguates a zero-row guarded update.
func (s *Store) staleOrMissing(ctx context.Context, existsQuery, id string) error {
	var one int
	err := s.DB.QueryRow(ctx, existsQuery, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return gateway.ErrNotFound
	}
	if err != nil {
		return err
	}
	return gateway.ErrStaleStatus
}
