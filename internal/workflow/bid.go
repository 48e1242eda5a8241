package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/autoparts-mx/commerce-engine/internal/commerce"
	"github.com/autoparts-mx/commerce-engine/internal/fsm"
	"github.com/autoparts-mx/commerce-engine/internal/gateway"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BidBoard is the read-only projection the console renders: accepted offers
// ready for payment, then open ones. Rejected bids are not actionable and
// are left out entirely.
type BidBoard struct {
	ListingID string         `json:"listing_id"`
	Accepted  []commerce.Bid `json:"accepted"`
	Pending   []commerce.Bid `json:"pending"`
}

func (e *Engine) ListBids(ctx context.Context, actor Actor, listingID string) (*BidBoard, error) {
	if err := requireAdmin(actor, entityListing, listingID); err != nil {
		return nil, err
	}
	if _, err := e.GW.GetListing(ctx, listingID); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, &commerce.Error{Kind: commerce.KindNotFound, Code: commerce.CodeListingNotFound,
				Entity: entityListing, ID: listingID}
		}
		return nil, gwFailure(entityListing, listingID, commerce.CodeGatewayFailure, err)
	}

	bids, err := e.GW.GetBidsForListing(ctx, listingID)
	if err != nil {
		return nil, gwFailure(entityListing, listingID, commerce.CodeGatewayFailure, err)
	}

	board := &BidBoard{ListingID: listingID}
	for _, b := range bids {
		switch b.Status {
		case commerce.BidAccepted:
			board.Accepted = append(board.Accepted, b)
		case commerce.BidPending:
			board.Pending = append(board.Pending, b)
		}
	}
	return board, nil
}

// CompleteSale finalizes an accepted bid: records the Sale with the platform
// commission and moves the listing to Sold. Every other bid on the listing
// becomes non-actionable through the Sold precondition alone; none of them
// is touched.
func (e *Engine) CompleteSale(ctx context.Context, actor Actor, listingID, bidID, paymentMethod, paymentReference string) (*Result, error) {
	if err := requireAdmin(actor, entityListing, listingID); err != nil {
		return nil, err
	}
	if paymentMethod == "" || paymentReference == "" {
		return nil, &commerce.Error{Kind: commerce.KindValidationFailed, Code: commerce.CodeIncompletePaymentInfo,
			Entity: entityListing, ID: listingID}
	}

	l, err := e.GW.GetListing(ctx, listingID)
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, &commerce.Error{Kind: commerce.KindNotFound, Code: commerce.CodeListingNotFound,
			Entity: entityListing, ID: listingID}
	}
	if err != nil {
		return nil, gwFailure(entityListing, listingID, commerce.CodeGatewayFailure, err)
	}
	if l.Status == commerce.ListingSold {
		return nil, &commerce.Error{Kind: commerce.KindPreconditionFailed, Code: commerce.CodeSaleAlreadyExists,
			Entity: entityListing, ID: listingID, Status: string(l.Status)}
	}
	if l.Status != commerce.ListingActive {
		return nil, &commerce.Error{Kind: commerce.KindPreconditionFailed, Code: commerce.CodeListingNotActive,
			Entity: entityListing, ID: listingID, Status: string(l.Status), Attempted: string(commerce.ListingSold)}
	}

	bid, err := e.GW.GetBid(ctx, bidID)
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, &commerce.Error{Kind: commerce.KindNotFound, Code: commerce.CodeBidNotFound,
			Entity: "bid", ID: bidID}
	}
	if err != nil {
		return nil, gwFailure("bid", bidID, commerce.CodeGatewayFailure, err)
	}
	if bid.ListingID != listingID || bid.Status != commerce.BidAccepted {
		return nil, &commerce.Error{Kind: commerce.KindPreconditionFailed, Code: commerce.CodeBidNotAcceptable,
			Entity: "bid", ID: bidID, Status: string(bid.Status)}
	}

	if _, err := fsm.Transition(l.Status, commerce.ListingSold, commerce.ListingEdges); err != nil {
		return nil, &commerce.Error{Kind: commerce.KindPreconditionFailed, Code: commerce.CodeListingNotActive,
			Entity: entityListing, ID: listingID, Status: string(l.Status), Err: err}
	}

	sale := &commerce.Sale{
		ID:                  uuid.NewString(),
		ListingID:           listingID,
		BidID:               bid.ID,
		BuyerID:             bid.BuyerID,
		PaymentMethod:       paymentMethod,
		PaymentReference:    paymentReference,
		CommissionCents:     commerce.CommissionCents(bid.AmountCents),
		AmountReceivedCents: commerce.AmountReceivedCents(bid.AmountCents),
		CompletedAt:         time.Now().UTC(),
	}

	if err := e.GW.CreateSale(ctx, sale); err != nil {
		if !errors.Is(err, gateway.ErrSaleExists) {
			return nil, gwFailure(entityListing, listingID, commerce.CodeGatewayFailure, err)
		}
		// The listing is still Active but a sale row exists: a prior attempt
		// was cut off between recording the sale and marking the listing
		// Sold. If the recorded sale is for this same bid, resume from it;
		// a sale for a different bid is a real conflict.
		prior, gerr := e.GW.GetSaleForListing(ctx, listingID)
		if gerr != nil {
			return nil, gwFailure(entityListing, listingID, commerce.CodeGatewayFailure, gerr)
		}
		if prior.BidID != bid.ID {
			return nil, &commerce.Error{Kind: commerce.KindConflict, Code: commerce.CodeSaleAlreadyExists,
				Entity: entityListing, ID: listingID}
		}
		e.Log.Info("resuming interrupted sale",
			zap.String("listing_id", listingID), zap.String("sale_id", prior.ID))
		sale = prior
	}
	if err := e.GW.SetListingStatus(ctx, listingID, commerce.ListingActive, commerce.ListingSold); err != nil {
		if errors.Is(err, gateway.ErrStaleStatus) {
			return nil, &commerce.Error{Kind: commerce.KindConflict, Code: commerce.CodeListingNotActive,
				Entity: entityListing, ID: listingID}
		}
		return nil, gwFailure(entityListing, listingID, commerce.CodeGatewayFailure, err)
	}

	e.Log.Info("sale completed",
		zap.String("listing_id", listingID), zap.String("bid_id", bid.ID),
		zap.Int64("commission_cents", sale.CommissionCents),
		zap.Int64("amount_received_cents", sale.AmountReceivedCents),
		zap.String("actor", actor.ID))
	e.publish(commerce.TopicSaleCompleted, commerce.EventSaleCompleted, listingID, actor.ID,
		commerce.SaleCompletedPayload{
			SaleID: sale.ID, ListingID: listingID, BidID: bid.ID, BuyerID: bid.BuyerID,
			PaymentMethod: paymentMethod, CommissionCents: sale.CommissionCents,
			AmountReceivedCents: sale.AmountReceivedCents,
		})

	return &Result{
		Entity: entityListing, ID: listingID,
		PreviousStatus: string(commerce.ListingActive),
		NewStatus:      string(commerce.ListingSold),
		Sale:           sale,
	}, nil
}
