package workflow

import (
	"context"
	"errors"

	"github.com/autoparts-mx/commerce-engine/internal/commerce"
	"github.com/autoparts-mx/commerce-engine/internal/fsm"
	"github.com/autoparts-mx/commerce-engine/internal/gateway"
	"go.uber.org/zap"
)

const entityListing = "listing"

// ApproveListing makes a pending listing visible in the app.
func (e *Engine) ApproveListing(ctx context.Context, actor Actor, listingID string) (*Result, error) {
	return e.moderateListing(ctx, actor, listingID, commerce.ListingActive, commerce.EventListingApproved)
}

// RejectListing is terminal; a rejected listing cannot be resurrected.
func (e *Engine) RejectListing(ctx context.Context, actor Actor, listingID string) (*Result, error) {
	return e.moderateListing(ctx, actor, listingID, commerce.ListingRejected, commerce.EventListingRejected)
}

func (e *Engine) moderateListing(ctx context.Context, actor Actor, listingID string, next commerce.ListingStatus, eventType string) (*Result, error) {
	if err := requireAdmin(actor, entityListing, listingID); err != nil {
		return nil, err
	}

	l, err := e.GW.GetListing(ctx, listingID)
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, &commerce.Error{Kind: commerce.KindNotFound, Code: commerce.CodeListingNotFound,
			Entity: entityListing, ID: listingID}
	}
	if err != nil {
		return nil, gwFailure(entityListing, listingID, commerce.CodeGatewayFailure, err)
	}
	// moderation only acts on pending listings; a stale admin view gets an
	// explicit error instead of a silent no-op
	if l.Status != commerce.ListingPending {
		return nil, &commerce.Error{Kind: commerce.KindPreconditionFailed, Code: commerce.CodeListingNotPending,
			Entity: entityListing, ID: listingID, Status: string(l.Status), Attempted: string(next)}
	}
	if _, err := fsm.Transition(l.Status, next, commerce.ListingEdges); err != nil {
		return nil, &commerce.Error{Kind: commerce.KindPreconditionFailed, Code: commerce.CodeListingNotPending,
			Entity: entityListing, ID: listingID, Status: string(l.Status), Attempted: string(next), Err: err}
	}

	if err := e.GW.SetListingStatus(ctx, listingID, commerce.ListingPending, next); err != nil {
		if errors.Is(err, gateway.ErrStaleStatus) {
			return nil, &commerce.Error{Kind: commerce.KindConflict, Code: commerce.CodeListingNotPending,
				Entity: entityListing, ID: listingID, Attempted: string(next)}
		}
		return nil, gwFailure(entityListing, listingID, commerce.CodeGatewayFailure, err)
	}

	e.Log.Info("listing moderated",
		zap.String("listing_id", listingID), zap.String("status", string(next)), zap.String("actor", actor.ID))
	e.publish(commerce.TopicListingModerated, eventType, listingID, actor.ID,
		commerce.ListingModeratedPayload{ListingID: listingID, SellerID: l.SellerID, Status: next})

	return &Result{
		Entity: entityListing, ID: listingID,
		PreviousStatus: string(commerce.ListingPending),
		NewStatus:      string(next),
	}, nil
}
