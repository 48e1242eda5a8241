package commerce

import (
	"errors"
	"fmt"
)

// Kind classifies a workflow failure for callers that only care whether to
// retry, fix input, or refresh a stale view.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindPreconditionFailed
	KindValidationFailed
	KindGatewayFailure
	KindConflict
)

// Stable machine-readable codes, one per distinct failure.
const (
	CodePurchaseOrderNotFound = "PURCHASE_ORDER_NOT_FOUND"
	CodeAlreadyReceived       = "ALREADY_RECEIVED"
	CodeInvalidLine           = "INVALID_LINE"
	CodeInventoryUpdateFailed = "INVENTORY_UPDATE_FAILED"
	CodeListingNotFound       = "LISTING_NOT_FOUND"
	CodeListingNotPending     = "LISTING_NOT_PENDING"
	CodeListingNotActive      = "LISTING_NOT_ACTIVE"
	CodeBidNotFound           = "BID_NOT_FOUND"
	CodeBidNotAcceptable      = "BID_NOT_ACCEPTABLE"
	CodeIncompletePaymentInfo = "INCOMPLETE_PAYMENT_INFO"
	CodeSaleAlreadyExists     = "SALE_ALREADY_EXISTS"
	CodeOrderNotFound         = "ORDER_NOT_FOUND"
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeAlreadyTerminal       = "ALREADY_TERMINAL"
	CodeNotAuthorized         = "NOT_AUTHORIZED"
	CodeGatewayFailure        = "GATEWAY_FAILURE"
)

// Error carries enough context to render a precise message: which entity,
// its current status, and what was attempted.
type Error struct {
	Kind      Kind
	Code      string
	Entity    string
	ID        string
	Status    string
	Attempted string
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s %s", e.Code, e.Entity, e.ID)
	if e.Status != "" {
		msg += fmt.Sprintf(" (status=%s", e.Status)
		if e.Attempted != "" {
			msg += fmt.Sprintf(" attempted=%s", e.Attempted)
		}
		msg += ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a workflow error of the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// CodeOf extracts the workflow error code, or "" for foreign errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
