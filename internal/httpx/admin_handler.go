package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/autoparts-mx/commerce-engine/internal/commerce"
	"github.com/autoparts-mx/commerce-engine/internal/postgres"
	"github.com/autoparts-mx/commerce-engine/internal/redisx"
	"github.com/autoparts-mx/commerce-engine/internal/workflow"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AdminHandler exposes the workflow operations the admin console calls.
// Who the caller is comes from headers; authenticating them is the edge
// proxy's job, deciding whether they may act is the workflows' job.
type AdminHandler struct {
	Engine *workflow.Engine
	Store  *postgres.Store
	Redis  *redis.Client
	Log    *zap.Logger
}

type ReceiveReq struct {
	Lines []commerce.ReceivedLine `json:"lines"`
}

type CompleteSaleReq struct {
	BidID            string `json:"bid_id"`
	PaymentMethod    string `json:"payment_method"`
	PaymentReference string `json:"payment_reference"`
}

type AdvanceOrderReq struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Get("/purchase-orders", h.listPurchaseOrders)
	r.Put("/purchase-orders/{id}/receive", h.receivePurchaseOrder)

	r.Get("/marketplace/listings", h.listListings)
	r.Put("/marketplace/listings/{id}/approve", h.approveListing)
	r.Put("/marketplace/listings/{id}/reject", h.rejectListing)
	r.Get("/marketplace/listings/{id}/bids", h.listBids)
	r.Post("/marketplace/listings/{id}/complete-sale", h.completeSale)

	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Put("/orders/{id}/status", h.advanceOrder)
}

func actorFrom(r *http.Request) workflow.Actor {
	return workflow.Actor{
		ID:   r.Header.Get("X-Actor-Id"),
		Role: workflow.Role(r.Header.Get("X-Actor-Role")),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": v})
}

func (h *AdminHandler) writeError(w http.ResponseWriter, err error) {
	var ce *commerce.Error
	if errors.As(err, &ce) {
		writeJSON(w, statusFor(ce), map[string]any{
			"success": false, "code": ce.Code, "message": ce.Error(),
		})
		return
	}
	h.Log.Error("unclassified handler error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false, "message": "internal error",
	})
}

func statusFor(ce *commerce.Error) int {
	// role failures are 403; 409 stays reserved for stale views and lost races
	if ce.Code == commerce.CodeNotAuthorized {
		return http.StatusForbidden
	}
	switch ce.Kind {
	case commerce.KindValidationFailed:
		return http.StatusBadRequest
	case commerce.KindNotFound:
		return http.StatusNotFound
	case commerce.KindPreconditionFailed, commerce.KindConflict:
		return http.StatusConflict
	case commerce.KindGatewayFailure:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *AdminHandler) listPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.Store.ListPurchaseOrders(ctx)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeData(w, orders)
}

func (h *AdminHandler) receivePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req ReceiveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid json"})
		return
	}
	if len(req.Lines) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "missing lines"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Engine.ReceivePurchaseOrder(ctx, actorFrom(r), chi.URLParam(r, "id"), req.Lines)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.cacheStatus(ctx, redisx.EntityPurchaseOrder, res.ID, res.NewStatus)
	writeData(w, res)
}

func (h *AdminHandler) listListings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	listings, err := h.Store.ListListings(ctx, commerce.ListingStatus(r.URL.Query().Get("status")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeData(w, listings)
}

func (h *AdminHandler) approveListing(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.Engine.ApproveListing)
}

func (h *AdminHandler) rejectListing(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.Engine.RejectListing)
}

func (h *AdminHandler) moderate(w http.ResponseWriter, r *http.Request,
	op func(context.Context, workflow.Actor, string) (*workflow.Result, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := op(ctx, actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.cacheStatus(ctx, redisx.EntityListing, res.ID, res.NewStatus)
	writeData(w, res)
}

func (h *AdminHandler) listBids(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	board, err := h.Engine.ListBids(ctx, actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeData(w, board)
}

func (h *AdminHandler) completeSale(w http.ResponseWriter, r *http.Request) {
	var req CompleteSaleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Engine.CompleteSale(ctx, actorFrom(r), chi.URLParam(r, "id"),
		req.BidID, req.PaymentMethod, req.PaymentReference)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.cacheStatus(ctx, redisx.EntityListing, res.ID, res.NewStatus)
	writeData(w, res)
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := r.URL.Query().Get("status")
	if status != "" {
		if _, ok := commerce.ParseOrderStatus(status); !ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "unknown status"})
			return
		}
	}
	orders, err := h.Store.ListOrders(ctx, commerce.OrderStatus(status))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeData(w, orders)
}

func (h *AdminHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// status cache first, store as fallback
	key := fmt.Sprintf(redisx.KeyStatus, redisx.EntityOrder, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeData(w, json.RawMessage(s))
			return
		}
	}

	o, err := h.Store.GetOrder(ctx, orderID)
	if err != nil {
		h.writeError(w, &commerce.Error{Kind: commerce.KindNotFound, Code: commerce.CodeOrderNotFound,
			Entity: "order", ID: orderID, Err: err})
		return
	}
	body := map[string]any{"status": o.Status, "updated_at": o.UpdatedAt}
	if h.Redis != nil {
		b, _ := json.Marshal(body)
		_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	}
	writeData(w, body)
}

func (h *AdminHandler) advanceOrder(w http.ResponseWriter, r *http.Request) {
	var req AdvanceOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid json"})
		return
	}
	next, ok := commerce.ParseOrderStatus(req.Status)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "unknown status"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Engine.AdvanceOrder(ctx, actorFrom(r), chi.URLParam(r, "id"), next, req.TrackingNumber)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.cacheStatus(ctx, redisx.EntityOrder, res.ID, res.NewStatus)
	writeData(w, res)
}

func (h *AdminHandler) cacheStatus(ctx context.Context, entity, id, status string) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyStatus, entity, id)
	val, _ := json.Marshal(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	_ = h.Redis.Set(ctx, key, val, redisx.TTLStatusCache).Err()
}
