package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/dukaan-pos/api/internal/cart"
	"github.com/dukaan-pos/api/internal/database"
	"github.com/dukaan-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// CartStore defines the database methods needed by cart handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CartStore interface {
	GetItem(ctx context.Context, id int64) (database.Item, error)
	GetCustomer(ctx context.Context, id int64) (database.Customer, error)
}

// EventBroadcaster publishes change notifications to connected UI windows.
// Satisfied by *ws.Hub.
type EventBroadcaster interface {
	Broadcast(event ws.Event)
}

// CartHandler owns the live cart and the hold list for this terminal and
// exposes every mutation the cashier UI performs. One cart is live at a time
// and all mutations arrive on the single UI thread of control, so no locking
// is needed here.
type CartHandler struct {
	cart  *cart.Cart
	holds *cart.HoldList
	store CartStore
	hub   EventBroadcaster
}

// NewCartHandler creates a new CartHandler around the given cart and holds.
func NewCartHandler(c *cart.Cart, holds *cart.HoldList, store CartStore, hub EventBroadcaster) *CartHandler {
	return &CartHandler{cart: c, holds: holds, store: store, hub: hub}
}

// RegisterRoutes registers cart and hold endpoints on the given Chi router.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Reset)
		r.Post("/items", h.AddItem)
		r.Post("/items/{id}/increment", h.IncrementLine)
		r.Post("/items/{id}/decrement", h.DecrementLine)
		r.Delete("/items/{id}", h.RemoveLine)
		r.Put("/adjustments", h.SetAdjustment)
		r.Put("/customer", h.SetCustomer)
		r.Post("/hold", h.Suspend)
	})
	r.Route("/holds", func(r chi.Router) {
		r.Get("/", h.ListHolds)
		r.Post("/{id}/resume", h.ResumeHold)
		r.Delete("/{id}", h.DeleteHold)
	})
}

// --- Request / Response types ---

type addItemRequest struct {
	ItemID int64 `json:"item_id"`
}

type setAdjustmentRequest struct {
	Field string          `json:"field"`
	Value decimal.Decimal `json:"value"`
}

type setCustomerRequest struct {
	CustomerID *int64 `json:"customer_id"`
}

type cartLineResponse struct {
	ItemID    int64  `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Qty       int64  `json:"qty"`
}

type adjustmentsResponse struct {
	DiscountPercent string `json:"discount_percent"`
	TaxPercent      string `json:"tax_percent"`
	Shipping        string `json:"shipping"`
	Packing         string `json:"packing"`
}

type totalsResponse struct {
	ItemsSubtotal  string `json:"items_subtotal"`
	DiscountAmount string `json:"discount_amount"`
	TaxAmount      string `json:"tax_amount"`
	Payable        string `json:"payable"`
}

type cartStateResponse struct {
	Lines       []cartLineResponse  `json:"lines"`
	Adjustments adjustmentsResponse `json:"adjustments"`
	Customer    *customerResponse   `json:"customer"`
	Totals      totalsResponse      `json:"totals"`
}

type holdResponse struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Customer  *customerResponse `json:"customer"`
	LineCount int               `json:"line_count"`
	Payable   string            `json:"payable"`
}

func toCartState(c *cart.Cart) cartStateResponse {
	lines := c.Lines()
	resp := cartStateResponse{
		Lines: make([]cartLineResponse, len(lines)),
	}
	for i, l := range lines {
		resp.Lines[i] = cartLineResponse{
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice.StringFixed(2),
			Qty:       l.Qty,
		}
	}

	adj := c.Adjustments()
	resp.Adjustments = adjustmentsResponse{
		DiscountPercent: adj.DiscountPercent.String(),
		TaxPercent:      adj.TaxPercent.String(),
		Shipping:        adj.Shipping.StringFixed(2),
		Packing:         adj.Packing.StringFixed(2),
	}

	if cust := c.Customer(); cust != nil {
		resp.Customer = &customerResponse{ID: cust.ID, Name: cust.Name, Phone: cust.Phone}
	}

	totals := c.Totals()
	resp.Totals = totalsResponse{
		ItemsSubtotal:  totals.ItemsSubtotal.StringFixed(2),
		DiscountAmount: totals.DiscountAmount.StringFixed(2),
		TaxAmount:      totals.TaxAmount.StringFixed(2),
		Payable:        totals.Payable.StringFixed(2),
	}
	return resp
}

func toHoldResponse(hold cart.Hold) holdResponse {
	resp := holdResponse{
		ID:        hold.ID,
		CreatedAt: hold.CreatedAt,
		LineCount: len(hold.Snapshot.Lines),
	}
	if hold.Snapshot.Customer != nil {
		resp.Customer = &customerResponse{
			ID:    hold.Snapshot.Customer.ID,
			Name:  hold.Snapshot.Customer.Name,
			Phone: hold.Snapshot.Customer.Phone,
		}
	}

	// Recompute payable from the snapshot so the hold list can show it.
	restored := cart.New()
	restored.Restore(hold.Snapshot)
	resp.Payable = restored.Totals().Payable.StringFixed(2)
	return resp
}

// --- Cart handlers ---

// Get handles GET /cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCartState(h.cart))
}

// Reset handles DELETE /cart.
func (h *CartHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.cart.Reset()
	h.notifyCart()
	writeJSON(w, http.StatusOK, toCartState(h.cart))
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.store.GetItem(r.Context(), req.ItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			errorJSON(w, http.StatusNotFound, "item not found")
			return
		}
		log.Printf("ERROR: get item: %v", err)
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.cart.AddItem(item)
	h.notifyCart()
	writeJSON(w, http.StatusOK, toCartState(h.cart))
}

// IncrementLine handles POST /cart/items/{id}/increment.
func (h *CartHandler) IncrementLine(w http.ResponseWriter, r *http.Request) {
	h.adjustLine(w, r, h.cart.IncrementLine)
}

// DecrementLine handles POST /cart/items/{id}/decrement.
func (h *CartHandler) DecrementLine(w http.ResponseWriter, r *http.Request) {
	h.adjustLine(w, r, h.cart.DecrementLine)
}

// RemoveLine handles DELETE /cart/items/{id}.
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	h.adjustLine(w, r, h.cart.RemoveLine)
}

func (h *CartHandler) adjustLine(w http.ResponseWriter, r *http.Request, op func(int64) error) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	if err := op(itemID); err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			errorJSON(w, http.StatusNotFound, "line not found")
			return
		}
		log.Printf("ERROR: cart line op: %v", err)
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.notifyCart()
	writeJSON(w, http.StatusOK, toCartState(h.cart))
}

// SetAdjustment handles PUT /cart/adjustments.
func (h *CartHandler) SetAdjustment(w http.ResponseWriter, r *http.Request) {
	var req setAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.cart.SetAdjustment(req.Field, req.Value); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	h.notifyCart()
	writeJSON(w, http.StatusOK, toCartState(h.cart))
}

// SetCustomer handles PUT /cart/customer. A null customer_id clears the
// selection back to a walk-in sale.
func (h *CartHandler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var req setCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CustomerID == nil {
		h.cart.SetCustomer(nil)
		h.notifyCart()
		writeJSON(w, http.StatusOK, toCartState(h.cart))
		return
	}

	customer, err := h.store.GetCustomer(r.Context(), *req.CustomerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			errorJSON(w, http.StatusNotFound, "customer not found")
			return
		}
		log.Printf("ERROR: get customer: %v", err)
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.cart.SetCustomer(&customer)
	h.notifyCart()
	writeJSON(w, http.StatusOK, toCartState(h.cart))
}

// --- Hold handlers ---

// Suspend handles POST /cart/hold: snapshot the live cart into the hold list
// and reset the cart for the next order.
func (h *CartHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	if len(h.cart.Lines()) == 0 {
		errorJSON(w, http.StatusBadRequest, "cart is empty")
		return
	}

	hold := h.holds.Suspend(h.cart.Snapshot())
	h.cart.Reset()
	h.notifyCart()
	h.notifyHolds()
	writeJSON(w, http.StatusCreated, toHoldResponse(hold))
}

// ListHolds handles GET /holds.
func (h *CartHandler) ListHolds(w http.ResponseWriter, r *http.Request) {
	holds := h.holds.List()
	resp := make([]holdResponse, len(holds))
	for i, hold := range holds {
		resp[i] = toHoldResponse(hold)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ResumeHold handles POST /holds/{id}/resume: restore the snapshot into the
// live cart and remove it from the hold list. Resume is one-shot.
func (h *CartHandler) ResumeHold(w http.ResponseWriter, r *http.Request) {
	hold, err := h.holds.Resume(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, cart.ErrHoldNotFound) {
			errorJSON(w, http.StatusNotFound, "suspended order not found")
			return
		}
		log.Printf("ERROR: resume hold: %v", err)
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.cart.Restore(hold.Snapshot)
	h.notifyCart()
	h.notifyHolds()
	writeJSON(w, http.StatusOK, toCartState(h.cart))
}

// DeleteHold handles DELETE /holds/{id}.
func (h *CartHandler) DeleteHold(w http.ResponseWriter, r *http.Request) {
	if err := h.holds.Delete(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, cart.ErrHoldNotFound) {
			errorJSON(w, http.StatusNotFound, "suspended order not found")
			return
		}
		log.Printf("ERROR: delete hold: %v", err)
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.notifyHolds()
	w.WriteHeader(http.StatusNoContent)
}

// --- Notifications ---

func (h *CartHandler) notifyCart() {
	event, err := ws.NewEvent("cart.updated", toCartState(h.cart))
	if err != nil {
		log.Printf("ERROR: build cart event: %v", err)
		return
	}
	h.hub.Broadcast(event)
}

func (h *CartHandler) notifyHolds() {
	holds := h.holds.List()
	resp := make([]holdResponse, len(holds))
	for i, hold := range holds {
		resp[i] = toHoldResponse(hold)
	}
	event, err := ws.NewEvent("holds.updated", resp)
	if err != nil {
		log.Printf("ERROR: build holds event: %v", err)
		return
	}
	h.hub.Broadcast(event)
}
