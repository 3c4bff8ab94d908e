package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/dukaan-pos/api/internal/database"
	"github.com/dukaan-pos/api/internal/service"
	"github.com/dukaan-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// CheckoutServicer defines the service methods needed by transaction
// handlers. Satisfied by *service.CheckoutService; narrow interface for
// testability.
type CheckoutServicer interface {
	Save(ctx context.Context, req service.SaveRequest) (*service.SaveResult, error)
}

// TransactionStore defines the database methods needed by transaction read
// handlers. Satisfied by *database.Queries.
type TransactionStore interface {
	ListTransactions(ctx context.Context) ([]database.TransactionSummary, error)
	ListTransactionLines(ctx context.Context, transactionID int64) ([]database.TransactionLineDetail, error)
}

// TransactionHandler handles finalize and history endpoints.
type TransactionHandler struct {
	svc   CheckoutServicer
	store TransactionStore
	hub   EventBroadcaster
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(svc CheckoutServicer, store TransactionStore, hub EventBroadcaster) *TransactionHandler {
	return &TransactionHandler{svc: svc, store: store, hub: hub}
}

// RegisterRoutes registers transaction endpoints on the given Chi router.
func (h *TransactionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Save)
	r.Get("/", h.List)
	r.Get("/{id}/lines", h.Lines)
}

// --- Request / Response types ---

type saveLineRequest struct {
	ItemID    int64           `json:"item_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Qty       int64           `json:"qty"`
}

type saveRequest struct {
	CustomerID  *int64            `json:"customer_id"`
	Items       []saveLineRequest `json:"items"`
	Status      string            `json:"status"`
	FinalAmount decimal.Decimal   `json:"final_amount"`
}

type saveResponse struct {
	TransactionID int64     `json:"transaction_id"`
	TotalAmount   string    `json:"total_amount"`
	CreatedAt     time.Time `json:"created_at"`
	Status        string    `json:"status"`
}

type transactionResponse struct {
	ID           int64     `json:"id"`
	CustomerName string    `json:"customer_name"`
	Total        string    `json:"total"`
	Date         time.Time `json:"date"`
	Status       string    `json:"status"`
}

type transactionLineResponse struct {
	ID         int64  `json:"id"`
	ItemName   string `json:"item_name"`
	Qty        int64  `json:"qty"`
	TotalPrice string `json:"total_price"`
}

// --- Handlers ---

// Save handles POST /transactions. The body carries the finalized cart
// exactly as the UI sees it; the service validates and persists atomically.
func (h *TransactionHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines := make([]service.SaveLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = service.SaveLine{
			ItemID:    item.ItemID,
			UnitPrice: item.UnitPrice,
			Qty:       item.Qty,
		}
	}

	result, err := h.svc.Save(r.Context(), service.SaveRequest{
		CustomerID:  req.CustomerID,
		Lines:       lines,
		Status:      req.Status,
		FinalAmount: req.FinalAmount,
	})
	if err != nil {
		if service.IsValidationError(err) {
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("ERROR: save transaction: %v", err)
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := saveResponse{
		TransactionID: result.TransactionID,
		TotalAmount:   result.TotalAmount.StringFixed(2),
		CreatedAt:     result.CreatedAt,
		Status:        result.Status,
	}

	if event, err := ws.NewEvent("transaction.created", resp); err == nil {
		h.hub.Broadcast(event)
	}

	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /transactions: the history view, newest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	txs, err := h.store.ListTransactions(r.Context())
	if err != nil {
		log.Printf("ERROR: list transactions: %v", err)
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]transactionResponse, len(txs))
	for i, t := range txs {
		name := "Walk-in"
		if t.CustomerName.Valid {
			name = t.CustomerName.String
		}
		resp[i] = transactionResponse{
			ID:           t.ID,
			CustomerName: name,
			Total:        t.Total.StringFixed(2),
			Date:         t.Date,
			Status:       t.Status,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Lines handles GET /transactions/{id}/lines: the history drill-down.
func (h *TransactionHandler) Lines(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid transaction ID")
		return
	}

	lines, err := h.store.ListTransactionLines(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list transaction lines: %v", err)
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]transactionLineResponse, len(lines))
	for i, l := range lines {
		name := "Unknown item"
		if l.ItemName.Valid {
			name = l.ItemName.String
		}
		resp[i] = transactionLineResponse{
			ID:         l.ID,
			ItemName:   name,
			Qty:        l.Qty,
			TotalPrice: l.TotalPrice.StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
