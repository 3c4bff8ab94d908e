package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/dukaan-pos/api/internal/database"
	"github.com/go-chi/chi/v5"
)

// CatalogStore defines the database methods needed by catalog handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CatalogStore interface {
	ListCustomers(ctx context.Context) ([]database.Customer, error)
	ListItems(ctx context.Context) ([]database.Item, error)
}

// CatalogHandler serves the read-only customer and item lookups the cashier
// UI needs to build a cart.
type CatalogHandler struct {
	store CatalogStore
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(store CatalogStore) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// RegisterRoutes registers catalog endpoints on the given Chi router.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/customers", h.ListCustomers)
	r.Get("/items", h.ListItems)
}

// --- Response types ---

type customerResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type itemResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Image    string `json:"image"`
	Category string `json:"category"`
}

// --- Handlers ---

// ListCustomers handles GET /customers.
func (h *CatalogHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.store.ListCustomers(r.Context())
	if err != nil {
		log.Printf("ERROR: list customers: %v", err)
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]customerResponse, len(customers))
	for i, c := range customers {
		resp[i] = customerResponse{ID: c.ID, Name: c.Name, Phone: c.Phone}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListItems handles GET /items.
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListItems(r.Context())
	if err != nil {
		log.Printf("ERROR: list items: %v", err)
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]itemResponse, len(items))
	for i, it := range items {
		resp[i] = itemResponse{
			ID:       it.ID,
			Name:     it.Name,
			Price:    it.Price.StringFixed(2),
			Image:    it.Image,
			Category: it.Category,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
