package router

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/dukaan-pos/api/internal/cart"
	"github.com/dukaan-pos/api/internal/config"
	"github.com/dukaan-pos/api/internal/database"
	"github.com/dukaan-pos/api/internal/handler"
	"github.com/dukaan-pos/api/internal/service"
	"github.com/dukaan-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New creates a Chi router with all application routes wired up.
// The server is the local backend of a single-terminal desktop POS; it binds
// to loopback and talks to exactly one cashier UI.
func New(cfg *config.Config, queries *database.Queries, db *sql.DB, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration: the desktop shell's renderer origin only.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.UIOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// WebSocket route: UI subscribes here for change notifications.
	r.Get("/ws/events", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	// Catalog (read-only)
	catalogHandler := handler.NewCatalogHandler(queries)
	catalogHandler.RegisterRoutes(r)

	// Cart and holds: one live cart per terminal.
	cartHandler := handler.NewCartHandler(cart.New(), cart.NewHoldList(), queries, hub)
	cartHandler.RegisterRoutes(r)

	// Transactions
	newStore := func(db database.DBTX) service.CheckoutStore {
		return database.New(db)
	}
	checkoutService := service.NewCheckoutService(db, newStore)
	txHandler := handler.NewTransactionHandler(checkoutService, queries, hub)
	r.Route("/transactions", txHandler.RegisterRoutes)

	log.Println("Router initialized with all handlers")
	return r
}
