package main

import (
	"log"
	"net/http"

	"github.com/dukaan-pos/api/internal/config"
	"github.com/dukaan-pos/api/internal/database"
	"github.com/dukaan-pos/api/internal/router"
	"github.com/dukaan-pos/api/internal/ws"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Unable to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Unable to migrate database: %v", err)
	}
	log.Printf("Database ready at %s", cfg.DatabasePath)

	hub := ws.NewHub()
	go hub.Run()

	queries := database.New(db)
	r := router.New(cfg, queries, db, hub)

	log.Printf("Starting server on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatal(err)
	}
}
