package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/dukaan-pos/api/internal/database"
	"github.com/dukaan-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

type seedItem struct {
	name     string
	price    string
	image    string
	category string
}

func main() {
	// CLI flag, falling back to environment, falling back to default
	path := flag.String("db", "", "Path to the SQLite database file")
	flag.Parse()

	if *path == "" {
		*path = os.Getenv("DATABASE_PATH")
	}
	if *path == "" {
		*path = "pos.db"
	}

	db, err := database.Open(*path)
	if err != nil {
		log.Fatalf("Unable to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Unable to migrate database: %v", err)
	}

	ctx := context.Background()

	// Seed in a transaction (atomicity: all demo rows or none)
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback() //nolint:errcheck

	queries := database.New(tx)

	if err := seedCustomers(ctx, queries); err != nil {
		log.Fatalf("Failed to seed customers: %v", err)
	}
	if err := seedItems(ctx, queries); err != nil {
		log.Fatalf("Failed to seed items: %v", err)
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}
	log.Println("Seed complete")
}

// seedCustomers inserts demo customers unless some already exist.
func seedCustomers(ctx context.Context, q *database.Queries) error {
	n, err := q.CountCustomers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("Customers already present (%d), skipping", n)
		return nil
	}

	customers := [][2]string{
		{"Ali Khan", "03001234567"},
		{"Sara Ahmed", "03211234567"},
		{"Noman", "03331234567"},
		{"Fatima Qureshi", "03451234567"},
		{"Bilal Shah", "03061234567"},
	}
	for _, c := range customers {
		if _, err := q.CreateCustomer(ctx, c[0], c[1]); err != nil {
			return err
		}
	}
	log.Printf("Seeded %d customers", len(customers))
	return nil
}

// seedItems inserts demo catalog items unless some already exist.
func seedItems(ctx context.Context, q *database.Queries) error {
	n, err := q.CountItems(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("Items already present (%d), skipping", n)
		return nil
	}

	items := []seedItem{
		{"Pasta", "300", "/items/food1.jpg", "Food"},
		{"Burger", "500", "/items/food2.jpg", "Food"},
		{"Pizza", "800", "/items/food3.jpg", "Food"},
		{"Soda", "200", "/items/food4.jpg", "Drink"},
		{"Cola Next", "100", "/items/food5.jpg", "Drink"},
	}
	for _, it := range items {
		price, err := decimal.NewFromString(it.price)
		if err != nil {
			return err
		}
		category := it.category
		if category == "" {
			category = enum.DefaultItemCategory
		}
		if _, err := q.CreateItem(ctx, database.CreateItemParams{
			Name:     it.name,
			Price:    price,
			Image:    it.image,
			Category: category,
		}); err != nil {
			return err
		}
	}
	log.Printf("Seeded %d items", len(items))
	return nil
}
