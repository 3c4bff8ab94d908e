package database

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a registered customer. Referenced, never owned, by transactions.
type Customer struct {
	ID    int64
	Name  string
	Phone string
}

// Item is a sellable catalog item. Price is the current catalog price; carts
// capture their own copy at add time.
type Item struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Image    string
	Category string
}

// Transaction is one finalized order header.
type Transaction struct {
	ID         int64
	CustomerID sql.NullInt64
	Total      decimal.Decimal
	Date       time.Time
	Status     string
}

// TransactionLine is one line of a persisted transaction.
// TotalPrice is unit price × qty at time of sale.
type TransactionLine struct {
	ID            int64
	TransactionID int64
	ItemID        int64
	Qty           int64
	TotalPrice    decimal.Decimal
}

// TransactionSummary is a transaction annotated with the customer's display
// name for the history view. CustomerName is invalid for walk-in sales or
// when the customer row has since been removed.
type TransactionSummary struct {
	ID           int64
	CustomerName sql.NullString
	Total        decimal.Decimal
	Date         time.Time
	Status       string
}

// TransactionLineDetail is a line annotated with the item's display name.
type TransactionLineDetail struct {
	ID         int64
	ItemName   sql.NullString
	Qty        int64
	TotalPrice decimal.Decimal
}
