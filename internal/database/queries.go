package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DBTX is satisfied by *sql.DB and *sql.Tx, so the same queries run inside
// and outside an explicit transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries exposes all SQL operations over a DBTX.
type Queries struct {
	db DBTX
}

// New creates Queries over a pool or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// --- Customers ---

const listCustomers = `
SELECT id, name, phone FROM customers ORDER BY id
`

func (q *Queries) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := q.db.QueryContext(ctx, listCustomers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

const getCustomer = `
SELECT id, name, phone FROM customers WHERE id = ?
`

func (q *Queries) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	var c Customer
	err := q.db.QueryRowContext(ctx, getCustomer, id).Scan(&c.ID, &c.Name, &c.Phone)
	return c, err
}

const createCustomer = `
INSERT INTO customers (name, phone) VALUES (?, ?)
`

func (q *Queries) CreateCustomer(ctx context.Context, name, phone string) (Customer, error) {
	res, err := q.db.ExecContext(ctx, createCustomer, name, phone)
	if err != nil {
		return Customer{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Customer{}, err
	}
	return Customer{ID: id, Name: name, Phone: phone}, nil
}

const countCustomers = `
SELECT COUNT(*) FROM customers
`

func (q *Queries) CountCustomers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countCustomers).Scan(&n)
	return n, err
}

// --- Items ---

const listItems = `
SELECT id, name, price, image, category FROM items ORDER BY id
`

func (q *Queries) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := q.db.QueryContext(ctx, listItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ID, &it.Name, &price, &it.Image, &it.Category); err != nil {
			return nil, err
		}
		if it.Price, err = parseDecimal(price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const getItem = `
SELECT id, name, price, image, category FROM items WHERE id = ?
`

func (q *Queries) GetItem(ctx context.Context, id int64) (Item, error) {
	var (
		it    Item
		price string
	)
	err := q.db.QueryRowContext(ctx, getItem, id).Scan(&it.ID, &it.Name, &price, &it.Image, &it.Category)
	if err != nil {
		return Item{}, err
	}
	if it.Price, err = parseDecimal(price); err != nil {
		return Item{}, err
	}
	return it, nil
}

const createItem = `
INSERT INTO items (name, price, image, category) VALUES (?, ?, ?, ?)
`

// CreateItemParams are the fields of a new catalog item.
type CreateItemParams struct {
	Name     string
	Price    decimal.Decimal
	Image    string
	Category string
}

func (q *Queries) CreateItem(ctx context.Context, arg CreateItemParams) (Item, error) {
	res, err := q.db.ExecContext(ctx, createItem, arg.Name, arg.Price.String(), arg.Image, arg.Category)
	if err != nil {
		return Item{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Item{}, err
	}
	return Item{ID: id, Name: arg.Name, Price: arg.Price, Image: arg.Image, Category: arg.Category}, nil
}

const countItems = `
SELECT COUNT(*) FROM items
`

func (q *Queries) CountItems(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countItems).Scan(&n)
	return n, err
}

// --- Transactions ---

const createTransaction = `
INSERT INTO transactions (customer_id, total, date, status) VALUES (?, ?, ?, ?)
`

// CreateTransactionParams are the fields of a new transaction header.
type CreateTransactionParams struct {
	CustomerID sql.NullInt64
	Total      decimal.Decimal
	Date       time.Time
	Status     string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	res, err := q.db.ExecContext(ctx, createTransaction,
		arg.CustomerID, arg.Total.String(), formatTime(arg.Date), arg.Status)
	if err != nil {
		return Transaction{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		ID:         id,
		CustomerID: arg.CustomerID,
		Total:      arg.Total,
		Date:       arg.Date,
		Status:     arg.Status,
	}, nil
}

const createTransactionLine = `
INSERT INTO transaction_line (transaction_id, item_id, qty, total_price) VALUES (?, ?, ?, ?)
`

// CreateTransactionLineParams are the fields of one persisted line.
type CreateTransactionLineParams struct {
	TransactionID int64
	ItemID        int64
	Qty           int64
	TotalPrice    decimal.Decimal
}

func (q *Queries) CreateTransactionLine(ctx context.Context, arg CreateTransactionLineParams) (TransactionLine, error) {
	res, err := q.db.ExecContext(ctx, createTransactionLine,
		arg.TransactionID, arg.ItemID, arg.Qty, arg.TotalPrice.String())
	if err != nil {
		return TransactionLine{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return TransactionLine{}, err
	}
	return TransactionLine{
		ID:            id,
		TransactionID: arg.TransactionID,
		ItemID:        arg.ItemID,
		Qty:           arg.Qty,
		TotalPrice:    arg.TotalPrice,
	}, nil
}

const listTransactions = `
SELECT t.id, c.name, t.total, t.date, t.status
FROM transactions t
LEFT JOIN customers c ON c.id = t.customer_id
ORDER BY t.id DESC
`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionSummary, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []TransactionSummary
	for rows.Next() {
		var (
			t     TransactionSummary
			total string
			date  string
		)
		if err := rows.Scan(&t.ID, &t.CustomerName, &total, &date, &t.Status); err != nil {
			return nil, err
		}
		if t.Total, err = parseDecimal(total); err != nil {
			return nil, err
		}
		if t.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

const listTransactionLines = `
SELECT tl.id, i.name, tl.qty, tl.total_price
FROM transaction_line tl
LEFT JOIN items i ON i.id = tl.item_id
WHERE tl.transaction_id = ?
ORDER BY tl.id
`

func (q *Queries) ListTransactionLines(ctx context.Context, transactionID int64) ([]TransactionLineDetail, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionLines, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []TransactionLineDetail
	for rows.Next() {
		var (
			l     TransactionLineDetail
			total string
		)
		if err := rows.Scan(&l.ID, &l.ItemName, &l.Qty, &total); err != nil {
			return nil, err
		}
		if l.TotalPrice, err = parseDecimal(total); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

const countTransactionLinesByTransaction = `
SELECT COUNT(*) FROM transaction_line WHERE transaction_id = ?
`

func (q *Queries) CountTransactionLinesByTransaction(ctx context.Context, transactionID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countTransactionLinesByTransaction, transactionID).Scan(&n)
	return n, err
}

// --- Helpers ---

// Money and timestamps are stored as text so totals never round-trip
// through floats.

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse stored decimal %q: %w", s, err)
	}
	return d, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return t, nil
}
