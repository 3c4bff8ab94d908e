package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueries(t *testing.T) (*Queries, *sql.DB) {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(db))
	return New(db), db
}

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

func TestCustomers_CreateListGet(t *testing.T) {
	q, _ := newTestQueries(t)
	ctx := context.Background()

	_, err := q.CreateCustomer(ctx, "Ali Khan", "03001234567")
	require.NoError(t, err)
	sara, err := q.CreateCustomer(ctx, "Sara Ahmed", "03211234567")
	require.NoError(t, err)

	customers, err := q.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Ali Khan", customers[0].Name)
	assert.Equal(t, "Sara Ahmed", customers[1].Name)

	got, err := q.GetCustomer(ctx, sara.ID)
	require.NoError(t, err)
	assert.Equal(t, sara, got)

	n, err := q.CountCustomers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestGetCustomer_NotFound(t *testing.T) {
	q, _ := newTestQueries(t)
	_, err := q.GetCustomer(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestItems_CreateListGet(t *testing.T) {
	q, _ := newTestQueries(t)
	ctx := context.Background()

	created, err := q.CreateItem(ctx, CreateItemParams{
		Name:     "Pizza",
		Price:    d(t, "800.50"),
		Image:    "/items/food3.jpg",
		Category: "Food",
	})
	require.NoError(t, err)

	got, err := q.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pizza", got.Name)
	assert.True(t, got.Price.Equal(d(t, "800.50")), "price must round-trip exactly")
	assert.Equal(t, "Food", got.Category)

	items, err := q.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestGetItem_NotFound(t *testing.T) {
	q, _ := newTestQueries(t)
	_, err := q.GetItem(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTransactions_RoundTrip(t *testing.T) {
	q, _ := newTestQueries(t)
	ctx := context.Background()

	cust, err := q.CreateCustomer(ctx, "Noman", "03331234567")
	require.NoError(t, err)
	pasta, err := q.CreateItem(ctx, CreateItemParams{Name: "Pasta", Price: d(t, "300"), Category: "Food"})
	require.NoError(t, err)

	date := time.Date(2026, 8, 30, 14, 30, 0, 123456000, time.UTC)
	tx, err := q.CreateTransaction(ctx, CreateTransactionParams{
		CustomerID: sql.NullInt64{Int64: cust.ID, Valid: true},
		Total:      d(t, "600"),
		Date:       date,
		Status:     "paid",
	})
	require.NoError(t, err)

	_, err = q.CreateTransactionLine(ctx, CreateTransactionLineParams{
		TransactionID: tx.ID,
		ItemID:        pasta.ID,
		Qty:           2,
		TotalPrice:    d(t, "600"),
	})
	require.NoError(t, err)

	txs, err := q.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Noman", txs[0].CustomerName.String)
	assert.True(t, txs[0].Total.Equal(d(t, "600")))
	assert.True(t, txs[0].Date.Equal(date), "timestamp must round-trip exactly")
	assert.Equal(t, "paid", txs[0].Status)

	lines, err := q.ListTransactionLines(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Pasta", lines[0].ItemName.String)
	assert.EqualValues(t, 2, lines[0].Qty)
	assert.True(t, lines[0].TotalPrice.Equal(d(t, "600")))

	n, err := q.CountTransactionLinesByTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestListTransactions_NewestFirst(t *testing.T) {
	q, _ := newTestQueries(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := q.CreateTransaction(ctx, CreateTransactionParams{
			Total:  d(t, "100"),
			Date:   time.Now().UTC(),
			Status: "quotation",
		})
		require.NoError(t, err)
	}

	txs, err := q.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Greater(t, txs[0].ID, txs[1].ID)
	assert.Greater(t, txs[1].ID, txs[2].ID)
}

func TestListTransactions_AnonymousCustomerIsNull(t *testing.T) {
	q, _ := newTestQueries(t)
	ctx := context.Background()

	_, err := q.CreateTransaction(ctx, CreateTransactionParams{
		CustomerID: sql.NullInt64{},
		Total:      d(t, "250"),
		Date:       time.Now().UTC(),
		Status:     "suspend",
	})
	require.NoError(t, err)

	txs, err := q.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.False(t, txs[0].CustomerName.Valid)
}

func TestCreateTransaction_RejectsUnknownStatus(t *testing.T) {
	q, _ := newTestQueries(t)
	_, err := q.CreateTransaction(context.Background(), CreateTransactionParams{
		Total:  d(t, "100"),
		Date:   time.Now().UTC(),
		Status: "refunded",
	})
	assert.Error(t, err, "status CHECK constraint must reject unknown values")
}

func TestCreateTransactionLine_RejectsZeroQty(t *testing.T) {
	q, _ := newTestQueries(t)
	ctx := context.Background()

	item, err := q.CreateItem(ctx, CreateItemParams{Name: "Soda", Price: d(t, "200"), Category: "Drink"})
	require.NoError(t, err)
	tx, err := q.CreateTransaction(ctx, CreateTransactionParams{
		Total:  d(t, "0"),
		Date:   time.Now().UTC(),
		Status: "paid",
	})
	require.NoError(t, err)

	_, err = q.CreateTransactionLine(ctx, CreateTransactionLineParams{
		TransactionID: tx.ID,
		ItemID:        item.ID,
		Qty:           0,
		TotalPrice:    d(t, "0"),
	})
	assert.Error(t, err, "qty CHECK constraint must reject zero")
}

func TestForeignKeys_Enforced(t *testing.T) {
	q, _ := newTestQueries(t)
	_, err := q.CreateTransaction(context.Background(), CreateTransactionParams{
		CustomerID: sql.NullInt64{Int64: 999, Valid: true},
		Total:      d(t, "100"),
		Date:       time.Now().UTC(),
		Status:     "paid",
	})
	assert.Error(t, err, "foreign keys must be on in the connection DSN")
}

func TestWithTx_RollbackDiscardsWrites(t *testing.T) {
	q, db := newTestQueries(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	_, err = q.WithTx(tx).CreateCustomer(ctx, "Bilal Shah", "03061234567")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	n, err := q.CountCustomers(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMigrate_Idempotent(t *testing.T) {
	_, db := newTestQueries(t)
	assert.NoError(t, Migrate(db), "re-running migrations must be a no-op")
}
