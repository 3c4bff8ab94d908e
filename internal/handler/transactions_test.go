package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukaan-pos/api/internal/database"
	"github.com/dukaan-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCheckoutServicer implements CheckoutServicer with a function field.
type mockCheckoutServicer struct {
	SaveFn func(ctx context.Context, req service.SaveRequest) (*service.SaveResult, error)
}

func (m *mockCheckoutServicer) Save(ctx context.Context, req service.SaveRequest) (*service.SaveResult, error) {
	return m.SaveFn(ctx, req)
}

// mockTransactionStore implements TransactionStore with function fields.
type mockTransactionStore struct {
	ListTransactionsFn     func(ctx context.Context) ([]database.TransactionSummary, error)
	ListTransactionLinesFn func(ctx context.Context, transactionID int64) ([]database.TransactionLineDetail, error)
}

func (m *mockTransactionStore) ListTransactions(ctx context.Context) ([]database.TransactionSummary, error) {
	return m.ListTransactionsFn(ctx)
}

func (m *mockTransactionStore) ListTransactionLines(ctx context.Context, transactionID int64) ([]database.TransactionLineDetail, error) {
	return m.ListTransactionLinesFn(ctx, transactionID)
}

func newTransactionServer(t *testing.T, svc CheckoutServicer, store TransactionStore, hub *mockHub) *httptest.Server {
	t.Helper()
	h := NewTransactionHandler(svc, store, hub)
	r := chi.NewRouter()
	r.Route("/transactions", h.RegisterRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestSaveTransaction_Success(t *testing.T) {
	var captured service.SaveRequest
	svc := &mockCheckoutServicer{
		SaveFn: func(_ context.Context, req service.SaveRequest) (*service.SaveResult, error) {
			captured = req
			return &service.SaveResult{
				TransactionID: 7,
				TotalAmount:   decimal.NewFromInt(800),
				CreatedAt:     time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
				Status:        "paid",
			}, nil
		},
	}
	hub := &mockHub{}
	srv := newTransactionServer(t, svc, &mockTransactionStore{}, hub)

	resp := doJSON(t, http.MethodPost, srv.URL+"/transactions", map[string]any{
		"customer_id":  1,
		"status":       "paid",
		"final_amount": "800",
		"items": []map[string]any{
			{"item_id": 1, "unit_price": "300", "qty": 2},
			{"item_id": 2, "unit_price": "200", "qty": 1},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decode[saveResponse](t, resp)
	assert.EqualValues(t, 7, body.TransactionID)
	assert.Equal(t, "800.00", body.TotalAmount)
	assert.Equal(t, "paid", body.Status)

	require.NotNil(t, captured.CustomerID)
	assert.EqualValues(t, 1, *captured.CustomerID)
	require.Len(t, captured.Lines, 2)
	assert.True(t, captured.Lines[0].UnitPrice.Equal(decimal.NewFromInt(300)))
	assert.EqualValues(t, 2, captured.Lines[0].Qty)
	assert.True(t, captured.FinalAmount.Equal(decimal.NewFromInt(800)))

	assert.Equal(t, []string{"transaction.created"}, hub.eventTypes())
}

func TestSaveTransaction_ValidationErrorIs400(t *testing.T) {
	svc := &mockCheckoutServicer{
		SaveFn: func(_ context.Context, _ service.SaveRequest) (*service.SaveResult, error) {
			return nil, service.ErrCustomerRequired
		},
	}
	hub := &mockHub{}
	srv := newTransactionServer(t, svc, &mockTransactionStore{}, hub)

	resp := doJSON(t, http.MethodPost, srv.URL+"/transactions", map[string]any{
		"status":       "paid",
		"final_amount": "100",
		"items":        []map[string]any{{"item_id": 1, "unit_price": "100", "qty": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, hub.events, "failed save must not broadcast")
}

func TestSaveTransaction_StorageErrorIs500(t *testing.T) {
	svc := &mockCheckoutServicer{
		SaveFn: func(_ context.Context, _ service.SaveRequest) (*service.SaveResult, error) {
			return nil, errors.New("disk full")
		},
	}
	srv := newTransactionServer(t, svc, &mockTransactionStore{}, &mockHub{})

	resp := doJSON(t, http.MethodPost, srv.URL+"/transactions", map[string]any{
		"status":       "paid",
		"final_amount": "100",
		"items":        []map[string]any{{"item_id": 1, "unit_price": "100", "qty": 1}},
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestListTransactions_WalkInForNullCustomer(t *testing.T) {
	store := &mockTransactionStore{
		ListTransactionsFn: func(_ context.Context) ([]database.TransactionSummary, error) {
			return []database.TransactionSummary{
				{
					ID:           2,
					CustomerName: sql.NullString{String: "Ali Khan", Valid: true},
					Total:        decimal.NewFromInt(800),
					Date:         time.Now().UTC(),
					Status:       "paid",
				},
				{
					ID:     1,
					Total:  decimal.NewFromInt(250),
					Date:   time.Now().UTC(),
					Status: "quotation",
				},
			}, nil
		},
	}
	srv := newTransactionServer(t, &mockCheckoutServicer{}, store, &mockHub{})

	resp := doJSON(t, http.MethodGet, srv.URL+"/transactions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[[]transactionResponse](t, resp)
	require.Len(t, body, 2)
	assert.Equal(t, "Ali Khan", body[0].CustomerName)
	assert.Equal(t, "800.00", body[0].Total)
	assert.Equal(t, "Walk-in", body[1].CustomerName)
}

func TestListTransactionLines(t *testing.T) {
	store := &mockTransactionStore{
		ListTransactionLinesFn: func(_ context.Context, transactionID int64) ([]database.TransactionLineDetail, error) {
			assert.EqualValues(t, 5, transactionID)
			return []database.TransactionLineDetail{
				{
					ID:         1,
					ItemName:   sql.NullString{String: "Pasta", Valid: true},
					Qty:        2,
					TotalPrice: decimal.NewFromInt(600),
				},
				{
					ID:         2,
					Qty:        1,
					TotalPrice: decimal.NewFromInt(100),
				},
			}, nil
		},
	}
	srv := newTransactionServer(t, &mockCheckoutServicer{}, store, &mockHub{})

	resp := doJSON(t, http.MethodGet, srv.URL+"/transactions/5/lines", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[[]transactionLineResponse](t, resp)
	require.Len(t, body, 2)
	assert.Equal(t, "Pasta", body[0].ItemName)
	assert.Equal(t, "600.00", body[0].TotalPrice)
	assert.Equal(t, "Unknown item", body[1].ItemName, "deleted catalog items keep their history rows")
}

func TestListTransactionLines_BadID(t *testing.T) {
	srv := newTransactionServer(t, &mockCheckoutServicer{}, &mockTransactionStore{}, &mockHub{})

	resp := doJSON(t, http.MethodGet, srv.URL+"/transactions/abc/lines", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
