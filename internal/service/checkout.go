package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukaan-pos/api/internal/database"
	"github.com/dukaan-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Errors returned by the checkout service.
var (
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidAmount    = errors.New("final amount must be >= 0")
	ErrEmptyLines       = errors.New("at least one line is required")
	ErrInvalidQuantity  = errors.New("quantity must be > 0")
	ErrInvalidUnitPrice = errors.New("unit price must be >= 0")
	ErrCustomerRequired = errors.New("customer is required for paid orders")
)

// TxBeginner starts a new database transaction. Satisfied by *sql.DB.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// CheckoutStore defines the DB methods needed to persist a finalized order.
// Satisfied by *database.Queries (and its WithTx variant).
type CheckoutStore interface {
	CreateTransaction(ctx context.Context, arg database.CreateTransactionParams) (database.Transaction, error)
	CreateTransactionLine(ctx context.Context, arg database.CreateTransactionLineParams) (database.TransactionLine, error)
}

// NewCheckoutStore creates a CheckoutStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewCheckoutStore func(db database.DBTX) CheckoutStore

// SaveLine is one cart line to persist.
type SaveLine struct {
	ItemID    int64
	UnitPrice decimal.Decimal
	Qty       int64
}

// SaveRequest is the input for finalizing an order. FinalAmount is the
// UI-computed payable total; the writer validates it but does not recompute
// it. Line totals, by contrast, are always recomputed from price × qty.
type SaveRequest struct {
	CustomerID  *int64
	Lines       []SaveLine
	Status      string
	FinalAmount decimal.Decimal
}

// SaveResult describes the persisted transaction.
type SaveResult struct {
	TransactionID int64
	TotalAmount   decimal.Decimal
	CreatedAt     time.Time
	Status        string
}

// CheckoutService durably records finalized orders.
type CheckoutService struct {
	db       TxBeginner
	newStore NewCheckoutStore
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(db TxBeginner, newStore NewCheckoutStore) *CheckoutService {
	return &CheckoutService{db: db, newStore: newStore}
}

// Save validates the request and writes one transaction header plus one row
// per line in a single database transaction: either every row commits or
// none do. Failures are returned as-is with no internal retry, and the
// caller's cart state is never touched here.
func (s *CheckoutService) Save(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	if err := validateStatus(req.Status); err != nil {
		return nil, err
	}
	if req.FinalAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if len(req.Lines) == 0 {
		return nil, ErrEmptyLines
	}
	// Quotations and suspends may be anonymous; a paid sale needs a customer.
	if req.Status == enum.TxStatusPaid && req.CustomerID == nil {
		return nil, ErrCustomerRequired
	}
	for i, line := range req.Lines {
		if line.Qty <= 0 {
			return nil, fmt.Errorf("lines[%d]: %w", i, ErrInvalidQuantity)
		}
		if line.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("lines[%d]: %w", i, ErrInvalidUnitPrice)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	store := s.newStore(tx)
	createdAt := time.Now().UTC()

	customerID := sql.NullInt64{}
	if req.CustomerID != nil {
		customerID = sql.NullInt64{Int64: *req.CustomerID, Valid: true}
	}

	header, err := store.CreateTransaction(ctx, database.CreateTransactionParams{
		CustomerID: customerID,
		Total:      req.FinalAmount,
		Date:       createdAt,
		Status:     req.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	for i, line := range req.Lines {
		_, err := store.CreateTransactionLine(ctx, database.CreateTransactionLineParams{
			TransactionID: header.ID,
			ItemID:        line.ItemID,
			Qty:           line.Qty,
			TotalPrice:    line.UnitPrice.Mul(decimal.NewFromInt(line.Qty)),
		})
		if err != nil {
			return nil, fmt.Errorf("create transaction line %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &SaveResult{
		TransactionID: header.ID,
		TotalAmount:   req.FinalAmount,
		CreatedAt:     createdAt,
		Status:        req.Status,
	}, nil
}

// IsValidationError reports whether the error is a known validation error
// rather than a storage failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrEmptyLines) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidUnitPrice) ||
		errors.Is(err, ErrCustomerRequired)
}

func validateStatus(s string) error {
	switch s {
	case enum.TxStatusPaid, enum.TxStatusQuotation, enum.TxStatusSuspend:
		return nil
	}
	return ErrInvalidStatus
}
