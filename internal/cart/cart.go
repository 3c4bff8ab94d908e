package cart

import (
	"errors"

	"github.com/dukaan-pos/api/internal/database"
	"github.com/dukaan-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Errors returned by cart operations.
var (
	ErrLineNotFound      = errors.New("line not found in cart")
	ErrUnknownAdjustment = errors.New("unknown adjustment field")
)

// Line is one cart entry: an item reference with the unit price captured at
// add time. Catalog price changes after that do not affect the line.
type Line struct {
	ItemID    int64           `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Qty       int64           `json:"qty"`
}

// Adjustments are the order-level charge fields. Percentages apply to the
// items subtotal; shipping and packing are fixed amounts.
type Adjustments struct {
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	Shipping        decimal.Decimal `json:"shipping"`
	Packing         decimal.Decimal `json:"packing"`
}

// Totals is the computed amount-due breakdown.
type Totals struct {
	ItemsSubtotal  decimal.Decimal `json:"items_subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Payable        decimal.Decimal `json:"payable"`
}

// Snapshot is a self-contained copy of a cart's full state, used for
// suspend/resume and for handing state to the UI boundary.
type Snapshot struct {
	Lines       []Line             `json:"lines"`
	Adjustments Adjustments        `json:"adjustments"`
	Customer    *database.Customer `json:"customer"`
}

// Cart is the live order accumulator. At most one instance is active per
// terminal and it is mutated by a single operator, so it carries no locking.
type Cart struct {
	lines    []Line
	adj      Adjustments
	customer *database.Customer
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddItem adds one unit of the given catalog item. An existing line for the
// same item gains quantity; otherwise a new line is appended with the item's
// current price.
func (c *Cart) AddItem(item database.Item) {
	for i := range c.lines {
		if c.lines[i].ItemID == item.ID {
			c.lines[i].Qty++
			return
		}
	}
	c.lines = append(c.lines, Line{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		Qty:       1,
	})
}

// IncrementLine adds one unit to an existing line.
func (c *Cart) IncrementLine(itemID int64) error {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines[i].Qty++
			return nil
		}
	}
	return ErrLineNotFound
}

// DecrementLine removes one unit; a line at quantity 1 is removed entirely so
// no line ever reaches quantity 0.
func (c *Cart) DecrementLine(itemID int64) error {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			if c.lines[i].Qty <= 1 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			} else {
				c.lines[i].Qty--
			}
			return nil
		}
	}
	return ErrLineNotFound
}

// RemoveLine removes a line regardless of quantity.
func (c *Cart) RemoveLine(itemID int64) error {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// SetAdjustment sets one charge field. Negative input clamps to zero.
func (c *Cart) SetAdjustment(field string, value decimal.Decimal) error {
	if value.IsNegative() {
		value = decimal.Zero
	}
	switch field {
	case enum.AdjustDiscountPercent:
		c.adj.DiscountPercent = value
	case enum.AdjustTaxPercent:
		c.adj.TaxPercent = value
	case enum.AdjustShipping:
		c.adj.Shipping = value
	case enum.AdjustPacking:
		c.adj.Packing = value
	default:
		return ErrUnknownAdjustment
	}
	return nil
}

// SetCustomer selects (or with nil, clears) the customer for this order.
func (c *Cart) SetCustomer(customer *database.Customer) {
	if customer == nil {
		c.customer = nil
		return
	}
	cp := *customer
	c.customer = &cp
}

// Customer returns the selected customer, or nil for a walk-in sale.
func (c *Cart) Customer() *database.Customer {
	if c.customer == nil {
		return nil
	}
	cp := *c.customer
	return &cp
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Adjustments returns the current charge fields.
func (c *Cart) Adjustments() Adjustments {
	return c.adj
}

// Totals computes the amount due. Tax applies to the pre-discount subtotal;
// this ordering is a fixed policy, not a configuration knob. The payable
// amount never goes below zero however large the discount.
func (c *Cart) Totals() Totals {
	subtotal := decimal.Zero
	for _, l := range c.lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Qty)))
	}

	hundred := decimal.NewFromInt(100)
	discount := subtotal.Mul(c.adj.DiscountPercent).Div(hundred)
	tax := subtotal.Mul(c.adj.TaxPercent).Div(hundred)

	payable := subtotal.Sub(discount).Add(tax).Add(c.adj.Shipping).Add(c.adj.Packing)
	if payable.IsNegative() {
		payable = decimal.Zero
	}

	return Totals{
		ItemsSubtotal:  subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		Payable:        payable,
	}
}

// Reset clears lines, adjustments, and the selected customer. Called after a
// successful paid or suspend finalize, never after a failed one.
func (c *Cart) Reset() {
	c.lines = nil
	c.adj = Adjustments{}
	c.customer = nil
}

// Snapshot returns a deep copy of the cart's state.
func (c *Cart) Snapshot() Snapshot {
	return Snapshot{
		Lines:       c.Lines(),
		Adjustments: c.adj,
		Customer:    c.Customer(),
	}
}

// Restore replaces the cart's state with the given snapshot.
func (c *Cart) Restore(s Snapshot) {
	c.lines = make([]Line, len(s.Lines))
	copy(c.lines, s.Lines)
	c.adj = s.Adjustments
	c.SetCustomer(s.Customer)
}
