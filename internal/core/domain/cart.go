package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one medicine in the cart with the quantity to dispense.
// The medicine is captured from the catalog when the line is created.
type CartLine struct {
	Medicine Medicine
	Quantity int
}

// Subtotal is quantity times unit price.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Medicine.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the mutable selection for one pending transaction. Lines are
// keyed by medicine ID so repeated adds increment the existing line, and
// insertion order is kept so receipts list items in the order they were
// rung up. Not safe for concurrent use; CartService serializes access.
type Cart struct {
	CashierID string
	CreatedAt time.Time
	UpdatedAt time.Time

	lines map[string]*CartLine
	order []string
}

func NewCart(cashierID string) *Cart {
	now := time.Now()
	return &Cart{
		CashierID: cashierID,
		CreatedAt: now,
		UpdatedAt: now,
		lines:     make(map[string]*CartLine),
	}
}

// AddItem increments the quantity of an existing line by one, or inserts
// a new line with quantity one. Stock is not checked here; it is reserved
// only at finalize.
func (c *Cart) AddItem(m Medicine) {
	if line, ok := c.lines[m.ID]; ok {
		line.Quantity++
	} else {
		c.lines[m.ID] = &CartLine{Medicine: m, Quantity: 1}
		c.order = append(c.order, m.ID)
	}
	c.UpdatedAt = time.Now()
}

// ChangeQuantity adjusts a line's quantity by delta, clamped at zero.
// A line reaching zero is removed. Unknown medicine IDs are a no-op.
func (c *Cart) ChangeQuantity(medicineID string, delta int) {
	line, ok := c.lines[medicineID]
	if !ok {
		return
	}

	quantity := line.Quantity + delta
	if quantity <= 0 {
		delete(c.lines, medicineID)
		for i, id := range c.order {
			if id == medicineID {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	} else {
		line.Quantity = quantity
	}
	c.UpdatedAt = time.Now()
}

// Clear empties all lines. Called after a successful finalize.
func (c *Cart) Clear() {
	c.lines = make(map[string]*CartLine)
	c.order = nil
	c.UpdatedAt = time.Now()
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Len() int {
	return len(c.lines)
}

// Quantity returns the current quantity for a medicine, zero if absent.
func (c *Cart) Quantity(medicineID string) int {
	if line, ok := c.lines[medicineID]; ok {
		return line.Quantity
	}
	return 0
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []CartLine {
	lines := make([]CartLine, 0, len(c.order))
	for _, id := range c.order {
		lines = append(lines, *c.lines[id])
	}
	return lines
}

// Total is recomputed on every call so it can never drift from the lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, id := range c.order {
		total = total.Add(c.lines[id].Subtotal())
	}
	return total
}
