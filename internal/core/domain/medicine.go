package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Medicine is one sellable catalog entry. Stock is mutated only by the
// catalog's atomic decrement during finalize or by inventory edits.
type Medicine struct {
	ID           string
	Name         string
	GenericName  string
	Barcode      string
	Category     string
	DosageForm   string
	Strength     string
	Price        decimal.Decimal
	Stock        int
	ReorderLevel int
	BatchNumber  string
	ExpiryDate   time.Time
	Location     string
	Supplier     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate rejects shapes that must never enter the catalog.
func (m *Medicine) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidMedicine)
	}
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMedicine)
	}
	if m.Price.IsNegative() {
		return fmt.Errorf("%w: %s price must not be negative", ErrInvalidMedicine, m.ID)
	}
	if m.Stock < 0 {
		return fmt.Errorf("%w: %s stock must not be negative", ErrInvalidMedicine, m.ID)
	}
	if m.ReorderLevel < 0 {
		return fmt.Errorf("%w: %s reorder level must not be negative", ErrInvalidMedicine, m.ID)
	}
	return nil
}

// LowStock reports whether the medicine is at or below its reorder level.
func (m *Medicine) LowStock() bool {
	return m.Stock <= m.ReorderLevel
}

// ExpiresBefore reports whether the medicine expires before the cutoff.
// Medicines with no recorded expiry date never report as expiring.
func (m *Medicine) ExpiresBefore(cutoff time.Time) bool {
	return !m.ExpiryDate.IsZero() && m.ExpiryDate.Before(cutoff)
}
