package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMedicineNotFound = errors.New("medicine not found")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidMedicine  = errors.New("invalid medicine")
)

// Shortage describes one line that asked for more stock than the catalog
// holds.
type Shortage struct {
	MedicineID string
	Requested  int
	Available  int
}

// InsufficientStockError lists every short line of a rejected decrement,
// so callers can report all of them at once.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s (requested %d, available %d)", s.MedicineID, s.Requested, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}
