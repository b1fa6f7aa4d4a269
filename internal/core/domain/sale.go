package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash      PaymentMethod = "cash"
	PaymentCard      PaymentMethod = "card"
	PaymentInsurance PaymentMethod = "insurance"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentInsurance:
		return true
	}
	return false
}

// SaleItem is a snapshot of one cart line at finalize time. It carries
// its own name and price so later catalog edits never alter a recorded
// sale.
type SaleItem struct {
	MedicineID  string
	Name        string
	BatchNumber string
	UnitPrice   decimal.Decimal
	Quantity    int
	Subtotal    decimal.Decimal
}

// Sale is the immutable record of a completed transaction. Created only
// by the finalizer; never mutated afterwards.
type Sale struct {
	ID            string
	TransactionID string
	Items         []SaleItem
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	CustomerName  string
	SoldBy        string
	CreatedAt     time.Time
}

// StockLine pairs a medicine with a quantity to remove from stock.
type StockLine struct {
	MedicineID string
	Quantity   int
}
