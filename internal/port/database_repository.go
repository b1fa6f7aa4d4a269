package port

import (
	"context"
	"time"

	"github.com/pharmacare/pos/internal/core/domain"
)

// SaleRepository persists finalized sales in the system of record.
type SaleRepository interface {
	// CreateSale persists a sale and applies its stock decrement to the
	// medicines table in one transaction.
	CreateSale(ctx context.Context, sale domain.Sale) error

	// SalesBetween returns sales with from <= created_at < to, oldest
	// first, items included.
	SalesBetween(ctx context.Context, from, to time.Time) ([]domain.Sale, error)

	// ListSales returns the most recent sales, newest first.
	ListSales(ctx context.Context, limit int) ([]domain.Sale, error)
}

// MedicineRepository is the durable side of the catalog. The in-memory
// catalog is hydrated from it at startup and written through on edits.
type MedicineRepository interface {
	ListMedicines(ctx context.Context) ([]domain.Medicine, error)
	UpsertMedicine(ctx context.Context, m domain.Medicine) error
	DeleteMedicine(ctx context.Context, id string) error
}
