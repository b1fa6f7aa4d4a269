package port

import (
	"context"
	"time"

	"github.com/pharmacare/pos/internal/core/domain"
)

// Catalog is the in-process authority for medicines and stock levels.
// Only the sale finalizer may call Decrement.
type Catalog interface {
	Get(ctx context.Context, id string) (*domain.Medicine, error)
	List(ctx context.Context) ([]domain.Medicine, error)

	// Search matches the term against name, generic name and barcode,
	// case-insensitively.
	Search(ctx context.Context, term string) ([]domain.Medicine, error)

	Upsert(ctx context.Context, m domain.Medicine) error
	Delete(ctx context.Context, id string) error

	// Decrement removes stock for all lines as one atomic unit. Every
	// line is validated before anything is applied; on any shortage it
	// returns *domain.InsufficientStockError listing all short lines and
	// leaves stock untouched. Returns post-decrement snapshots of the
	// affected medicines.
	Decrement(ctx context.Context, lines []domain.StockLine) ([]domain.Medicine, error)

	// LowStock returns medicines at or below their reorder level.
	LowStock(ctx context.Context) ([]domain.Medicine, error)

	// ExpiringBefore returns medicines whose expiry date falls before
	// the cutoff.
	ExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.Medicine, error)
}
