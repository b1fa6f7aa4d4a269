package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pharmacare/pos/internal/core/domain"
)

// MemoryCatalog implements port.Catalog with in-memory storage. It is
// the stock authority while the process runs; the database is hydrated
// from and written through by the services that use it.
type MemoryCatalog struct {
	mu        sync.RWMutex
	medicines map[string]*domain.Medicine
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		medicines: make(map[string]*domain.Medicine),
	}
}

func (c *MemoryCatalog) Get(ctx context.Context, id string) (*domain.Medicine, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, exists := c.medicines[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrMedicineNotFound, id)
	}
	copied := *m
	return &copied, nil
}

func (c *MemoryCatalog) List(ctx context.Context) ([]domain.Medicine, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]domain.Medicine, 0, len(c.medicines))
	for _, m := range c.medicines {
		result = append(result, *m)
	}
	sortByName(result)
	return result, nil
}

func (c *MemoryCatalog) Search(ctx context.Context, term string) ([]domain.Medicine, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return c.List(ctx)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]domain.Medicine, 0)
	for _, m := range c.medicines {
		if strings.Contains(strings.ToLower(m.Name), term) ||
			strings.Contains(strings.ToLower(m.GenericName), term) ||
			strings.Contains(strings.ToLower(m.Barcode), term) {
			result = append(result, *m)
		}
	}
	sortByName(result)
	return result, nil
}

func (c *MemoryCatalog) Upsert(ctx context.Context, m domain.Medicine) error {
	if err := m.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	copied := m
	c.medicines[m.ID] = &copied
	return nil
}

func (c *MemoryCatalog) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.medicines[id]; !exists {
		return fmt.Errorf("%w: %s", domain.ErrMedicineNotFound, id)
	}
	delete(c.medicines, id)
	return nil
}

// Decrement removes stock for all lines under a single lock. The first
// pass validates every line, the second applies; nothing is changed
// unless every line can be satisfied.
func (c *MemoryCatalog) Decrement(ctx context.Context, lines []domain.StockLine) ([]domain.Medicine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shortages []domain.Shortage
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: %d for %s", domain.ErrInvalidQuantity, line.Quantity, line.MedicineID)
		}
		m, exists := c.medicines[line.MedicineID]
		if !exists {
			return nil, fmt.Errorf("%w: %s", domain.ErrMedicineNotFound, line.MedicineID)
		}
		if m.Stock < line.Quantity {
			shortages = append(shortages, domain.Shortage{
				MedicineID: line.MedicineID,
				Requested:  line.Quantity,
				Available:  m.Stock,
			})
		}
	}
	if len(shortages) > 0 {
		return nil, &domain.InsufficientStockError{Shortages: shortages}
	}

	now := time.Now()
	updated := make([]domain.Medicine, 0, len(lines))
	for _, line := range lines {
		m := c.medicines[line.MedicineID]
		m.Stock -= line.Quantity
		m.UpdatedAt = now
		updated = append(updated, *m)
	}
	return updated, nil
}

func (c *MemoryCatalog) LowStock(ctx context.Context) ([]domain.Medicine, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]domain.Medicine, 0)
	for _, m := range c.medicines {
		if m.LowStock() {
			result = append(result, *m)
		}
	}
	sortByName(result)
	return result, nil
}

func (c *MemoryCatalog) ExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.Medicine, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]domain.Medicine, 0)
	for _, m := range c.medicines {
		if m.ExpiresBefore(cutoff) {
			result = append(result, *m)
		}
	}
	sortByName(result)
	return result, nil
}

func sortByName(medicines []domain.Medicine) {
	sort.Slice(medicines, func(i, j int) bool {
		if medicines[i].Name == medicines[j].Name {
			return medicines[i].ID < medicines[j].ID
		}
		return medicines[i].Name < medicines[j].Name
	})
}
