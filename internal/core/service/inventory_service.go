package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pharmacare/pos/internal/core/domain"
	"github.com/pharmacare/pos/internal/port"
)

// InventoryService manages the medicine catalog. Edits go to the
// database first and are mirrored into the in-memory catalog, which
// stays the stock authority while the process runs.
type InventoryService struct {
	catalog port.Catalog
	repo    port.MedicineRepository
}

func NewInventoryService(catalog port.Catalog, repo port.MedicineRepository) *InventoryService {
	return &InventoryService{catalog: catalog, repo: repo}
}

// Load hydrates the in-memory catalog from the database. Called once at
// startup before the server accepts requests.
func (s *InventoryService) Load(ctx context.Context) (int, error) {
	medicines, err := s.repo.ListMedicines(ctx)
	if err != nil {
		return 0, fmt.Errorf("load medicines: %w", err)
	}
	for _, m := range medicines {
		if err := s.catalog.Upsert(ctx, m); err != nil {
			return 0, fmt.Errorf("hydrate catalog: %w", err)
		}
	}
	return len(medicines), nil
}

// AddMedicine registers a new medicine. A missing ID gets a generated
// one.
func (s *InventoryService) AddMedicine(ctx context.Context, m domain.Medicine) (*domain.Medicine, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertMedicine(ctx, m); err != nil {
		return nil, err
	}
	if err := s.catalog.Upsert(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMedicine replaces an existing medicine's fields. The original
// creation time is preserved.
func (s *InventoryService) UpdateMedicine(ctx context.Context, m domain.Medicine) (*domain.Medicine, error) {
	existing, err := s.catalog.Get(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = time.Now()

	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertMedicine(ctx, m); err != nil {
		return nil, err
	}
	if err := s.catalog.Upsert(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *InventoryService) DeleteMedicine(ctx context.Context, id string) error {
	if _, err := s.catalog.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteMedicine(ctx, id); err != nil {
		return err
	}
	return s.catalog.Delete(ctx, id)
}

func (s *InventoryService) GetMedicine(ctx context.Context, id string) (*domain.Medicine, error) {
	return s.catalog.Get(ctx, id)
}

func (s *InventoryService) SearchMedicines(ctx context.Context, term string) ([]domain.Medicine, error) {
	return s.catalog.Search(ctx, term)
}

func (s *InventoryService) LowStock(ctx context.Context) ([]domain.Medicine, error) {
	return s.catalog.LowStock(ctx)
}

// ExpiringWithin returns medicines whose expiry date falls inside the
// next given number of days.
func (s *InventoryService) ExpiringWithin(ctx context.Context, days int) ([]domain.Medicine, error) {
	return s.catalog.ExpiringBefore(ctx, time.Now().AddDate(0, 0, days))
}
