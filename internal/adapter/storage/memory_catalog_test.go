package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacare/pos/internal/core/domain"
)

func medicine(id, name string, stock int) domain.Medicine {
	return domain.Medicine{
		ID:           id,
		Name:         name,
		GenericName:  "Generic " + name,
		Price:        decimal.RequireFromString("5.99"),
		Stock:        stock,
		ReorderLevel: 10,
	}
}

func TestMemoryCatalog_UpsertAndGet(t *testing.T) {
	catalog := NewMemoryCatalog()
	ctx := context.Background()

	require.NoError(t, catalog.Upsert(ctx, medicine("med-1", "Paracetamol 500mg", 85)))

	got, err := catalog.Get(ctx, "med-1")
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 500mg", got.Name)
	assert.Equal(t, 85, got.Stock)

	// Get returns a copy; mutating it must not touch the catalog.
	got.Stock = 0
	again, err := catalog.Get(ctx, "med-1")
	require.NoError(t, err)
	assert.Equal(t, 85, again.Stock)
}

func TestMemoryCatalog_Upsert_RejectsInvalid(t *testing.T) {
	catalog := NewMemoryCatalog()

	bad := medicine("med-1", "Paracetamol 500mg", 10)
	bad.Price = decimal.RequireFromString("-1")

	err := catalog.Upsert(context.Background(), bad)
	assert.ErrorIs(t, err, domain.ErrInvalidMedicine)
}

func TestMemoryCatalog_Get_NotFound(t *testing.T) {
	catalog := NewMemoryCatalog()

	_, err := catalog.Get(context.Background(), "not-here")
	assert.ErrorIs(t, err, domain.ErrMedicineNotFound)
}

func TestMemoryCatalog_Search(t *testing.T) {
	catalog := NewMemoryCatalog()
	ctx := context.Background()

	para := medicine("med-1", "Paracetamol 500mg", 85)
	para.GenericName = "Acetaminophen"
	para.Barcode = "123456789"
	require.NoError(t, catalog.Upsert(ctx, para))
	require.NoError(t, catalog.Upsert(ctx, medicine("med-2", "Ibuprofen 400mg", 50)))

	byName, err := catalog.Search(ctx, "paraceta")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "med-1", byName[0].ID)

	byGeneric, err := catalog.Search(ctx, "acetamino")
	require.NoError(t, err)
	require.Len(t, byGeneric, 1)

	byBarcode, err := catalog.Search(ctx, "123456789")
	require.NoError(t, err)
	require.Len(t, byBarcode, 1)

	all, err := catalog.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	// Sorted by name.
	assert.Equal(t, "Ibuprofen 400mg", all[0].Name)
}

func TestMemoryCatalog_Decrement_Success(t *testing.T) {
	catalog := NewMemoryCatalog()
	ctx := context.Background()
	require.NoError(t, catalog.Upsert(ctx, medicine("med-1", "Paracetamol 500mg", 85)))
	require.NoError(t, catalog.Upsert(ctx, medicine("med-2", "Ibuprofen 400mg", 50)))

	updated, err := catalog.Decrement(ctx, []domain.StockLine{
		{MedicineID: "med-1", Quantity: 2},
		{MedicineID: "med-2", Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, updated, 2)
	assert.Equal(t, 83, updated[0].Stock)
	assert.Equal(t, 49, updated[1].Stock)

	m, err := catalog.Get(ctx, "med-1")
	require.NoError(t, err)
	assert.Equal(t, 83, m.Stock)
}

func TestMemoryCatalog_Decrement_ListsAllShortagesAndAppliesNothing(t *testing.T) {
	catalog := NewMemoryCatalog()
	ctx := context.Background()
	require.NoError(t, catalog.Upsert(ctx, medicine("med-1", "Paracetamol 500mg", 1)))
	require.NoError(t, catalog.Upsert(ctx, medicine("med-2", "Ibuprofen 400mg", 2)))
	require.NoError(t, catalog.Upsert(ctx, medicine("med-3", "Cetirizine 10mg", 50)))

	_, err := catalog.Decrement(ctx, []domain.StockLine{
		{MedicineID: "med-1", Quantity: 5},
		{MedicineID: "med-2", Quantity: 3},
		{MedicineID: "med-3", Quantity: 1},
	})

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortages, 2)
	assert.Equal(t, domain.Shortage{MedicineID: "med-1", Requested: 5, Available: 1}, stockErr.Shortages[0])
	assert.Equal(t, domain.Shortage{MedicineID: "med-2", Requested: 3, Available: 2}, stockErr.Shortages[1])

	// Nothing was applied, not even the satisfiable line.
	for id, want := range map[string]int{"med-1": 1, "med-2": 2, "med-3": 50} {
		m, err := catalog.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, m.Stock, "stock of %s", id)
	}
}

func TestMemoryCatalog_Decrement_UnknownMedicine(t *testing.T) {
	catalog := NewMemoryCatalog()

	_, err := catalog.Decrement(context.Background(), []domain.StockLine{
		{MedicineID: "not-here", Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrMedicineNotFound)
}

func TestMemoryCatalog_Decrement_InvalidQuantity(t *testing.T) {
	catalog := NewMemoryCatalog()
	ctx := context.Background()
	require.NoError(t, catalog.Upsert(ctx, medicine("med-1", "Paracetamol 500mg", 10)))

	_, err := catalog.Decrement(ctx, []domain.StockLine{{MedicineID: "med-1", Quantity: 0}})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = catalog.Decrement(ctx, []domain.StockLine{{MedicineID: "med-1", Quantity: -2}})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	m, err := catalog.Get(ctx, "med-1")
	require.NoError(t, err)
	assert.Equal(t, 10, m.Stock)
}

func TestMemoryCatalog_LowStock(t *testing.T) {
	catalog := NewMemoryCatalog()
	ctx := context.Background()

	low := medicine("med-1", "Paracetamol 500mg", 5) // reorder level 10
	ok := medicine("med-2", "Ibuprofen 400mg", 50)
	atLevel := medicine("med-3", "Cetirizine 10mg", 10)
	require.NoError(t, catalog.Upsert(ctx, low))
	require.NoError(t, catalog.Upsert(ctx, ok))
	require.NoError(t, catalog.Upsert(ctx, atLevel))

	result, err := catalog.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "med-3", result[0].ID) // Cetirizine sorts first by name
	assert.Equal(t, "med-1", result[1].ID)
}

func TestMemoryCatalog_ExpiringBefore(t *testing.T) {
	catalog := NewMemoryCatalog()
	ctx := context.Background()
	now := time.Now()

	soon := medicine("med-1", "Paracetamol 500mg", 10)
	soon.ExpiryDate = now.AddDate(0, 1, 0)
	later := medicine("med-2", "Ibuprofen 400mg", 10)
	later.ExpiryDate = now.AddDate(2, 0, 0)
	noDate := medicine("med-3", "Cetirizine 10mg", 10)
	require.NoError(t, catalog.Upsert(ctx, soon))
	require.NoError(t, catalog.Upsert(ctx, later))
	require.NoError(t, catalog.Upsert(ctx, noDate))

	result, err := catalog.ExpiringBefore(ctx, now.AddDate(0, 3, 0))
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "med-1", result[0].ID)
}

func TestMemoryCatalog_Delete(t *testing.T) {
	catalog := NewMemoryCatalog()
	ctx := context.Background()
	require.NoError(t, catalog.Upsert(ctx, medicine("med-1", "Paracetamol 500mg", 10)))

	require.NoError(t, catalog.Delete(ctx, "med-1"))

	_, err := catalog.Get(ctx, "med-1")
	assert.ErrorIs(t, err, domain.ErrMedicineNotFound)

	assert.ErrorIs(t, catalog.Delete(ctx, "med-1"), domain.ErrMedicineNotFound)
}
