package service

import (
	"context"
	"errors"
	"testing"

	"github.com/pharmacare/pos/internal/core/domain"
)

func TestCartService_AddItemAndGet(t *testing.T) {
	paracetamol := domain.Medicine{ID: "med-a", Name: "Paracetamol 500mg", Price: price("5.99"), Stock: 10}
	catalog := seedCatalog(t, paracetamol)

	sales := NewSaleService(catalog, newMockCacheRepo(), 10)
	defer sales.Close()
	carts := NewCartService(catalog, sales)

	if err := carts.AddItem(context.Background(), "cashier-1", "med-a"); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if err := carts.AddItem(context.Background(), "cashier-1", "med-a"); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	lines, total := carts.Get("cashier-1")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", lines[0].Quantity)
	}
	if !total.Equal(price("11.98")) {
		t.Errorf("expected total 11.98, got %s", total)
	}

	// Carts are per cashier.
	otherLines, _ := carts.Get("cashier-2")
	if len(otherLines) != 0 {
		t.Errorf("expected empty cart for other cashier, got %d lines", len(otherLines))
	}
}

func TestCartService_AddItem_UnknownMedicine(t *testing.T) {
	catalog := seedCatalog(t)
	sales := NewSaleService(catalog, newMockCacheRepo(), 10)
	defer sales.Close()
	carts := NewCartService(catalog, sales)

	err := carts.AddItem(context.Background(), "cashier-1", "not-here")
	if !errors.Is(err, domain.ErrMedicineNotFound) {
		t.Errorf("expected ErrMedicineNotFound, got: %v", err)
	}
}

func TestCartService_ChangeQuantityToZeroRemovesLine(t *testing.T) {
	paracetamol := domain.Medicine{ID: "med-a", Name: "Paracetamol 500mg", Price: price("5.99"), Stock: 10}
	catalog := seedCatalog(t, paracetamol)
	sales := NewSaleService(catalog, newMockCacheRepo(), 10)
	defer sales.Close()
	carts := NewCartService(catalog, sales)

	if err := carts.AddItem(context.Background(), "cashier-1", "med-a"); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	carts.ChangeQuantity("cashier-1", "med-a", -1)

	lines, total := carts.Get("cashier-1")
	if len(lines) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(lines))
	}
	if !total.IsZero() {
		t.Errorf("expected zero total, got %s", total)
	}
}

func TestCartService_Checkout_ClearsCartOnSuccess(t *testing.T) {
	paracetamol := domain.Medicine{ID: "med-a", Name: "Paracetamol 500mg", Price: price("5.99"), Stock: 10}
	catalog := seedCatalog(t, paracetamol)
	sales := NewSaleService(catalog, newMockCacheRepo(), 10)
	defer sales.Close()
	carts := NewCartService(catalog, sales)

	if err := carts.AddItem(context.Background(), "cashier-1", "med-a"); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	sale, err := carts.Checkout(context.Background(), "cashier-1", testPayment("req-1"))
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if !sale.Total.Equal(price("5.99")) {
		t.Errorf("expected total 5.99, got %s", sale.Total)
	}

	lines, _ := carts.Get("cashier-1")
	if len(lines) != 0 {
		t.Errorf("expected cart cleared after checkout, got %d lines", len(lines))
	}
}

func TestCartService_Checkout_FailureLeavesCartIntact(t *testing.T) {
	paracetamol := domain.Medicine{ID: "med-a", Name: "Paracetamol 500mg", Price: price("5.99"), Stock: 1}
	catalog := seedCatalog(t, paracetamol)
	sales := NewSaleService(catalog, newMockCacheRepo(), 10)
	defer sales.Close()
	carts := NewCartService(catalog, sales)

	if err := carts.AddItem(context.Background(), "cashier-1", "med-a"); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	carts.ChangeQuantity("cashier-1", "med-a", 4) // now asking for 5, only 1 in stock

	_, err := carts.Checkout(context.Background(), "cashier-1", testPayment("req-1"))
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got: %v", err)
	}

	lines, _ := carts.Get("cashier-1")
	if len(lines) != 1 || lines[0].Quantity != 5 {
		t.Errorf("expected cart untouched after failed checkout, got %v", lines)
	}

	m, _ := catalog.Get(context.Background(), "med-a")
	if m.Stock != 1 {
		t.Errorf("expected stock untouched at 1, got %d", m.Stock)
	}
}

func TestCartService_Checkout_EmptyCart(t *testing.T) {
	catalog := seedCatalog(t)
	sales := NewSaleService(catalog, newMockCacheRepo(), 10)
	defer sales.Close()
	carts := NewCartService(catalog, sales)

	_, err := carts.Checkout(context.Background(), "cashier-1", testPayment("req-1"))
	if !errors.Is(err, ErrEmptyCart) {
		t.Errorf("expected ErrEmptyCart, got: %v", err)
	}
}
