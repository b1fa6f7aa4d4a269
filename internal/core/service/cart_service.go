package service

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/pharmacare/pos/internal/core/domain"
	"github.com/pharmacare/pos/internal/port"
)

// CartService owns the per-cashier carts. All mutations run under one
// mutex, and Checkout holds it across finalize and clear so no cart
// change can interleave with a sale in progress.
type CartService struct {
	catalog port.Catalog
	sales   *SaleService

	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func NewCartService(catalog port.Catalog, sales *SaleService) *CartService {
	return &CartService{
		catalog: catalog,
		sales:   sales,
		carts:   make(map[string]*domain.Cart),
	}
}

// Get returns a snapshot of the cashier's cart lines and total.
func (s *CartService) Get(cashierID string) ([]domain.CartLine, decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cart(cashierID)
	return cart.Lines(), cart.Total()
}

// AddItem looks the medicine up in the catalog and adds one unit to the
// cashier's cart. No stock check happens here; stock is reserved only at
// checkout.
func (s *CartService) AddItem(ctx context.Context, cashierID, medicineID string) error {
	m, err := s.catalog.Get(ctx, medicineID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart(cashierID).AddItem(*m)
	return nil
}

// ChangeQuantity adjusts a line by delta; a line reaching zero is
// removed. Absent medicine IDs are a no-op, matching the cart contract.
func (s *CartService) ChangeQuantity(cashierID, medicineID string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart(cashierID).ChangeQuantity(medicineID, delta)
}

// Clear empties the cashier's cart.
func (s *CartService) Clear(cashierID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart(cashierID).Clear()
}

// Checkout finalizes the cashier's cart into a sale and clears it. The
// cart lock is held for the whole operation, so the stock check, the
// decrement and the clear act as a single unit relative to other cart
// mutations.
func (s *CartService) Checkout(ctx context.Context, cashierID string, payment PaymentInfo) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cart(cashierID)
	sale, err := s.sales.Finalize(ctx, cart, payment)
	if err != nil {
		return nil, err
	}

	cart.Clear()
	return sale, nil
}

// cart returns the cashier's cart, creating it on first use. Callers
// must hold s.mu.
func (s *CartService) cart(cashierID string) *domain.Cart {
	cart, exists := s.carts[cashierID]
	if !exists {
		cart = domain.NewCart(cashierID)
		s.carts[cashierID] = cart
	}
	return cart
}
