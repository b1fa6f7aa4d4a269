package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmacare/pos/internal/core/domain"
	"github.com/pharmacare/pos/internal/port"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrDuplicateRequest     = errors.New("duplicate request")
	ErrMissingRequestID     = errors.New("request id is required")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// PaymentInfo carries everything the cashier enters at checkout.
type PaymentInfo struct {
	RequestID    string
	Method       domain.PaymentMethod
	CustomerName string
	SoldBy       string
}

// SaleService finalizes carts into immutable sales. It is the only
// component allowed to decrement catalog stock, and it does so only as
// part of a fully validated finalize.
type SaleService struct {
	catalog   port.Catalog
	cache     port.CacheRepository
	saleQueue chan domain.Sale

	txnMu   sync.Mutex
	lastTxn int64
}

func NewSaleService(catalog port.Catalog, cache port.CacheRepository, queueSize int) *SaleService {
	return &SaleService{
		catalog:   catalog,
		cache:     cache,
		saleQueue: make(chan domain.Sale, queueSize),
	}
}

// Finalize validates the cart, atomically decrements catalog stock,
// snapshots the lines and returns the assembled sale. On any failure
// nothing is mutated. The caller clears the cart after success.
func (s *SaleService) Finalize(ctx context.Context, cart *domain.Cart, payment PaymentInfo) (*domain.Sale, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if payment.RequestID == "" {
		return nil, ErrMissingRequestID
	}
	if !payment.Method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, payment.Method)
	}

	ok, err := s.cache.SetIdempotency(ctx, payment.RequestID)
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return nil, ErrDuplicateRequest
	}

	lines := cart.Lines()
	stock := make([]domain.StockLine, 0, len(lines))
	for _, line := range lines {
		stock = append(stock, domain.StockLine{MedicineID: line.Medicine.ID, Quantity: line.Quantity})
	}

	updated, err := s.catalog.Decrement(ctx, stock)
	if err != nil {
		s.releaseIdempotency(ctx, payment.RequestID)
		return nil, err
	}

	// Snapshot the lines so later catalog edits cannot touch the sale,
	// and recompute the total from the snapshot rather than trusting
	// cart.Total().
	items := make([]domain.SaleItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		subtotal := line.Subtotal()
		items = append(items, domain.SaleItem{
			MedicineID:  line.Medicine.ID,
			Name:        line.Medicine.Name,
			BatchNumber: line.Medicine.BatchNumber,
			UnitPrice:   line.Medicine.Price,
			Quantity:    line.Quantity,
			Subtotal:    subtotal,
		})
		total = total.Add(subtotal)
	}

	sale := domain.Sale{
		ID:            uuid.New().String(),
		TransactionID: s.nextTransactionID(),
		Items:         items,
		Total:         total,
		PaymentMethod: payment.Method,
		CustomerName:  payment.CustomerName,
		SoldBy:        payment.SoldBy,
		CreatedAt:     time.Now(),
	}

	s.saleQueue <- sale

	for _, m := range updated {
		if m.LowStock() {
			log.Printf("low stock: %s (%s) at %d, reorder level %d", m.Name, m.ID, m.Stock, m.ReorderLevel)
		}
	}

	return &sale, nil
}

// nextTransactionID returns a SALE-<nanos> identifier that is strictly
// increasing within the process, so rapid successive finalizes can never
// collide.
func (s *SaleService) nextTransactionID() string {
	s.txnMu.Lock()
	defer s.txnMu.Unlock()

	now := time.Now().UnixNano()
	if now <= s.lastTxn {
		now = s.lastTxn + 1
	}
	s.lastTxn = now
	return fmt.Sprintf("SALE-%d", now)
}

func (s *SaleService) releaseIdempotency(ctx context.Context, key string) {
	if err := s.cache.ReleaseIdempotency(ctx, key); err != nil {
		log.Printf("failed to release idempotency key %s: %v", key, err)
	}
}

// GetSaleQueue exposes finalized sales for the persistence workers.
func (s *SaleService) GetSaleQueue() <-chan domain.Sale {
	return s.saleQueue
}

func (s *SaleService) Close() {
	close(s.saleQueue)
}
