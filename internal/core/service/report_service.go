package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmacare/pos/internal/core/domain"
	"github.com/pharmacare/pos/internal/port"
)

const topSellerLimit = 5

// TopSeller aggregates one medicine's movement over a reporting period.
type TopSeller struct {
	MedicineID string          `json:"medicine_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// DailySummary is the dashboard view of one day of trading.
type DailySummary struct {
	Date       string          `json:"date"`
	SaleCount  int             `json:"sale_count"`
	UnitsSold  int             `json:"units_sold"`
	Revenue    decimal.Decimal `json:"revenue"`
	TopSellers []TopSeller     `json:"top_sellers"`
}

// ReportService answers reporting queries from persisted sales. It only
// produces plain records; rendering and export are someone else's job.
type ReportService struct {
	sales port.SaleRepository
}

func NewReportService(sales port.SaleRepository) *ReportService {
	return &ReportService{sales: sales}
}

// DailySummary aggregates the sales of the calendar day containing the
// given time, in that time's location.
func (s *ReportService) DailySummary(ctx context.Context, day time.Time) (*DailySummary, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)

	sales, err := s.sales.SalesBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := &DailySummary{
		Date:    from.Format("2006-01-02"),
		Revenue: decimal.Zero,
	}
	byMedicine := make(map[string]*TopSeller)

	for _, sale := range sales {
		summary.SaleCount++
		summary.Revenue = summary.Revenue.Add(sale.Total)
		for _, item := range sale.Items {
			summary.UnitsSold += item.Quantity

			seller, exists := byMedicine[item.MedicineID]
			if !exists {
				seller = &TopSeller{
					MedicineID: item.MedicineID,
					Name:       item.Name,
					Revenue:    decimal.Zero,
				}
				byMedicine[item.MedicineID] = seller
			}
			seller.Quantity += item.Quantity
			seller.Revenue = seller.Revenue.Add(item.Subtotal)
		}
	}

	sellers := make([]TopSeller, 0, len(byMedicine))
	for _, seller := range byMedicine {
		sellers = append(sellers, *seller)
	}
	sort.Slice(sellers, func(i, j int) bool {
		if sellers[i].Quantity == sellers[j].Quantity {
			return sellers[i].Name < sellers[j].Name
		}
		return sellers[i].Quantity > sellers[j].Quantity
	})
	if len(sellers) > topSellerLimit {
		sellers = sellers[:topSellerLimit]
	}
	summary.TopSellers = sellers

	return summary, nil
}

// RecentSales returns the latest persisted sales, newest first.
func (s *ReportService) RecentSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.sales.ListSales(ctx, limit)
}
