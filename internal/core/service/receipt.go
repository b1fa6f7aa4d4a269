package service

import (
	"github.com/pharmacare/pos/internal/core/domain"
)

// BusinessInfo identifies the pharmacy on printed receipts.
type BusinessInfo struct {
	Name    string
	Address string
	Phone   string
}

const receiptDateLayout = "02 Jan 2006 15:04:05"

// RenderReceipt projects a finalized sale into a printable view. It is
// pure: the same sale always yields an identical view, and nothing is
// mutated.
func RenderReceipt(sale *domain.Sale, business BusinessInfo) domain.ReceiptView {
	lines := make([]domain.ReceiptLine, 0, len(sale.Items))
	for _, item := range sale.Items {
		lines = append(lines, domain.ReceiptLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.Subtotal.StringFixed(2),
		})
	}

	return domain.ReceiptView{
		BusinessName:    business.Name,
		BusinessAddress: business.Address,
		BusinessPhone:   business.Phone,
		TransactionID:   sale.TransactionID,
		Date:            sale.CreatedAt.Format(receiptDateLayout),
		Lines:           lines,
		Total:           sale.Total.StringFixed(2),
		Footer:          "Thank you for your purchase! Please keep this receipt for your records.",
	}
}
