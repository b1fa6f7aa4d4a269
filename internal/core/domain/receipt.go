package domain

// ReceiptLine is one printed item row. Money fields are pre-formatted to
// two decimal places so rendering is deterministic.
type ReceiptLine struct {
	Name      string
	Quantity  int
	UnitPrice string
	LineTotal string
}

// ReceiptView is the printable projection of a finalized sale. The
// display layer turns it into markup or a printout; the view itself
// never changes once produced.
type ReceiptView struct {
	BusinessName    string
	BusinessAddress string
	BusinessPhone   string
	TransactionID   string
	Date            string
	Lines           []ReceiptLine
	Total           string
	Footer          string
}
