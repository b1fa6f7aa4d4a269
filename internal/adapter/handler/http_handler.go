package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/pharmacare/pos/internal/core/domain"
	"github.com/pharmacare/pos/internal/core/service"
)

const dateLayout = "2006-01-02"

// HTTPHandler is the JSON surface the point-of-sale front-end talks to.
type HTTPHandler struct {
	inventory *service.InventoryService
	carts     *service.CartService
	reports   *service.ReportService
	business  service.BusinessInfo
}

func NewHTTPHandler(inventory *service.InventoryService, carts *service.CartService, reports *service.ReportService, business service.BusinessInfo) *HTTPHandler {
	return &HTTPHandler{
		inventory: inventory,
		carts:     carts,
		reports:   reports,
		business:  business,
	}
}

// Routes wires every endpoint onto a chi router.
func (h *HTTPHandler) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/medicines", func(r chi.Router) {
			r.Get("/", h.SearchMedicines)
			r.Post("/", h.AddMedicine)
			r.Get("/low-stock", h.LowStock)
			r.Get("/expiring", h.Expiring)
			r.Get("/{medicineID}", h.GetMedicine)
			r.Put("/{medicineID}", h.UpdateMedicine)
			r.Delete("/{medicineID}", h.DeleteMedicine)
		})

		r.Route("/carts/{cashierID}", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddCartItem)
			r.Patch("/items/{medicineID}", h.ChangeCartQuantity)
			r.Post("/checkout", h.Checkout)
		})

		r.Get("/sales", h.ListSales)
		r.Get("/reports/daily", h.DailyReport)
	})

	return r
}

// ---- medicines ----

type medicineRequest struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	GenericName  string          `json:"generic_name"`
	Barcode      string          `json:"barcode"`
	Category     string          `json:"category"`
	DosageForm   string          `json:"dosage_form"`
	Strength     string          `json:"strength"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	ReorderLevel int             `json:"reorder_level"`
	BatchNumber  string          `json:"batch_number"`
	ExpiryDate   string          `json:"expiry_date"`
	Location     string          `json:"location"`
	Supplier     string          `json:"supplier"`
}

func (req *medicineRequest) toDomain() (domain.Medicine, error) {
	m := domain.Medicine{
		ID:           req.ID,
		Name:         req.Name,
		GenericName:  req.GenericName,
		Barcode:      req.Barcode,
		Category:     req.Category,
		DosageForm:   req.DosageForm,
		Strength:     req.Strength,
		Price:        req.Price,
		Stock:        req.Stock,
		ReorderLevel: req.ReorderLevel,
		BatchNumber:  req.BatchNumber,
		Location:     req.Location,
		Supplier:     req.Supplier,
	}
	if req.ExpiryDate != "" {
		expiry, err := time.Parse(dateLayout, req.ExpiryDate)
		if err != nil {
			return domain.Medicine{}, errors.New("expiry_date must be YYYY-MM-DD")
		}
		m.ExpiryDate = expiry
	}
	return m, nil
}

type medicineResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	GenericName  string          `json:"generic_name"`
	Barcode      string          `json:"barcode"`
	Category     string          `json:"category"`
	DosageForm   string          `json:"dosage_form"`
	Strength     string          `json:"strength"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	ReorderLevel int             `json:"reorder_level"`
	BatchNumber  string          `json:"batch_number"`
	ExpiryDate   string          `json:"expiry_date,omitempty"`
	Location     string          `json:"location"`
	Supplier     string          `json:"supplier"`
	LowStock     bool            `json:"low_stock"`
}

func toMedicineResponse(m domain.Medicine) medicineResponse {
	resp := medicineResponse{
		ID:           m.ID,
		Name:         m.Name,
		GenericName:  m.GenericName,
		Barcode:      m.Barcode,
		Category:     m.Category,
		DosageForm:   m.DosageForm,
		Strength:     m.Strength,
		Price:        m.Price,
		Stock:        m.Stock,
		ReorderLevel: m.ReorderLevel,
		BatchNumber:  m.BatchNumber,
		Location:     m.Location,
		Supplier:     m.Supplier,
		LowStock:     m.LowStock(),
	}
	if !m.ExpiryDate.IsZero() {
		resp.ExpiryDate = m.ExpiryDate.Format(dateLayout)
	}
	return resp
}

func toMedicineResponses(medicines []domain.Medicine) []medicineResponse {
	resp := make([]medicineResponse, 0, len(medicines))
	for _, m := range medicines {
		resp = append(resp, toMedicineResponse(m))
	}
	return resp
}

func (h *HTTPHandler) SearchMedicines(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.inventory.SearchMedicines(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMedicineResponses(medicines))
}

func (h *HTTPHandler) GetMedicine(w http.ResponseWriter, r *http.Request) {
	m, err := h.inventory.GetMedicine(r.Context(), chi.URLParam(r, "medicineID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMedicineResponse(*m))
}

func (h *HTTPHandler) AddMedicine(w http.ResponseWriter, r *http.Request) {
	var req medicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	m, err := req.toDomain()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	created, err := h.inventory.AddMedicine(r.Context(), m)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMedicineResponse(*created))
}

func (h *HTTPHandler) UpdateMedicine(w http.ResponseWriter, r *http.Request) {
	var req medicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	req.ID = chi.URLParam(r, "medicineID")
	m, err := req.toDomain()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	updated, err := h.inventory.UpdateMedicine(r.Context(), m)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMedicineResponse(*updated))
}

func (h *HTTPHandler) DeleteMedicine(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.DeleteMedicine(r.Context(), chi.URLParam(r, "medicineID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.inventory.LowStock(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMedicineResponses(medicines))
}

func (h *HTTPHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	days := 90
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "days must be a positive integer"})
			return
		}
		days = parsed
	}

	medicines, err := h.inventory.ExpiringWithin(r.Context(), days)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMedicineResponses(medicines))
}

// ---- carts ----

type cartLineResponse struct {
	MedicineID string          `json:"medicine_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type cartResponse struct {
	CashierID string             `json:"cashier_id"`
	Items     []cartLineResponse `json:"items"`
	Total     decimal.Decimal    `json:"total"`
}

func (h *HTTPHandler) cartResponse(cashierID string) cartResponse {
	lines, total := h.carts.Get(cashierID)
	items := make([]cartLineResponse, 0, len(lines))
	for _, line := range lines {
		items = append(items, cartLineResponse{
			MedicineID: line.Medicine.ID,
			Name:       line.Medicine.Name,
			UnitPrice:  line.Medicine.Price,
			Quantity:   line.Quantity,
			Subtotal:   line.Subtotal(),
		})
	}
	return cartResponse{CashierID: cashierID, Items: items, Total: total}
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartResponse(chi.URLParam(r, "cashierID")))
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.carts.Clear(chi.URLParam(r, "cashierID"))
	w.WriteHeader(http.StatusNoContent)
}

type addItemRequest struct {
	MedicineID string `json:"medicine_id"`
}

func (h *HTTPHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MedicineID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "medicine_id is required"})
		return
	}

	cashierID := chi.URLParam(r, "cashierID")
	if err := h.carts.AddItem(r.Context(), cashierID, req.MedicineID); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse(cashierID))
}

type changeQuantityRequest struct {
	Delta int `json:"delta"`
}

func (h *HTTPHandler) ChangeCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req changeQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "delta must be an integer"})
		return
	}

	cashierID := chi.URLParam(r, "cashierID")
	h.carts.ChangeQuantity(cashierID, chi.URLParam(r, "medicineID"), req.Delta)
	writeJSON(w, http.StatusOK, h.cartResponse(cashierID))
}

// ---- checkout ----

type checkoutRequest struct {
	RequestID     string `json:"request_id"`
	PaymentMethod string `json:"payment_method"`
	CustomerName  string `json:"customer_name"`
	SoldBy        string `json:"sold_by"`
}

type saleItemResponse struct {
	MedicineID  string          `json:"medicine_id"`
	Name        string          `json:"name"`
	BatchNumber string          `json:"batch_number,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type saleResponse struct {
	ID            string             `json:"id"`
	TransactionID string             `json:"transaction_id"`
	Items         []saleItemResponse `json:"items"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	CustomerName  string             `json:"customer_name,omitempty"`
	SoldBy        string             `json:"sold_by,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

func toSaleResponse(sale domain.Sale) saleResponse {
	items := make([]saleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, saleItemResponse{
			MedicineID:  item.MedicineID,
			Name:        item.Name,
			BatchNumber: item.BatchNumber,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
		})
	}
	return saleResponse{
		ID:            sale.ID,
		TransactionID: sale.TransactionID,
		Items:         items,
		Total:         sale.Total,
		PaymentMethod: string(sale.PaymentMethod),
		CustomerName:  sale.CustomerName,
		SoldBy:        sale.SoldBy,
		CreatedAt:     sale.CreatedAt,
	}
}

type receiptLineResponse struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type receiptResponse struct {
	BusinessName    string                `json:"business_name"`
	BusinessAddress string                `json:"business_address"`
	BusinessPhone   string                `json:"business_phone"`
	TransactionID   string                `json:"transaction_id"`
	Date            string                `json:"date"`
	Lines           []receiptLineResponse `json:"lines"`
	Total           string                `json:"total"`
	Footer          string                `json:"footer"`
}

func toReceiptResponse(view domain.ReceiptView) receiptResponse {
	lines := make([]receiptLineResponse, 0, len(view.Lines))
	for _, line := range view.Lines {
		lines = append(lines, receiptLineResponse{
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		})
	}
	return receiptResponse{
		BusinessName:    view.BusinessName,
		BusinessAddress: view.BusinessAddress,
		BusinessPhone:   view.BusinessPhone,
		TransactionID:   view.TransactionID,
		Date:            view.Date,
		Lines:           lines,
		Total:           view.Total,
		Footer:          view.Footer,
	}
}

type checkoutResponse struct {
	Sale    saleResponse    `json:"sale"`
	Receipt receiptResponse `json:"receipt"`
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.RequestID == "" || req.PaymentMethod == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request_id and payment_method are required"})
		return
	}

	sale, err := h.carts.Checkout(r.Context(), chi.URLParam(r, "cashierID"), service.PaymentInfo{
		RequestID:    req.RequestID,
		Method:       domain.PaymentMethod(req.PaymentMethod),
		CustomerName: req.CustomerName,
		SoldBy:       req.SoldBy,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	receipt := service.RenderReceipt(sale, h.business)
	writeJSON(w, http.StatusCreated, checkoutResponse{
		Sale:    toSaleResponse(*sale),
		Receipt: toReceiptResponse(receipt),
	})
}

// ---- sales & reports ----

func (h *HTTPHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	sales, err := h.reports.RecentSales(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := make([]saleResponse, 0, len(sales))
	for _, sale := range sales {
		resp = append(resp, toSaleResponse(sale))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) DailyReport(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	summary, err := h.reports.DailySummary(r.Context(), day)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---- error mapping ----

type shortageResponse struct {
	MedicineID string `json:"medicine_id"`
	Requested  int    `json:"requested"`
	Available  int    `json:"available"`
}

type errorResponse struct {
	Error     string             `json:"error"`
	Shortages []shortageResponse `json:"shortages,omitempty"`
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		shortages := make([]shortageResponse, 0, len(stockErr.Shortages))
		for _, s := range stockErr.Shortages {
			shortages = append(shortages, shortageResponse{
				MedicineID: s.MedicineID,
				Requested:  s.Requested,
				Available:  s.Available,
			})
		}
		writeJSON(w, http.StatusConflict, errorResponse{Error: "insufficient stock", Shortages: shortages})
	case errors.Is(err, service.ErrDuplicateRequest):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "duplicate request"})
	case errors.Is(err, service.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cart is empty"})
	case errors.Is(err, service.ErrMissingRequestID), errors.Is(err, service.ErrInvalidPaymentMethod):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrMedicineNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidMedicine):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
