package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/oakandarrow/frameshop/internal/pricing"
)

var orderStatuses = []string{"quoted", "in_progress", "ready", "delivered", "cancelled"}

type orderFormValues struct {
	CustomerID      int64
	Description     string
	Dimensions      string
	MatWidth        float64 // 0 means "use the shop default"
	FrameItemID     int64
	MatItemID       int64
	GlazingItemID   int64
	Mode            pricing.Mode
	DiscountPercent float64
	Deposit         float64
}

type orderListItem struct {
	ID           int64
	CreatedAt    string
	CustomerName string
	Description  string
	Status       string
	Total        float64
}

type ordersViewData struct {
	baseViewData
	Query  string
	Orders []orderListItem
}

type orderFormViewData struct {
	baseViewData
	Customers  []customer
	Catalog    map[string][]catalogItem
	RateConfig rateConfig
	Statuses   []string
}

type orderDetail struct {
	ID              int64
	CreatedAt       string
	CustomerName    string
	Description     string
	Dimensions      string
	MatWidth        float64
	FrameName       string
	MatName         string
	GlazingName     string
	Mode            string
	DiscountPercent float64
	TaxPercent      float64
	Status          string
	Deposit         float64
	BalanceDue      float64
	Breakdown       pricing.Breakdown
	Total           float64
}

type orderDetailViewData struct {
	baseViewData
	Order    orderDetail
	Statuses []string
}

func (s *server) handleOrdersList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	orders, err := s.listOrders(query, 0)
	if err != nil {
		http.Error(w, "failed to load orders", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "orders.html", ordersViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Query:  query,
		Orders: orders,
	})
}

func (s *server) handleOrderForm(w http.ResponseWriter, r *http.Request) {
	customers, err := s.listCustomers("")
	if err != nil {
		http.Error(w, "failed to load customers", http.StatusInternalServerError)
		return
	}
	catalog, err := s.activeCatalogByCategory()
	if err != nil {
		http.Error(w, "failed to load catalog", http.StatusInternalServerError)
		return
	}
	rates, err := s.getRateConfig()
	if err != nil {
		http.Error(w, "failed to load rate config", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "order_form.html", orderFormViewData{
		baseViewData: baseViewData{ErrorMessage: r.URL.Query().Get("error")},
		Customers:    customers,
		Catalog:      catalog,
		RateConfig:   rates,
		Statuses:     orderStatuses,
	})
}

// handleOrderCalc recomputes a quote for the order form without persisting
// anything. It is called on every form change, so it stays side-effect-free
// and returns the full breakdown as JSON.
func (s *server) handleOrderCalc(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	values, err := parseOrderForm(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	breakdown, err := s.priceOrder(values)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidDimensions) {
			writeJSONError(w, http.StatusUnprocessableEntity, "invalid dimension format")
			return
		}
		http.Error(w, "failed to calculate quote", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(breakdown); err != nil {
		http.Error(w, "failed to encode quote", http.StatusInternalServerError)
	}
}

func (s *server) handleOrderCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	values, err := parseOrderForm(r)
	if err != nil {
		http.Redirect(w, r, "/orders/new?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	if values.CustomerID <= 0 {
		http.Redirect(w, r, "/orders/new?error="+url.QueryEscape("customer is required"), http.StatusSeeOther)
		return
	}

	breakdown, err := s.priceOrder(values)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidDimensions) {
			http.Redirect(w, r, "/orders/new?error="+url.QueryEscape("invalid dimension format"), http.StatusSeeOther)
			return
		}
		http.Error(w, "failed to calculate quote", http.StatusInternalServerError)
		return
	}

	id, err := s.insertOrder(values, breakdown)
	if err != nil {
		http.Error(w, "failed to save order", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/orders/%d", id), http.StatusSeeOther)
}

func (s *server) handleOrderDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	detail, err := s.getOrderDetail(id)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "failed to load order", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "order_detail.html", orderDetailViewData{
		baseViewData: baseViewData{SuccessMessage: r.URL.Query().Get("success")},
		Order:        detail,
		Statuses:     orderStatuses,
	})
}

func (s *server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	status := r.FormValue("status")
	if !validOrderStatus(status) {
		http.Error(w, "invalid order status", http.StatusBadRequest)
		return
	}

	result, err := s.db.Exec(`
		UPDATE orders
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, id)
	if err != nil {
		http.Error(w, "failed to update order status", http.StatusInternalServerError)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		http.Error(w, "failed to update order status", http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/orders/%d?success=Status+updated", id), http.StatusSeeOther)
}

func parseOrderForm(r *http.Request) (orderFormValues, error) {
	values := orderFormValues{
		Description: strings.TrimSpace(r.FormValue("description")),
		Dimensions:  strings.TrimSpace(r.FormValue("dimensions")),
	}

	if values.Dimensions == "" {
		return values, fmt.Errorf("dimensions are required")
	}

	var err error
	if raw := r.FormValue("customer_id"); raw != "" {
		if values.CustomerID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return values, fmt.Errorf("customer_id must be numeric")
		}
	}
	if values.FrameItemID, err = parseOptionalID(r.FormValue("frame_item_id"), "frame_item_id"); err != nil {
		return values, err
	}
	if values.MatItemID, err = parseOptionalID(r.FormValue("mat_item_id"), "mat_item_id"); err != nil {
		return values, err
	}
	if values.GlazingItemID, err = parseOptionalID(r.FormValue("glazing_item_id"), "glazing_item_id"); err != nil {
		return values, err
	}

	if raw := strings.TrimSpace(r.FormValue("mat_width")); raw != "" {
		if values.MatWidth, err = parsePositiveFloat(raw, "mat_width"); err != nil {
			return values, err
		}
	}
	if raw := strings.TrimSpace(r.FormValue("discount_percent")); raw != "" {
		if values.DiscountPercent, err = parsePercent(raw, "discount_percent"); err != nil {
			return values, err
		}
	}
	if raw := strings.TrimSpace(r.FormValue("deposit")); raw != "" {
		if values.Deposit, err = parseNonNegativeFloat(raw, "deposit"); err != nil {
			return values, err
		}
	}

	switch r.FormValue("mode") {
	case "", "retail":
		values.Mode = pricing.Retail
	case "wholesale":
		values.Mode = pricing.Wholesale
	default:
		return values, fmt.Errorf("mode must be retail or wholesale")
	}

	return values, nil
}

func parseOptionalID(raw, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", field)
	}
	return id, nil
}

func validOrderStatus(status string) bool {
	for _, s := range orderStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// priceOrder resolves form values against the catalog and rate config, then
// runs the pricing engine. Dimension parse failures surface as
// pricing.ErrInvalidDimensions; missing catalog items price at zero.
func (s *server) priceOrder(values orderFormValues) (pricing.Breakdown, error) {
	dims, err := pricing.ParseDimensions(values.Dimensions)
	if err != nil {
		return pricing.Breakdown{}, err
	}

	rates, err := s.getRateConfig()
	if err != nil {
		return pricing.Breakdown{}, err
	}

	matWidth := values.MatWidth
	if matWidth <= 0 {
		matWidth = rates.DefaultMatWidth
	}
	if matWidth <= 0 {
		matWidth = pricing.DefaultMatWidth
	}

	frame, err := s.lookupSelection("frame", values.FrameItemID)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	mat, err := s.lookupSelection("mat", values.MatItemID)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	glazing, err := s.lookupSelection("glazing", values.GlazingItemID)
	if err != nil {
		return pricing.Breakdown{}, err
	}

	return pricing.Calculate(pricing.Request{
		Width:    dims.Width,
		Height:   dims.Height,
		MatWidth: matWidth,

		Frame:   frame,
		Mat:     mat,
		Glazing: glazing,

		Mode: values.Mode,

		LaborCost:       rates.LaborCost,
		OverheadCost:    rates.OverheadCost,
		DiscountPercent: values.DiscountPercent,
		TaxRate:         rates.TaxPercent / 100,
	}), nil
}

func (s *server) insertOrder(values orderFormValues, breakdown pricing.Breakdown) (int64, error) {
	rates, err := s.getRateConfig()
	if err != nil {
		return 0, err
	}

	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return 0, fmt.Errorf("marshal breakdown: %w", err)
	}
	totalsJSON, err := json.Marshal(map[string]float64{"total": breakdown.Total})
	if err != nil {
		return 0, fmt.Errorf("marshal totals: %w", err)
	}

	matWidth := values.MatWidth
	if matWidth <= 0 {
		matWidth = rates.DefaultMatWidth
	}

	result, err := s.db.Exec(`
		INSERT INTO orders (
			customer_id,
			description,
			dimensions,
			mat_width,
			frame_item_id,
			mat_item_id,
			glazing_item_id,
			mode,
			discount_percent,
			tax_percent_snapshot,
			status,
			deposit,
			balance_due,
			totals_json,
			breakdown_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'quoted', ?, ?, ?, ?)
	`,
		values.CustomerID,
		values.Description,
		values.Dimensions,
		matWidth,
		nullableID(values.FrameItemID),
		nullableID(values.MatItemID),
		nullableID(values.GlazingItemID),
		string(values.Mode),
		values.DiscountPercent,
		rates.TaxPercent,
		values.Deposit,
		breakdown.Total-values.Deposit,
		string(totalsJSON),
		string(breakdownJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read order id: %w", err)
	}
	return id, nil
}

func nullableID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}

func (s *server) listOrders(query string, limit int) ([]orderListItem, error) {
	search := "%" + query + "%"
	q := `
		SELECT
			o.id,
			o.created_at,
			c.name,
			COALESCE(o.description, ''),
			o.status,
			o.totals_json
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE (? = '' OR c.name LIKE ? OR COALESCE(o.description, '') LIKE ?)
		ORDER BY datetime(o.created_at) DESC, o.id DESC
	`
	args := []any{query, search, search}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]orderListItem, 0)
	for rows.Next() {
		var item orderListItem
		var totalsJSON string
		if err := rows.Scan(&item.ID, &item.CreatedAt, &item.CustomerName, &item.Description, &item.Status, &totalsJSON); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		item.Total = extractTotalFromJSON(totalsJSON)
		orders = append(orders, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

// getOrderDetail reads the stored snapshot; it never reprices, so a quote
// stays stable even after catalog prices or tier tables change.
func (s *server) getOrderDetail(id int64) (orderDetail, error) {
	var detail orderDetail
	var breakdownJSON, totalsJSON string
	err := s.db.QueryRow(`
		SELECT
			o.id,
			o.created_at,
			c.name,
			COALESCE(o.description, ''),
			o.dimensions,
			o.mat_width,
			COALESCE(f.name, ''),
			COALESCE(m.name, ''),
			COALESCE(g.name, ''),
			o.mode,
			o.discount_percent,
			o.tax_percent_snapshot,
			o.status,
			o.deposit,
			o.balance_due,
			o.breakdown_json,
			o.totals_json
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		LEFT JOIN catalog_items f ON f.id = o.frame_item_id
		LEFT JOIN catalog_items m ON m.id = o.mat_item_id
		LEFT JOIN catalog_items g ON g.id = o.glazing_item_id
		WHERE o.id = ?
	`, id).Scan(
		&detail.ID,
		&detail.CreatedAt,
		&detail.CustomerName,
		&detail.Description,
		&detail.Dimensions,
		&detail.MatWidth,
		&detail.FrameName,
		&detail.MatName,
		&detail.GlazingName,
		&detail.Mode,
		&detail.DiscountPercent,
		&detail.TaxPercent,
		&detail.Status,
		&detail.Deposit,
		&detail.BalanceDue,
		&breakdownJSON,
		&totalsJSON,
	)
	if err != nil {
		return orderDetail{}, err
	}

	if err := json.Unmarshal([]byte(breakdownJSON), &detail.Breakdown); err != nil {
		return orderDetail{}, fmt.Errorf("decode breakdown snapshot: %w", err)
	}
	detail.Total = extractTotalFromJSON(totalsJSON)

	return detail, nil
}

func extractTotalFromJSON(totalsJSON string) float64 {
	var values map[string]float64
	if err := json.Unmarshal([]byte(totalsJSON), &values); err != nil {
		return 0
	}

	for _, key := range []string{"total", "grand_total", "final_total"} {
		if total, ok := values[key]; ok {
			return total
		}
	}

	return 0
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
