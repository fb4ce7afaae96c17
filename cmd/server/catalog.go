package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/oakandarrow/frameshop/internal/pricing"
)

var catalogCategories = []string{"frame", "mat", "glazing", "labor"}

type catalogItem struct {
	ID        int64
	Category  string
	Name      string
	UnitPrice float64
	Unit      string
	StockQty  int64
	Active    bool
}

type catalogViewData struct {
	baseViewData
	Categories []string
	Items      []catalogItem
}

func (s *server) handleAdminCatalogForm(w http.ResponseWriter, r *http.Request) {
	items, err := s.listCatalogItems()
	if err != nil {
		http.Error(w, "failed to load catalog", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "admin_catalog.html", catalogViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Categories: catalogCategories,
		Items:      items,
	})
}

func (s *server) handleAdminCatalogCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	item, err := parseCatalogItemForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/catalog?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	_, err = s.db.Exec(`
		INSERT INTO catalog_items (category, name, unit_price, unit, stock_qty, active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, item.Category, item.Name, item.UnitPrice, item.Unit, item.StockQty, item.Active)
	if err != nil {
		http.Error(w, "failed to create catalog item", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/catalog?success=Catalog+item+created", http.StatusSeeOther)
}

func (s *server) handleAdminCatalogUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid catalog item id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	item, err := parseCatalogItemForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/catalog?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	result, err := s.db.Exec(`
		UPDATE catalog_items
		SET
			category = ?,
			name = ?,
			unit_price = ?,
			unit = ?,
			stock_qty = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, item.Category, item.Name, item.UnitPrice, item.Unit, item.StockQty, item.Active, id)
	if err != nil {
		http.Error(w, "failed to update catalog item", http.StatusInternalServerError)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		http.Error(w, "failed to update catalog item", http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/admin/catalog?success=Catalog+item+updated", http.StatusSeeOther)
}

func parseCatalogItemForm(r *http.Request) (catalogItem, error) {
	item := catalogItem{
		Category: strings.TrimSpace(r.FormValue("category")),
		Name:     strings.TrimSpace(r.FormValue("name")),
		Unit:     strings.TrimSpace(r.FormValue("unit")),
		Active:   r.FormValue("active") == "1",
	}

	if !validCategory(item.Category) {
		return item, fmt.Errorf("category must be one of frame, mat, glazing, labor")
	}
	if item.Name == "" {
		return item, fmt.Errorf("name is required")
	}

	var err error
	if item.UnitPrice, err = parseNonNegativeFloat(r.FormValue("unit_price"), "unit_price"); err != nil {
		return item, err
	}

	stockRaw := strings.TrimSpace(r.FormValue("stock_qty"))
	if stockRaw == "" {
		stockRaw = "0"
	}
	item.StockQty, err = strconv.ParseInt(stockRaw, 10, 64)
	if err != nil || item.StockQty < 0 {
		return item, fmt.Errorf("stock_qty must be a non-negative integer")
	}

	return item, nil
}

func validCategory(category string) bool {
	for _, c := range catalogCategories {
		if category == c {
			return true
		}
	}
	return false
}

func (s *server) listCatalogItems() ([]catalogItem, error) {
	rows, err := s.db.Query(`
		SELECT id, category, name, unit_price, COALESCE(unit, ''), stock_qty, active
		FROM catalog_items
		ORDER BY category, name
	`)
	if err != nil {
		return nil, fmt.Errorf("query catalog items: %w", err)
	}
	defer rows.Close()

	items := make([]catalogItem, 0)
	for rows.Next() {
		var item catalogItem
		if err := rows.Scan(&item.ID, &item.Category, &item.Name, &item.UnitPrice, &item.Unit, &item.StockQty, &item.Active); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog items: %w", err)
	}

	return items, nil
}

// lookupSelection resolves a catalog item into a pricing selection. A zero
// id, a missing row, or an inactive item all come back as nil: the engine
// treats those identically to "nothing chosen" and prices the line at zero,
// so a deleted catalog item degrades a quote instead of failing it.
func (s *server) lookupSelection(category string, id int64) (*pricing.Selection, error) {
	if id <= 0 {
		return nil, nil
	}

	var sel pricing.Selection
	err := s.db.QueryRow(`
		SELECT name, unit_price
		FROM catalog_items
		WHERE id = ? AND category = ? AND active
	`, id, category).Scan(&sel.Name, &sel.BasePrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup catalog item %d (%s): %w", id, category, err)
	}

	return &sel, nil
}

// activeCatalogByCategory feeds the order form selects.
func (s *server) activeCatalogByCategory() (map[string][]catalogItem, error) {
	items, err := s.listCatalogItems()
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]catalogItem)
	for _, item := range items {
		if !item.Active {
			continue
		}
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	return byCategory, nil
}
