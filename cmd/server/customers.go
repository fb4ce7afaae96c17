package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

type customer struct {
	ID    int64
	Name  string
	Phone string
	Email string
	Notes string
}

type customersViewData struct {
	baseViewData
	Query     string
	Customers []customer
}

func (s *server) handleCustomersList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	customers, err := s.listCustomers(query)
	if err != nil {
		http.Error(w, "failed to load customers", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "customers.html", customersViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Query:     query,
		Customers: customers,
	})
}

func (s *server) handleCustomersCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	c, err := parseCustomerForm(r)
	if err != nil {
		http.Redirect(w, r, "/customers?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	_, err = s.db.Exec(`
		INSERT INTO customers (name, phone, email, notes)
		VALUES (?, ?, ?, ?)
	`, c.Name, c.Phone, c.Email, c.Notes)
	if err != nil {
		http.Error(w, "failed to create customer", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/customers?success=Customer+created", http.StatusSeeOther)
}

func (s *server) handleCustomersUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid customer id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	c, err := parseCustomerForm(r)
	if err != nil {
		http.Redirect(w, r, "/customers?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	result, err := s.db.Exec(`
		UPDATE customers
		SET
			name = ?,
			phone = ?,
			email = ?,
			notes = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, c.Name, c.Phone, c.Email, c.Notes, id)
	if err != nil {
		http.Error(w, "failed to update customer", http.StatusInternalServerError)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		http.Error(w, "failed to update customer", http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/customers?success=Customer+updated", http.StatusSeeOther)
}

func parseCustomerForm(r *http.Request) (customer, error) {
	c := customer{
		Name:  strings.TrimSpace(r.FormValue("name")),
		Phone: strings.TrimSpace(r.FormValue("phone")),
		Email: strings.TrimSpace(r.FormValue("email")),
		Notes: strings.TrimSpace(r.FormValue("notes")),
	}

	if c.Name == "" {
		return c, fmt.Errorf("name is required")
	}

	return c, nil
}

func (s *server) listCustomers(query string) ([]customer, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT id, name, COALESCE(phone, ''), COALESCE(email, ''), COALESCE(notes, '')
		FROM customers
		WHERE (? = '' OR name LIKE ? OR COALESCE(phone, '') LIKE ? OR COALESCE(email, '') LIKE ?)
		ORDER BY name
	`, query, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	customers := make([]customer, 0)
	for rows.Next() {
		var c customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Notes); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}

	return customers, nil
}
