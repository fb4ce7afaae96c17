package main

import (
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/oakandarrow/frameshop/internal/config"
	"github.com/oakandarrow/frameshop/internal/db"
	"github.com/oakandarrow/frameshop/internal/migrations"
	"github.com/oakandarrow/frameshop/internal/seed"
)

type server struct {
	auth *authService
	db   *sql.DB
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

type loginViewData struct {
	baseViewData
}

type rateConfig struct {
	LaborCost              float64
	OverheadCost           float64
	TaxPercent             float64
	DefaultMatWidth        float64
	DefaultDiscountPercent float64
}

type ratesViewData struct {
	baseViewData
	RateConfig rateConfig
}

type dashboardViewData struct {
	baseViewData
	OpenOrders   int
	Customers    int
	CatalogItems int
	RecentOrders []orderListItem
	RecentTotal  float64
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		log.Fatalf("failed to run startup seed: %v", err)
	}
	if stats.Inserts > 0 {
		log.Printf("seeded %d rows", stats.Inserts)
	}

	auth := newAuthService(database, cfg.SessionSecret)
	srv := &server{auth: auth, db: database}

	r := chi.NewRouter()
	r.Use(srv.authMiddleware)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	r.Get("/", srv.handleDashboard)
	r.Get("/login", srv.handleLoginForm)
	r.Post("/login", srv.handleLoginSubmit)
	r.Post("/logout", srv.handleLogout)

	r.Get("/admin/rates", srv.handleAdminRatesForm)
	r.Post("/admin/rates", srv.handleAdminRatesSubmit)
	r.Get("/admin/catalog", srv.handleAdminCatalogForm)
	r.Post("/admin/catalog", srv.handleAdminCatalogCreate)
	r.Post("/admin/catalog/{id}", srv.handleAdminCatalogUpdate)

	r.Get("/customers", srv.handleCustomersList)
	r.Post("/customers", srv.handleCustomersCreate)
	r.Post("/customers/{id}", srv.handleCustomersUpdate)

	r.Get("/orders", srv.handleOrdersList)
	r.Get("/orders/new", srv.handleOrderForm)
	r.Post("/orders/calc", srv.handleOrderCalc)
	r.Post("/orders", srv.handleOrderCreate)
	r.Get("/orders/{id}", srv.handleOrderDetail)
	r.Post("/orders/{id}/status", srv.handleOrderStatus)
	r.Get("/orders/{id}/text", srv.handleOrderText)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardViewData{}

	var err error
	if data.OpenOrders, err = s.countRows(`SELECT COUNT(*) FROM orders WHERE status IN ('quoted', 'in_progress', 'ready')`); err != nil {
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}
	if data.Customers, err = s.countRows(`SELECT COUNT(*) FROM customers`); err != nil {
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}
	if data.CatalogItems, err = s.countRows(`SELECT COUNT(*) FROM catalog_items WHERE active`); err != nil {
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	recent, err := s.listOrders("", 5)
	if err != nil {
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}
	data.RecentOrders = recent
	for _, o := range recent {
		data.RecentTotal += o.Total
	}

	s.renderTemplate(w, "home.html", data)
}

func (s *server) countRows(query string) (int, error) {
	var n int
	if err := s.db.QueryRow(query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count query: %w", err)
	}
	return n, nil
}

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if isAuthenticated(r, s.auth) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, "login.html", loginViewData{})
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	valid, err := s.auth.validateCredentials(email, password)
	if err != nil {
		http.Error(w, "authentication error", http.StatusInternalServerError)
		return
	}
	if !valid {
		w.WriteHeader(http.StatusUnauthorized)
		s.renderTemplate(w, "login.html", loginViewData{baseViewData: baseViewData{ErrorMessage: "Invalid credentials. Try again."}})
		return
	}

	s.auth.setSessionCookie(w, email)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *server) handleAdminRatesForm(w http.ResponseWriter, r *http.Request) {
	rates, err := s.getRateConfig()
	if err != nil {
		http.Error(w, "failed to load rate config", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "admin_rates.html", ratesViewData{RateConfig: rates})
}

func (s *server) handleAdminRatesSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	rates, validationErr := parseRateConfigForm(r)
	if validationErr != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.renderTemplate(w, "admin_rates.html", ratesViewData{
			baseViewData: baseViewData{ErrorMessage: validationErr.Error()},
			RateConfig:   rates,
		})
		return
	}

	if err := s.updateRateConfig(rates); err != nil {
		http.Error(w, "failed to save rate config", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "admin_rates.html", ratesViewData{
		baseViewData: baseViewData{SuccessMessage: "Settings saved."},
		RateConfig:   rates,
	})
}

func parseRateConfigForm(r *http.Request) (rateConfig, error) {
	var rates rateConfig

	var err error
	if rates.LaborCost, err = parseNonNegativeFloat(r.FormValue("labor_cost"), "labor_cost"); err != nil {
		return rates, err
	}
	if rates.OverheadCost, err = parseNonNegativeFloat(r.FormValue("overhead_cost"), "overhead_cost"); err != nil {
		return rates, err
	}
	if rates.TaxPercent, err = parsePercent(r.FormValue("tax_percent"), "tax_percent"); err != nil {
		return rates, err
	}
	if rates.DefaultMatWidth, err = parsePositiveFloat(r.FormValue("default_mat_width"), "default_mat_width"); err != nil {
		return rates, err
	}
	if rates.DefaultDiscountPercent, err = parsePercent(r.FormValue("default_discount_percent"), "default_discount_percent"); err != nil {
		return rates, err
	}

	return rates, nil
}

func (s *server) getRateConfig() (rateConfig, error) {
	var rc rateConfig
	err := s.db.QueryRow(`
		SELECT labor_cost, overhead_cost, tax_percent, default_mat_width, default_discount_percent
		FROM rate_config
		WHERE id = 1
	`).Scan(
		&rc.LaborCost,
		&rc.OverheadCost,
		&rc.TaxPercent,
		&rc.DefaultMatWidth,
		&rc.DefaultDiscountPercent,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rateConfig{}, fmt.Errorf("rate_config singleton not found")
		}
		return rateConfig{}, fmt.Errorf("query rate_config: %w", err)
	}
	return rc, nil
}

func (s *server) updateRateConfig(rc rateConfig) error {
	_, err := s.db.Exec(`
		UPDATE rate_config
		SET
			labor_cost = ?,
			overhead_cost = ?,
			tax_percent = ?,
			default_mat_width = ?,
			default_discount_percent = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`,
		rc.LaborCost,
		rc.OverheadCost,
		rc.TaxPercent,
		rc.DefaultMatWidth,
		rc.DefaultDiscountPercent,
	)
	if err != nil {
		return fmt.Errorf("update rate_config: %w", err)
	}

	return nil
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be 0 or greater", field)
	}
	return value, nil
}

func parsePercent(raw, field string) (float64, error) {
	value, err := parseNonNegativeFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value > 100 {
		return 0, fmt.Errorf("%s must be between 0 and 100", field)
	}
	return value, nil
}

func parsePositiveFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}

func (s *server) renderTemplate(w http.ResponseWriter, page string, data any) {
	templates, err := template.ParseFiles(
		"web/templates/layout.html",
		"web/templates/"+page,
	)
	if err != nil {
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "layout.html", data); err != nil {
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" || r.URL.Path == "/static" || strings.HasPrefix(r.URL.Path, "/static/") {
			next.ServeHTTP(w, r)
			return
		}

		if !isAuthenticated(r, s.auth) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isAuthenticated(r *http.Request, auth *authService) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}

	_, ok := auth.verifySessionValue(cookie.Value)
	return ok
}
