package main

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func TestListOrdersSortsByDateDescAndReadsTotal(t *testing.T) {
	db := newOrdersTestDB(t)
	srv := &server{db: db}

	seedCustomer(t, db, 1, "Dana Whitfield")
	seedOrder(t, db, "2024-01-01 10:00:00", 1, "watercolor", "quoted", `{"total": 100.50}`)
	seedOrder(t, db, "2024-01-03 12:00:00", 1, "oil portrait", "ready", `{"total": 300.00}`)
	seedOrder(t, db, "2024-01-02 11:00:00", 1, "print", "quoted", `{"total": 200.25}`)

	orders, err := srv.listOrders("", 0)
	if err != nil {
		t.Fatalf("listOrders returned error: %v", err)
	}

	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}

	if orders[0].Description != "oil portrait" || orders[1].Description != "print" || orders[2].Description != "watercolor" {
		t.Fatalf("orders are not sorted desc by created_at: %+v", orders)
	}

	if orders[0].Total != 300.00 || orders[1].Total != 200.25 || orders[2].Total != 100.50 {
		t.Fatalf("unexpected totals: %+v", orders)
	}
}

func TestListOrdersFilterByCustomerAndDescription(t *testing.T) {
	db := newOrdersTestDB(t)
	srv := &server{db: db}

	seedCustomer(t, db, 1, "Dana Whitfield")
	seedCustomer(t, db, 2, "Marcus Lee")
	seedOrder(t, db, "2024-01-01 10:00:00", 1, "barn landscape", "quoted", `{"total": 80}`)
	seedOrder(t, db, "2024-01-02 10:00:00", 2, "family photo", "quoted", `{"total": 120}`)
	seedOrder(t, db, "2024-01-03 10:00:00", 2, "landscape sketch", "quoted", `{"total": 160}`)

	byCustomer, err := srv.listOrders("Marcus", 0)
	if err != nil {
		t.Fatalf("listOrders customer filter returned error: %v", err)
	}
	if len(byCustomer) != 2 {
		t.Fatalf("expected 2 orders filtered by customer, got %+v", byCustomer)
	}

	byDescription, err := srv.listOrders("landscape", 0)
	if err != nil {
		t.Fatalf("listOrders description filter returned error: %v", err)
	}
	if len(byDescription) != 2 {
		t.Fatalf("expected 2 orders filtered by description, got %+v", byDescription)
	}
}

func TestListOrdersHonorsLimit(t *testing.T) {
	db := newOrdersTestDB(t)
	srv := &server{db: db}

	seedCustomer(t, db, 1, "Dana Whitfield")
	seedOrder(t, db, "2024-01-01 10:00:00", 1, "first", "quoted", `{"total": 10}`)
	seedOrder(t, db, "2024-01-02 10:00:00", 1, "second", "quoted", `{"total": 20}`)
	seedOrder(t, db, "2024-01-03 10:00:00", 1, "third", "quoted", `{"total": 30}`)

	orders, err := srv.listOrders("", 2)
	if err != nil {
		t.Fatalf("listOrders with limit returned error: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders with limit, got %d", len(orders))
	}
	if orders[0].Description != "third" || orders[1].Description != "second" {
		t.Fatalf("limit did not keep newest orders: %+v", orders)
	}
}

func newOrdersTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE customers (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		);
		CREATE TABLE orders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME NOT NULL,
			customer_id INTEGER NOT NULL,
			description TEXT,
			status TEXT NOT NULL,
			totals_json TEXT NOT NULL
		);
	`)
	if err != nil {
		t.Fatalf("failed creating orders schema: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func seedCustomer(t *testing.T, db *sql.DB, id int64, name string) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO customers (id, name) VALUES (?, ?)`, id, name)
	if err != nil {
		t.Fatalf("failed to seed customer: %v", err)
	}
}

func seedOrder(t *testing.T, db *sql.DB, createdAt string, customerID int64, description, status, totalsJSON string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO orders (created_at, customer_id, description, status, totals_json)
		VALUES (?, ?, ?, ?, ?)
	`, createdAt, customerID, description, status, totalsJSON)
	if err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
}
