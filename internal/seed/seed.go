package seed

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// Default catalog entries so a fresh install can quote an order immediately.
// Prices are placeholders the shop edits from the admin pages.
var defaultCatalogItems = []struct {
	category  string
	name      string
	unitPrice float64
	unit      string
}{
	{"frame", "Oak Classic 2in", 18, "per linear foot"},
	{"frame", "Econo Black Metal", 3.50, "per linear foot"},
	{"mat", "White Core", 17, "flat"},
	{"mat", "Black Core", 19, "flat"},
	{"glazing", "Standard Clear", 12, "per square foot"},
	{"glazing", "Conservation Clear", 39, "per square foot"},
	{"labor", "Standard Fitting", 38, "flat"},
}

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureCatalog(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureRateConfig(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, hashPassword(password)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

// hashPassword must stay in sync with the login path in cmd/server.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func ensureCatalog(tx *sql.Tx, stats *Stats) error {
	for _, item := range defaultCatalogItems {
		var exists bool
		if err := tx.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM catalog_items WHERE category = ? AND name = ? LIMIT 1)
		`, item.category, item.name).Scan(&exists); err != nil {
			return fmt.Errorf("check catalog item existence (%s/%s): %w", item.category, item.name, err)
		}
		if exists {
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO catalog_items (category, name, unit_price, unit, stock_qty, active)
			VALUES (?, ?, ?, ?, 0, TRUE)
		`, item.category, item.name, item.unitPrice, item.unit); err != nil {
			return fmt.Errorf("insert catalog item (%s/%s): %w", item.category, item.name, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureRateConfig(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM rate_config WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check rate config existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO rate_config (
			id,
			labor_cost,
			overhead_cost,
			tax_percent,
			default_mat_width,
			default_discount_percent
		)
		VALUES (1, ?, ?, ?, ?, ?)
	`, 38, 54, 8.25, 2, 0); err != nil {
		return fmt.Errorf("insert rate config singleton: %w", err)
	}
	stats.Inserts++
	return nil
}
