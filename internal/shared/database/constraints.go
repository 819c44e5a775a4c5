package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the constraints and indexes AutoMigrate cannot
// express from struct tags. Runs after AutoMigrate on every boot, so each
// statement must be idempotent.
func MigrateConstraints(db *gorm.DB) error {
	// A user can track each stock symbol only once
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_symbol_per_user
		ON user_stocks (user_id, symbol);
	`).Error
	if err != nil {
		return err
	}

	// One price row per symbol per trading day
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_price_per_day
		ON stock_daily_prices (symbol, trade_date);
	`).Error
	if err != nil {
		return err
	}

	// Add index for category lookups scoped to an owner
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_categories_user_id
		ON categories (user_id);
	`).Error
	if err != nil {
		return err
	}

	// Add index for kline range scans ordered by newest first
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_stock_daily_prices_symbol_date
		ON stock_daily_prices (symbol, trade_date DESC);
	`).Error
	if err != nil {
		return err
	}

	// One hot-sector snapshot per sector per collection date
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_sector_per_day
		ON hot_sectors (sector_name, record_date);
	`).Error
	if err != nil {
		return err
	}

	// Chain links and their stocks are always read by parent id
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_hot_sector_chain_links_sector_id
		ON hot_sector_chain_links (sector_id);
	`).Error
	if err != nil {
		return err
	}
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_hot_sector_stocks_chain_link_id
		ON hot_sector_stocks (chain_link_id);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
