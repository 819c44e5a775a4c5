package analytics

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Repository defines the analytics repository interface
type Repository interface {
	GetOverview() (*OverviewAnalytics, error)
}

// repository implements the Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new analytics repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOverview() (*OverviewAnalytics, error) {
	var overview OverviewAnalytics

	var totalUsers int64
	if err := r.db.Table("users").Count(&totalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	overview.Users.Total = int(totalUsers)

	var statusRows []struct {
		Status string
		Count  int
	}
	if err := r.db.Table("users").
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&statusRows).Error; err != nil {
		return nil, fmt.Errorf("failed to count users by status: %w", err)
	}
	overview.Users.ByStatus = make(map[string]int, len(statusRows))
	for _, row := range statusRows {
		overview.Users.ByStatus[row.Status] = row.Count
	}

	var totalCategories int64
	if err := r.db.Table("categories").Count(&totalCategories).Error; err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	var systemCategories int64
	if err := r.db.Table("categories").
		Where("is_system = ?", true).
		Count(&systemCategories).Error; err != nil {
		return nil, fmt.Errorf("failed to count system categories: %w", err)
	}
	overview.Categories.Total = int(totalCategories)
	overview.Categories.System = int(systemCategories)
	overview.Categories.Custom = int(totalCategories - systemCategories)

	var watchlistEntries int64
	if err := r.db.Table("user_stocks").Count(&watchlistEntries).Error; err != nil {
		return nil, fmt.Errorf("failed to count watchlist entries: %w", err)
	}
	overview.Watchlist.Entries = int(watchlistEntries)

	var distinctSymbols int64
	if err := r.db.Table("user_stocks").
		Select("COUNT(DISTINCT symbol)").
		Scan(&distinctSymbols).Error; err != nil {
		return nil, fmt.Errorf("failed to count tracked symbols: %w", err)
	}
	overview.Watchlist.DistinctSymbols = int(distinctSymbols)

	var priceRows int64
	if err := r.db.Table("stock_daily_prices").Count(&priceRows).Error; err != nil {
		return nil, fmt.Errorf("failed to count price rows: %w", err)
	}
	overview.Prices.Rows = int(priceRows)

	overview.GeneratedAt = time.Now().UTC()
	return &overview, nil
}
