package database

import (
	"tally/internal/categories"
	"tally/internal/sectors"
	"tally/internal/stocks"
	"tally/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&categories.Category{},
		&stocks.UserStock{},
		&stocks.StockDailyPrice{},
		&sectors.HotSector{},
		&sectors.HotSectorChainLink{},
		&sectors.HotSectorStock{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
