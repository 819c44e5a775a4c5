package stocks

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WatchedSymbol is one distinct (symbol, source) pair across all watchlists,
// the unit of work for the price sync.
type WatchedSymbol struct {
	Symbol string
	Source string
}

type Repository interface {
	CreateStock(stock *UserStock) error
	GetStockByID(id uuid.UUID) (*UserStock, error)
	StockExists(userID uuid.UUID, symbol string) (bool, error)
	UpdateStock(id uuid.UUID, updates map[string]interface{}) (*UserStock, error)
	DeleteStock(id uuid.UUID) error
	ListByUser(userID uuid.UUID) ([]UserStock, error)
	DistinctSymbols() ([]WatchedSymbol, error)

	SaveDailyPrice(price *StockDailyPrice) error
	LatestTradeDate(symbol string) (time.Time, bool, error)
	ListPrices(symbol string, since *time.Time) ([]StockDailyPrice, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateStock(stock *UserStock) error {
	return r.db.Create(stock).Error
}

func (r *repository) GetStockByID(id uuid.UUID) (*UserStock, error) {
	var stock UserStock
	err := r.db.Where("id = ?", id).First(&stock).Error
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *repository) StockExists(userID uuid.UUID, symbol string) (bool, error) {
	var count int64
	err := r.db.Model(&UserStock{}).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) UpdateStock(id uuid.UUID, updates map[string]interface{}) (*UserStock, error) {
	var stock UserStock

	if err := r.db.Where("id = ?", id).First(&stock).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&stock).Updates(updates).Error; err != nil {
		return nil, err
	}

	return r.GetStockByID(id)
}

func (r *repository) DeleteStock(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&UserStock{}).Error
}

func (r *repository) ListByUser(userID uuid.UUID) ([]UserStock, error) {
	var stocks []UserStock
	err := r.db.Where("user_id = ?", userID).
		Order("sort_order ASC").
		Find(&stocks).Error
	return stocks, err
}

func (r *repository) DistinctSymbols() ([]WatchedSymbol, error) {
	var symbols []WatchedSymbol
	err := r.db.Model(&UserStock{}).
		Distinct("symbol", "source").
		Order("symbol ASC").
		Find(&symbols).Error
	return symbols, err
}

// SaveDailyPrice inserts a row or refreshes the stored OHLC when the
// (symbol, trade_date) pair already exists.
func (r *repository) SaveDailyPrice(price *StockDailyPrice) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "trade_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "close", "high", "low", "volume", "source", "updated_at"}),
	}).Create(price).Error
}

func (r *repository) LatestTradeDate(symbol string) (time.Time, bool, error) {
	var price StockDailyPrice
	err := r.db.Where("symbol = ?", symbol).
		Order("trade_date DESC").
		First(&price).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return price.TradeDate, true, nil
}

func (r *repository) ListPrices(symbol string, since *time.Time) ([]StockDailyPrice, error) {
	var prices []StockDailyPrice
	query := r.db.Where("symbol = ?", symbol)
	if since != nil {
		query = query.Where("trade_date >= ?", *since)
	}
	err := query.Order("trade_date ASC").Find(&prices).Error
	return prices, err
}
