package stocks

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultSource is assumed whenever a watchlist entry does not name one.
const DefaultSource = "yfinance"

// UserStock is one watchlist row. A user tracks each symbol at most once.
type UserStock struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	Symbol    string    `json:"symbol" gorm:"not null;size:20"` // AAPL / 300750.SZ / 0700.HK
	Name      string    `json:"name" gorm:"size:50"`
	Exchange  string    `json:"exchange" gorm:"size:20"` // NASDAQ / SZ / SS / HKEX
	Source    string    `json:"source" gorm:"size:20;default:'yfinance'"`
	SortOrder int       `json:"sort_order" gorm:"not null;default:0"` // smaller sorts first
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (UserStock) TableName() string {
	return "user_stocks"
}

func (s *UserStock) ToResponse() UserStockResponse {
	return UserStockResponse{
		ID:        s.ID.String(),
		UserID:    s.UserID.String(),
		Symbol:    s.Symbol,
		Name:      s.Name,
		Exchange:  s.Exchange,
		Source:    s.Source,
		SortOrder: s.SortOrder,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// StockDailyPrice stores one OHLC row per symbol per trading day. Prices keep
// numeric(12,4) precision in the database; responses convert to floats.
type StockDailyPrice struct {
	ID        uuid.UUID           `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Symbol    string              `json:"symbol" gorm:"not null;size:20"`
	TradeDate time.Time           `json:"trade_date" gorm:"not null;type:date"`
	Open      decimal.NullDecimal `json:"open" gorm:"type:numeric(12,4)"`
	Close     decimal.NullDecimal `json:"close" gorm:"type:numeric(12,4)"`
	High      decimal.NullDecimal `json:"high" gorm:"type:numeric(12,4)"`
	Low       decimal.NullDecimal `json:"low" gorm:"type:numeric(12,4)"`
	Volume    *int64              `json:"volume" gorm:"type:bigint"`
	Source    string              `json:"source" gorm:"size:20;default:'yfinance'"`
	CreatedAt time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (StockDailyPrice) TableName() string {
	return "stock_daily_prices"
}

func (p *StockDailyPrice) ToResponse() StockDailyPriceResponse {
	return StockDailyPriceResponse{
		ID:        p.ID.String(),
		Symbol:    p.Symbol,
		TradeDate: p.TradeDate.Format("2006-01-02"),
		Open:      nullDecimalFloat(p.Open),
		Close:     nullDecimalFloat(p.Close),
		High:      nullDecimalFloat(p.High),
		Low:       nullDecimalFloat(p.Low),
		Volume:    p.Volume,
		Source:    p.Source,
		CreatedAt: p.CreatedAt,
	}
}

func nullDecimalFloat(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f, _ := d.Decimal.Float64()
	return &f
}

func nullDecimal(v *float64) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(*v), Valid: true}
}
