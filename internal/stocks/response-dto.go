package stocks

import "time"

type UserStockResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name,omitempty"`
	Exchange  string    `json:"exchange,omitempty"`
	Source    string    `json:"source,omitempty"`
	SortOrder int       `json:"sort_order"`
	Quote     *Quote    `json:"quote,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type StockDailyPriceResponse struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	TradeDate string    `json:"trade_date"`
	Open      *float64  `json:"open"`
	Close     *float64  `json:"close"`
	High      *float64  `json:"high"`
	Low       *float64  `json:"low"`
	Volume    *int64    `json:"volume"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
