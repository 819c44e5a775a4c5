package stocks

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tally/pkg/cache"
	"tally/pkg/logger"
)

// Business failures surface verbatim to the client, so the texts are fixed.
var (
	ErrStockMissing   = errors.New("自选股票不存在")
	ErrNotOwnerUpdate = errors.New("无权限修改该自选股票")
	ErrNotOwnerDelete = errors.New("无权限删除该自选股票")
	ErrNoUpdates      = errors.New("没有需要更新的字段")
)

const (
	backfillPeriod  = "1mo"
	detachedTimeout = 2 * time.Minute
	syncPause       = 500 * time.Millisecond
)

type Service interface {
	AddStock(ctx context.Context, userID uuid.UUID, req AddStockRequest) (*UserStockResponse, error)
	UpdateStock(ctx context.Context, userID, stockID uuid.UUID, req UpdateStockRequest) error
	RemoveStock(ctx context.Context, userID, stockID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]UserStockResponse, error)
	Kline(ctx context.Context, userID uuid.UUID, symbol, period string) ([]StockDailyPriceResponse, error)

	// SyncSymbol backfills about a month of daily prices for a fresh symbol,
	// or extends stored history up to today. Returns the number of rows saved.
	SyncSymbol(ctx context.Context, symbol, source string) (int, error)
	// SyncAll runs SyncSymbol over every distinct watched symbol.
	SyncAll(ctx context.Context) error
}

type service struct {
	repo     Repository
	market   MarketData
	cache    cache.Service
	quoteTTL time.Duration
	logger   *logger.Logger
}

func NewService(repo Repository, market MarketData, cacheService cache.Service, quoteTTL time.Duration) Service {
	if quoteTTL <= 0 {
		quoteTTL = time.Minute
	}
	return &service{
		repo:     repo,
		market:   market,
		cache:    cacheService,
		quoteTTL: quoteTTL,
		logger:   logger.GetDefault(),
	}
}

func (s *service) AddStock(ctx context.Context, userID uuid.UUID, req AddStockRequest) (*UserStockResponse, error) {
	exists, err := s.repo.StockExists(userID, req.Symbol)
	if err != nil {
		return nil, fmt.Errorf("添加自选失败: %v", err)
	}
	if exists {
		return nil, fmt.Errorf("股票 '%s' 已在自选列表中", req.Symbol)
	}

	source := req.Source
	if source == "" {
		source = DefaultSource
	}

	stock := &UserStock{
		UserID:    userID,
		Symbol:    req.Symbol,
		Name:      req.Name,
		Exchange:  req.Exchange,
		Source:    source,
		SortOrder: req.SortOrder,
	}
	if err := s.repo.CreateStock(stock); err != nil {
		return nil, fmt.Errorf("添加自选失败: %v", err)
	}

	// price history fills in behind the response
	go s.syncDetached(stock.Symbol, source)

	resp := stock.ToResponse()
	return &resp, nil
}

func (s *service) UpdateStock(ctx context.Context, userID, stockID uuid.UUID, req UpdateStockRequest) error {
	stock, err := s.repo.GetStockByID(stockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStockMissing
		}
		return fmt.Errorf("修改自选失败: %v", err)
	}
	if stock.UserID != userID {
		return ErrNotOwnerUpdate
	}

	updates := buildStockUpdates(req)
	if len(updates) == 0 {
		return ErrNoUpdates
	}

	if _, err := s.repo.UpdateStock(stockID, updates); err != nil {
		return fmt.Errorf("修改自选失败: %v", err)
	}
	return nil
}

func (s *service) RemoveStock(ctx context.Context, userID, stockID uuid.UUID) error {
	stock, err := s.repo.GetStockByID(stockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStockMissing
		}
		return fmt.Errorf("删除自选失败: %v", err)
	}
	if stock.UserID != userID {
		return ErrNotOwnerDelete
	}

	if err := s.repo.DeleteStock(stockID); err != nil {
		return fmt.Errorf("删除自选失败: %v", err)
	}
	return nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]UserStockResponse, error) {
	stocks, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]UserStockResponse, 0, len(stocks))
	for i := range stocks {
		resp := stocks[i].ToResponse()
		resp.Quote = s.cachedQuote(ctx, stocks[i].Symbol)
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *service) Kline(ctx context.Context, userID uuid.UUID, symbol, period string) ([]StockDailyPriceResponse, error) {
	watching, err := s.repo.StockExists(userID, symbol)
	if err != nil {
		return nil, err
	}
	if !watching {
		return nil, ErrStockMissing
	}

	prices, err := s.repo.ListPrices(symbol, periodStart(period))
	if err != nil {
		return nil, err
	}

	responses := make([]StockDailyPriceResponse, 0, len(prices))
	for i := range prices {
		responses = append(responses, prices[i].ToResponse())
	}
	return responses, nil
}

func (s *service) SyncSymbol(ctx context.Context, symbol, source string) (int, error) {
	if source == "" {
		source = DefaultSource
	}
	today := dateOnly(time.Now().UTC())

	var bars []Bar
	latest, ok, err := s.repo.LatestTradeDate(symbol)
	if err != nil {
		return 0, err
	}
	if ok {
		latestDay := dateOnly(latest)
		if !latestDay.Before(today) {
			return 0, nil
		}
		bars, err = s.market.DailyBars(ctx, symbol, latestDay.AddDate(0, 0, 1), today)
	} else {
		bars, err = s.market.RecentDailyBars(ctx, symbol, backfillPeriod)
	}
	if err != nil {
		return 0, err
	}

	saved := 0
	for _, bar := range bars {
		price := &StockDailyPrice{
			Symbol:    symbol,
			TradeDate: dateOnly(bar.Date),
			Open:      nullDecimal(bar.Open),
			Close:     nullDecimal(bar.Close),
			High:      nullDecimal(bar.High),
			Low:       nullDecimal(bar.Low),
			Volume:    bar.Volume,
			Source:    source,
		}
		if err := s.repo.SaveDailyPrice(price); err != nil {
			return saved, err
		}
		saved++
	}

	if saved > 0 {
		s.logger.LogStockSynced(ctx, symbol, saved)
	}
	return saved, nil
}

func (s *service) SyncAll(ctx context.Context) error {
	symbols, err := s.repo.DistinctSymbols()
	if err != nil {
		return err
	}

	for _, watched := range symbols {
		if _, err := s.SyncSymbol(ctx, watched.Symbol, watched.Source); err != nil {
			s.logger.WithError(err).Warn("daily price sync failed", "symbol", watched.Symbol)
		}

		// jittered pacing keeps the upstream API happy on large watchlists
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(syncPause + time.Duration(rand.Intn(500))*time.Millisecond):
		}
	}
	return nil
}

// syncDetached runs an add-triggered sync outside the request lifetime.
func (s *service) syncDetached(symbol, source string) {
	ctx, cancel := context.WithTimeout(context.Background(), detachedTimeout)
	defer cancel()

	if _, err := s.SyncSymbol(ctx, symbol, source); err != nil {
		s.logger.WithError(err).Warn("daily price sync failed", "symbol", symbol)
	}
}

// cachedQuote serves the short-TTL snapshot, fetching at most once per TTL
// per symbol. A dead market feed degrades the list to rows without quotes.
func (s *service) cachedQuote(ctx context.Context, symbol string) *Quote {
	var quote Quote
	err := s.cache.GetOrSet(ctx, cache.QuoteKey(symbol), s.quoteTTL, func() (interface{}, error) {
		return s.market.LatestQuote(ctx, symbol)
	}, &quote)
	if err != nil {
		return nil
	}
	return &quote
}

// periodStart converts a chart period to the first trade date it covers.
// "max" reads everything stored.
func periodStart(period string) *time.Time {
	days := map[string]int{
		"1d": 1, "5d": 5, "1mo": 30, "3mo": 90,
		"6mo": 180, "1y": 365, "2y": 730, "5y": 1825,
	}[period]
	if days == 0 {
		return nil
	}
	start := dateOnly(time.Now().UTC().AddDate(0, 0, -days))
	return &start
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func buildStockUpdates(req UpdateStockRequest) map[string]interface{} {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Exchange != nil {
		updates["exchange"] = *req.Exchange
	}
	if req.Source != nil {
		updates["source"] = *req.Source
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	return updates
}
