package analytics

import "time"

// OverviewAnalytics is the admin dashboard snapshot. Counts come straight
// from the database on every request.
type OverviewAnalytics struct {
	Users       UserCounts      `json:"users"`
	Categories  CategoryCounts  `json:"categories"`
	Watchlist   WatchlistCounts `json:"watchlist"`
	Prices      PriceCounts     `json:"prices"`
	GeneratedAt time.Time       `json:"generated_at"`
}

type UserCounts struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

type CategoryCounts struct {
	Total  int `json:"total"`
	System int `json:"system"`
	Custom int `json:"custom"`
}

type WatchlistCounts struct {
	Entries         int `json:"entries"`
	DistinctSymbols int `json:"distinct_symbols"`
}

type PriceCounts struct {
	Rows int `json:"rows"`
}
