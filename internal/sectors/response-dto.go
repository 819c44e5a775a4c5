package sectors

import "time"

type HotSectorBriefResponse struct {
	ID         string    `json:"id"`
	RecordDate string    `json:"record_date"`
	SectorName string    `json:"sector_name"`
	HeatIndex  *float64  `json:"heat_index"`
	Narrative  string    `json:"narrative,omitempty"`
	Catalysts  []string  `json:"catalysts,omitempty"`
	RiskTips   string    `json:"risk_tips,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type HotSectorStockResponse struct {
	ID            string   `json:"id"`
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	MomentumScore *float64 `json:"momentum_score"`
}

type HotSectorChainLinkResponse struct {
	ID          string                   `json:"id"`
	ChainType   string                   `json:"chain_type"`
	Stage       string                   `json:"stage,omitempty"`
	Description string                   `json:"description,omitempty"`
	KeyStocks   []HotSectorStockResponse `json:"key_stocks"`
}

type HotSectorDetailResponse struct {
	HotSectorBriefResponse
	Upstream   *HotSectorChainLinkResponse `json:"upstream"`
	Midstream  *HotSectorChainLinkResponse `json:"midstream"`
	Downstream *HotSectorChainLinkResponse `json:"downstream"`
}
