package sectors

type SaveStockInput struct {
	Symbol        string  `json:"symbol" binding:"required,max=20"`
	Name          string  `json:"name" binding:"omitempty,max=50"`
	Reason        string  `json:"reason"`
	MomentumScore float64 `json:"momentum_score" binding:"min=0,max=100"`
}

type SaveChainLinkInput struct {
	Stage       string           `json:"stage" binding:"omitempty,max=50"`
	Description string           `json:"description"`
	KeyStocks   []SaveStockInput `json:"key_stocks" binding:"dive"`
}

// SaveHotSectorRequest is the snapshot the research pipeline pushes for one
// sector. The three chain links are mandatory; their stock lists may be empty.
type SaveHotSectorRequest struct {
	SectorName string             `json:"sector_name" binding:"required,max=50"`
	Narrative  string             `json:"narrative"`
	HeatIndex  float64            `json:"heat_index" binding:"min=0,max=100"`
	Upstream   SaveChainLinkInput `json:"upstream" binding:"required"`
	Midstream  SaveChainLinkInput `json:"midstream" binding:"required"`
	Downstream SaveChainLinkInput `json:"downstream" binding:"required"`
	Catalysts  []string           `json:"catalysts"`
	RiskTips   string             `json:"risk_tips"`
}

type SaveHotSectorQuery struct {
	RecordDate string `form:"record_date" binding:"omitempty,datetime=2006-01-02"`
}

type TodayDetailQuery struct {
	SectorName string `form:"sector_name" binding:"required,max=50"`
}
