package stocks

type AddStockRequest struct {
	Symbol    string `json:"symbol" binding:"required,max=20"`
	Name      string `json:"name" binding:"omitempty,max=50"`
	Exchange  string `json:"exchange" binding:"omitempty,max=20"`
	Source    string `json:"source" binding:"omitempty,max=20"`
	SortOrder int    `json:"sort_order"`
}

type UpdateStockRequest struct {
	Name      *string `json:"name" binding:"omitempty,max=50"`
	Exchange  *string `json:"exchange" binding:"omitempty,max=20"`
	Source    *string `json:"source" binding:"omitempty,max=20"`
	SortOrder *int    `json:"sort_order"`
}

type KlineQuery struct {
	Period string `form:"period" binding:"omitempty,oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y max"`
}
