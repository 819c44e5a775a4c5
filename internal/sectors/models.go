package sectors

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Chain link positions. Every sector snapshot carries exactly these three.
const (
	ChainUpstream   = "upstream"
	ChainMidstream  = "midstream"
	ChainDownstream = "downstream"
)

// HotSector is one sector snapshot for one collection date. An external
// research pipeline pushes these in; the sector/date pair is unique and a
// re-push for the same pair overwrites the previous snapshot.
type HotSector struct {
	ID         uuid.UUID           `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RecordDate time.Time           `json:"record_date" gorm:"not null;type:date"`
	SectorName string              `json:"sector_name" gorm:"not null;size:50"` // AI半导体 / 低空经济
	Narrative  string              `json:"narrative" gorm:"type:text"`
	HeatIndex  decimal.NullDecimal `json:"heat_index" gorm:"type:numeric(5,2)"` // 0-100
	Catalysts  string              `json:"catalysts" gorm:"type:text"`          // JSON string array
	RiskTips   string              `json:"risk_tips" gorm:"type:text"`
	CreatedAt  time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (HotSector) TableName() string {
	return "hot_sectors"
}

func (s *HotSector) ToBrief() HotSectorBriefResponse {
	var catalysts []string
	if s.Catalysts != "" {
		// a snapshot written by this service always holds a valid array
		_ = json.Unmarshal([]byte(s.Catalysts), &catalysts)
	}
	return HotSectorBriefResponse{
		ID:         s.ID.String(),
		RecordDate: s.RecordDate.Format("2006-01-02"),
		SectorName: s.SectorName,
		HeatIndex:  nullDecimalFloat(s.HeatIndex),
		Narrative:  s.Narrative,
		Catalysts:  catalysts,
		RiskTips:   s.RiskTips,
		CreatedAt:  s.CreatedAt,
	}
}

// HotSectorChainLink is one industry-chain stage of a sector snapshot.
type HotSectorChainLink struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SectorID    uuid.UUID `json:"sector_id" gorm:"type:uuid;not null"`
	ChainType   string    `json:"chain_type" gorm:"not null;size:20"` // upstream / midstream / downstream
	Stage       string    `json:"stage" gorm:"size:50"`               // 上游：设备与材料
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (HotSectorChainLink) TableName() string {
	return "hot_sector_chain_links"
}

// HotSectorStock is one representative stock under a chain link.
type HotSectorStock struct {
	ID            uuid.UUID           `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ChainLinkID   uuid.UUID           `json:"chain_link_id" gorm:"type:uuid;not null"`
	Symbol        string              `json:"symbol" gorm:"not null;size:20"`
	Name          string              `json:"name" gorm:"size:50"`
	Reason        string              `json:"reason" gorm:"type:text"`
	MomentumScore decimal.NullDecimal `json:"momentum_score" gorm:"type:numeric(5,2)"` // 0-100
	CreatedAt     time.Time           `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (HotSectorStock) TableName() string {
	return "hot_sector_stocks"
}

func (s *HotSectorStock) ToResponse() HotSectorStockResponse {
	return HotSectorStockResponse{
		ID:            s.ID.String(),
		Symbol:        s.Symbol,
		Name:          s.Name,
		Reason:        s.Reason,
		MomentumScore: nullDecimalFloat(s.MomentumScore),
	}
}

func nullDecimalFloat(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f, _ := d.Decimal.Float64()
	return &f
}

func scoreDecimal(v float64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(v), Valid: true}
}
