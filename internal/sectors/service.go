package sectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Business failures surface verbatim to the client, so the texts are fixed.
var ErrSectorMissing = errors.New("板块不存在")

type Service interface {
	// Save stores one sector snapshot for one collection date, replacing any
	// earlier snapshot of the same sector and date.
	Save(ctx context.Context, req SaveHotSectorRequest, recordDate time.Time) error
	ListTodayBrief(ctx context.Context) ([]HotSectorBriefResponse, error)
	GetTodayDetail(ctx context.Context, sectorName string) (*HotSectorDetailResponse, error)
	GetDetail(ctx context.Context, sectorID uuid.UUID) (*HotSectorDetailResponse, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *service) Save(ctx context.Context, req SaveHotSectorRequest, recordDate time.Time) error {
	recordDate = dateOnly(recordDate)

	catalysts, err := json.Marshal(req.Catalysts)
	if err != nil {
		return fmt.Errorf("保存热门板块失败: %v", err)
	}

	var sectorID uuid.UUID
	existing, err := s.repo.GetSectorByNameAndDate(req.SectorName, recordDate)
	switch {
	case err == nil:
		// re-push for the same sector/date overwrites the snapshot
		updates := map[string]interface{}{
			"narrative":  req.Narrative,
			"heat_index": scoreDecimal(req.HeatIndex),
			"catalysts":  string(catalysts),
			"risk_tips":  req.RiskTips,
		}
		if err := s.repo.UpdateSector(existing.ID, updates); err != nil {
			return fmt.Errorf("保存热门板块失败: %v", err)
		}
		if err := s.repo.DeleteLinks(existing.ID); err != nil {
			return fmt.Errorf("保存热门板块失败: %v", err)
		}
		sectorID = existing.ID

	case errors.Is(err, gorm.ErrRecordNotFound):
		sector := &HotSector{
			RecordDate: recordDate,
			SectorName: req.SectorName,
			Narrative:  req.Narrative,
			HeatIndex:  scoreDecimal(req.HeatIndex),
			Catalysts:  string(catalysts),
			RiskTips:   req.RiskTips,
		}
		if err := s.repo.CreateSector(sector); err != nil {
			return fmt.Errorf("保存热门板块失败: %v", err)
		}
		sectorID = sector.ID

	default:
		return fmt.Errorf("保存热门板块失败: %v", err)
	}

	for chainType, link := range map[string]SaveChainLinkInput{
		ChainUpstream:   req.Upstream,
		ChainMidstream:  req.Midstream,
		ChainDownstream: req.Downstream,
	} {
		if err := s.saveChainLink(sectorID, chainType, link); err != nil {
			return fmt.Errorf("保存热门板块失败: %v", err)
		}
	}
	return nil
}

func (s *service) saveChainLink(sectorID uuid.UUID, chainType string, input SaveChainLinkInput) error {
	link := &HotSectorChainLink{
		SectorID:    sectorID,
		ChainType:   chainType,
		Stage:       input.Stage,
		Description: input.Description,
	}
	if err := s.repo.CreateLink(link); err != nil {
		return err
	}

	for _, stock := range input.KeyStocks {
		record := &HotSectorStock{
			ChainLinkID:   link.ID,
			Symbol:        stock.Symbol,
			Name:          stock.Name,
			Reason:        stock.Reason,
			MomentumScore: scoreDecimal(stock.MomentumScore),
		}
		if err := s.repo.CreateStock(record); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) ListTodayBrief(ctx context.Context) ([]HotSectorBriefResponse, error) {
	records, err := s.repo.ListSectorsByDate(dateOnly(s.now().UTC()))
	if err != nil {
		return nil, fmt.Errorf("获取热门板块列表失败: %v", err)
	}

	result := make([]HotSectorBriefResponse, 0, len(records))
	for i := range records {
		result = append(result, records[i].ToBrief())
	}
	return result, nil
}

func (s *service) GetTodayDetail(ctx context.Context, sectorName string) (*HotSectorDetailResponse, error) {
	sector, err := s.repo.GetSectorByNameAndDate(sectorName, dateOnly(s.now().UTC()))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("今日板块 '%s' 不存在", sectorName)
		}
		return nil, fmt.Errorf("获取板块详情失败: %v", err)
	}
	return s.buildDetail(sector)
}

func (s *service) GetDetail(ctx context.Context, sectorID uuid.UUID) (*HotSectorDetailResponse, error) {
	sector, err := s.repo.GetSectorByID(sectorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectorMissing
		}
		return nil, fmt.Errorf("获取板块详情失败: %v", err)
	}
	return s.buildDetail(sector)
}

func (s *service) buildDetail(sector *HotSector) (*HotSectorDetailResponse, error) {
	links, err := s.repo.ListLinks(sector.ID)
	if err != nil {
		return nil, fmt.Errorf("获取板块详情失败: %v", err)
	}

	detail := &HotSectorDetailResponse{HotSectorBriefResponse: sector.ToBrief()}
	for i := range links {
		link := &links[i]
		stocks, err := s.repo.ListStocks(link.ID)
		if err != nil {
			return nil, fmt.Errorf("获取板块详情失败: %v", err)
		}

		keyStocks := make([]HotSectorStockResponse, 0, len(stocks))
		for j := range stocks {
			keyStocks = append(keyStocks, stocks[j].ToResponse())
		}
		resp := &HotSectorChainLinkResponse{
			ID:          link.ID.String(),
			ChainType:   link.ChainType,
			Stage:       link.Stage,
			Description: link.Description,
			KeyStocks:   keyStocks,
		}

		switch link.ChainType {
		case ChainUpstream:
			detail.Upstream = resp
		case ChainMidstream:
			detail.Midstream = resp
		case ChainDownstream:
			detail.Downstream = resp
		}
	}
	return detail, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
