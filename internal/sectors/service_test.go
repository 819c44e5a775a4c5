package sectors

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRepo keeps sector snapshots in maps, enough to drive the service
// without a database.
type fakeRepo struct {
	sectors map[uuid.UUID]*HotSector
	links   map[uuid.UUID]*HotSectorChainLink
	stocks  map[uuid.UUID]*HotSectorStock
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sectors: make(map[uuid.UUID]*HotSector),
		links:   make(map[uuid.UUID]*HotSectorChainLink),
		stocks:  make(map[uuid.UUID]*HotSectorStock),
	}
}

func (f *fakeRepo) GetSectorByID(id uuid.UUID) (*HotSector, error) {
	sector, ok := f.sectors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *sector
	return &copied, nil
}

func (f *fakeRepo) GetSectorByNameAndDate(name string, date time.Time) (*HotSector, error) {
	for _, sector := range f.sectors {
		if sector.SectorName == name && sector.RecordDate.Equal(date) {
			copied := *sector
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateSector(sector *HotSector) error {
	if sector.ID == uuid.Nil {
		sector.ID = uuid.New()
	}
	sector.CreatedAt = time.Now()
	f.sectors[sector.ID] = sector
	return nil
}

func (f *fakeRepo) UpdateSector(id uuid.UUID, updates map[string]interface{}) error {
	sector, ok := f.sectors[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if narrative, ok := updates["narrative"].(string); ok {
		sector.Narrative = narrative
	}
	if heat, ok := updates["heat_index"].(decimal.NullDecimal); ok {
		sector.HeatIndex = heat
	}
	if catalysts, ok := updates["catalysts"].(string); ok {
		sector.Catalysts = catalysts
	}
	if riskTips, ok := updates["risk_tips"].(string); ok {
		sector.RiskTips = riskTips
	}
	return nil
}

func (f *fakeRepo) ListSectorsByDate(date time.Time) ([]HotSector, error) {
	var result []HotSector
	for _, sector := range f.sectors {
		if sector.RecordDate.Equal(date) {
			result = append(result, *sector)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].HeatIndex.Decimal.GreaterThan(result[j].HeatIndex.Decimal)
	})
	return result, nil
}

func (f *fakeRepo) CreateLink(link *HotSectorChainLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	f.links[link.ID] = link
	return nil
}

func (f *fakeRepo) ListLinks(sectorID uuid.UUID) ([]HotSectorChainLink, error) {
	var result []HotSectorChainLink
	for _, link := range f.links {
		if link.SectorID == sectorID {
			result = append(result, *link)
		}
	}
	return result, nil
}

func (f *fakeRepo) DeleteLinks(sectorID uuid.UUID) error {
	for id, link := range f.links {
		if link.SectorID != sectorID {
			continue
		}
		for stockID, stock := range f.stocks {
			if stock.ChainLinkID == id {
				delete(f.stocks, stockID)
			}
		}
		delete(f.links, id)
	}
	return nil
}

func (f *fakeRepo) CreateStock(stock *HotSectorStock) error {
	if stock.ID == uuid.Nil {
		stock.ID = uuid.New()
	}
	f.stocks[stock.ID] = stock
	return nil
}

func (f *fakeRepo) ListStocks(chainLinkID uuid.UUID) ([]HotSectorStock, error) {
	var result []HotSectorStock
	for _, stock := range f.stocks {
		if stock.ChainLinkID == chainLinkID {
			result = append(result, *stock)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].MomentumScore.Decimal.GreaterThan(result[j].MomentumScore.Decimal)
	})
	return result, nil
}

var testToday = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepo) Service {
	svc := NewService(repo).(*service)
	svc.now = func() time.Time { return testToday.Add(9 * time.Hour) }
	return svc
}

func sampleRequest(name string, heat float64) SaveHotSectorRequest {
	return SaveHotSectorRequest{
		SectorName: name,
		Narrative:  "算力需求爆发叠加2nm工艺量产预期",
		HeatIndex:  heat,
		Upstream: SaveChainLinkInput{
			Stage:       "上游：设备与材料",
			Description: "光刻机及高带宽内存材料",
			KeyStocks: []SaveStockInput{
				{Symbol: "ASML", Name: "艾司摩尔", Reason: "EUV光刻机垄断者", MomentumScore: 88},
				{Symbol: "AMAT", Name: "应用材料", Reason: "半导体设备龙头", MomentumScore: 82},
			},
		},
		Midstream: SaveChainLinkInput{
			Stage:       "中游：设计与代工",
			Description: "GPU设计与先进工艺代工",
			KeyStocks: []SaveStockInput{
				{Symbol: "NVDA", Name: "英伟达", Reason: "AI算力绝对核心", MomentumScore: 98},
			},
		},
		Downstream: SaveChainLinkInput{
			Stage:       "下游：应用与终端",
			Description: "AI服务器与大模型厂商",
		},
		Catalysts: []string{"GTC大会召开", "季度财报超预期"},
		RiskTips:  "估值处于历史高位",
	}
}

func TestSaveCreatesSectorWithChain(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	require.NoError(t, svc.Save(context.Background(), sampleRequest("AI半导体", 95.5), testToday))

	sector, err := repo.GetSectorByNameAndDate("AI半导体", testToday)
	require.NoError(t, err)
	assert.Equal(t, "估值处于历史高位", sector.RiskTips)

	links, err := repo.ListLinks(sector.ID)
	require.NoError(t, err)
	require.Len(t, links, 3)

	chainTypes := make(map[string]bool)
	for _, link := range links {
		chainTypes[link.ChainType] = true
	}
	assert.True(t, chainTypes[ChainUpstream])
	assert.True(t, chainTypes[ChainMidstream])
	assert.True(t, chainTypes[ChainDownstream])
	assert.Len(t, repo.stocks, 3)
}

func TestSaveNormalizesRecordDate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	// the collection timestamp carries a time-of-day; storage keys by day
	require.NoError(t, svc.Save(context.Background(), sampleRequest("低空经济", 80), testToday.Add(15*time.Hour)))

	_, err := repo.GetSectorByNameAndDate("低空经济", testToday)
	assert.NoError(t, err)
}

func TestSaveOverwritesSameSectorAndDate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, sampleRequest("AI半导体", 95.5), testToday))

	replacement := sampleRequest("AI半导体", 90)
	replacement.RiskTips = "关注美联储降息预期变动"
	replacement.Upstream.KeyStocks = replacement.Upstream.KeyStocks[:1]
	require.NoError(t, svc.Save(ctx, replacement, testToday))

	require.Len(t, repo.sectors, 1, "re-push replaces, never duplicates")
	sector, err := repo.GetSectorByNameAndDate("AI半导体", testToday)
	require.NoError(t, err)
	assert.Equal(t, "关注美联储降息预期变动", sector.RiskTips)

	links, err := repo.ListLinks(sector.ID)
	require.NoError(t, err)
	assert.Len(t, links, 3)
	assert.Len(t, repo.stocks, 2, "old chain stocks are gone")
}

func TestListTodayBriefOrdersByHeat(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, sampleRequest("低空经济", 72.5), testToday))
	require.NoError(t, svc.Save(ctx, sampleRequest("AI半导体", 95.5), testToday))
	require.NoError(t, svc.Save(ctx, sampleRequest("昨日板块", 99), testToday.AddDate(0, 0, -1)))

	list, err := svc.ListTodayBrief(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2, "yesterday's snapshot stays out")
	assert.Equal(t, "AI半导体", list[0].SectorName)
	assert.Equal(t, "低空经济", list[1].SectorName)
	require.NotNil(t, list[0].HeatIndex)
	assert.Equal(t, 95.5, *list[0].HeatIndex)
	assert.Equal(t, []string{"GTC大会召开", "季度财报超预期"}, list[0].Catalysts)
}

func TestGetTodayDetail(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.GetTodayDetail(ctx, "AI半导体")
	require.Error(t, err)
	assert.Equal(t, "今日板块 'AI半导体' 不存在", err.Error())

	require.NoError(t, svc.Save(ctx, sampleRequest("AI半导体", 95.5), testToday))

	detail, err := svc.GetTodayDetail(ctx, "AI半导体")
	require.NoError(t, err)
	require.NotNil(t, detail.Upstream)
	require.NotNil(t, detail.Midstream)
	require.NotNil(t, detail.Downstream)

	require.Len(t, detail.Upstream.KeyStocks, 2)
	assert.Equal(t, "ASML", detail.Upstream.KeyStocks[0].Symbol, "stocks sort by momentum")
	assert.Equal(t, "NVDA", detail.Midstream.KeyStocks[0].Symbol)
	assert.Empty(t, detail.Downstream.KeyStocks)
	assert.Equal(t, "上游：设备与材料", detail.Upstream.Stage)
}

func TestGetDetailByID(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.GetDetail(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSectorMissing)

	require.NoError(t, svc.Save(ctx, sampleRequest("AI半导体", 95.5), testToday))
	sector, err := repo.GetSectorByNameAndDate("AI半导体", testToday)
	require.NoError(t, err)

	detail, err := svc.GetDetail(ctx, sector.ID)
	require.NoError(t, err)
	assert.Equal(t, "AI半导体", detail.SectorName)
}
