package sectors

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetSectorByID(id uuid.UUID) (*HotSector, error)
	GetSectorByNameAndDate(name string, date time.Time) (*HotSector, error)
	CreateSector(sector *HotSector) error
	UpdateSector(id uuid.UUID, updates map[string]interface{}) error
	ListSectorsByDate(date time.Time) ([]HotSector, error)

	CreateLink(link *HotSectorChainLink) error
	ListLinks(sectorID uuid.UUID) ([]HotSectorChainLink, error)
	// DeleteLinks removes a sector's chain links together with their stocks.
	DeleteLinks(sectorID uuid.UUID) error

	CreateStock(stock *HotSectorStock) error
	ListStocks(chainLinkID uuid.UUID) ([]HotSectorStock, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetSectorByID(id uuid.UUID) (*HotSector, error) {
	var sector HotSector
	err := r.db.Where("id = ?", id).First(&sector).Error
	if err != nil {
		return nil, err
	}
	return &sector, nil
}

func (r *repository) GetSectorByNameAndDate(name string, date time.Time) (*HotSector, error) {
	var sector HotSector
	err := r.db.Where("sector_name = ? AND record_date = ?", name, date).First(&sector).Error
	if err != nil {
		return nil, err
	}
	return &sector, nil
}

func (r *repository) CreateSector(sector *HotSector) error {
	return r.db.Create(sector).Error
}

func (r *repository) UpdateSector(id uuid.UUID, updates map[string]interface{}) error {
	return r.db.Model(&HotSector{}).Where("id = ?", id).Updates(updates).Error
}

func (r *repository) ListSectorsByDate(date time.Time) ([]HotSector, error) {
	var result []HotSector
	err := r.db.Where("record_date = ?", date).
		Order("heat_index DESC NULLS LAST").
		Find(&result).Error
	return result, err
}

func (r *repository) CreateLink(link *HotSectorChainLink) error {
	return r.db.Create(link).Error
}

func (r *repository) ListLinks(sectorID uuid.UUID) ([]HotSectorChainLink, error) {
	var result []HotSectorChainLink
	err := r.db.Where("sector_id = ?", sectorID).Find(&result).Error
	return result, err
}

func (r *repository) DeleteLinks(sectorID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where(
			"chain_link_id IN (?)",
			tx.Model(&HotSectorChainLink{}).Select("id").Where("sector_id = ?", sectorID),
		).Delete(&HotSectorStock{}).Error
		if err != nil {
			return err
		}
		return tx.Where("sector_id = ?", sectorID).Delete(&HotSectorChainLink{}).Error
	})
}

func (r *repository) CreateStock(stock *HotSectorStock) error {
	return r.db.Create(stock).Error
}

func (r *repository) ListStocks(chainLinkID uuid.UUID) ([]HotSectorStock, error) {
	var result []HotSectorStock
	err := r.db.Where("chain_link_id = ?", chainLinkID).
		Order("momentum_score DESC NULLS LAST").
		Find(&result).Error
	return result, err
}
