package categories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(category *Category) error
	GetByID(id uuid.UUID) (*Category, error)
	Update(id uuid.UUID, updates map[string]interface{}) (*Category, error)
	Delete(id uuid.UUID) error

	SystemNameExists(name string, categoryType CategoryType) (bool, error)
	UserNameExists(userID uuid.UUID, name string, categoryType CategoryType) (bool, error)
	CountUserCustoms(userID uuid.UUID) (int64, error)

	ListSystem(categoryType *CategoryType) ([]Category, error)
	ListUserCustoms(userID uuid.UUID, categoryType *CategoryType) ([]Category, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(category *Category) error {
	return r.db.Create(category).Error
}

func (r *repository) GetByID(id uuid.UUID) (*Category, error) {
	var category Category
	err := r.db.Where("id = ?", id).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) Update(id uuid.UUID, updates map[string]interface{}) (*Category, error) {
	var category Category

	if err := r.db.Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&category).Updates(updates).Error; err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

func (r *repository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&Category{}).Error
}

func (r *repository) SystemNameExists(name string, categoryType CategoryType) (bool, error) {
	var count int64
	err := r.db.Model(&Category{}).
		Where("name = ? AND category_type = ? AND is_system = ?", name, categoryType, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) UserNameExists(userID uuid.UUID, name string, categoryType CategoryType) (bool, error) {
	var count int64
	err := r.db.Model(&Category{}).
		Where("name = ? AND category_type = ? AND user_id = ?", name, categoryType, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CountUserCustoms(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&Category{}).
		Where("user_id = ? AND is_system = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) ListSystem(categoryType *CategoryType) ([]Category, error) {
	var categories []Category
	query := r.db.Where("is_system = ?", true)
	if categoryType != nil {
		query = query.Where("category_type = ?", *categoryType)
	}
	err := query.Order("sort_order ASC").Find(&categories).Error
	return categories, err
}

func (r *repository) ListUserCustoms(userID uuid.UUID, categoryType *CategoryType) ([]Category, error) {
	var categories []Category
	query := r.db.Where("user_id = ? AND is_system = ?", userID, false)
	if categoryType != nil {
		query = query.Where("category_type = ?", *categoryType)
	}
	err := query.Order("sort_order ASC").Find(&categories).Error
	return categories, err
}
