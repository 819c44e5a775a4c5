package categories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tally/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Business failures surface verbatim to the client, so the texts are fixed.
var (
	ErrSystemCategoryMissing = errors.New("系统分类不存在")
	ErrNotSystemUpdate       = errors.New("该分类不是系统分类，无法通过此接口修改")
	ErrNotSystemDelete       = errors.New("该分类不是系统分类，无法通过此接口删除")
	ErrCategoryMissing       = errors.New("分类不存在")
	ErrSystemUpdate          = errors.New("系统分类不允许修改")
	ErrSystemDelete          = errors.New("系统分类不允许删除")
	ErrNotOwnerUpdate        = errors.New("无权限修改该分类")
	ErrNotOwnerDelete        = errors.New("无权限删除该分类")
	ErrNoUpdates             = errors.New("没有需要更新的字段")
	ErrCustomLimit           = errors.New("自定义分类数量已达上限（100个）")
)

const (
	maxCustomCategories = 100
	defaultListTTL      = 5 * time.Minute
)

type Service interface {
	CreateSystemCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error)
	UpdateSystemCategory(ctx context.Context, categoryID uuid.UUID, req UpdateCategoryRequest) error
	DeleteSystemCategory(ctx context.Context, categoryID uuid.UUID) error
	ListSystemCategories(ctx context.Context) ([]CategoryResponse, error)

	CreateUserCategory(ctx context.Context, userID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error)
	UpdateUserCategory(ctx context.Context, userID, categoryID uuid.UUID, req UpdateCategoryRequest) error
	DeleteUserCategory(ctx context.Context, userID, categoryID uuid.UUID) error

	// ListCategories returns system presets when userID is nil, otherwise the
	// system presets followed by that user's customs.
	ListCategories(ctx context.Context, userID *uuid.UUID, categoryType *CategoryType) ([]CategoryResponse, error)
}

type service struct {
	repo    Repository
	cache   cache.Service
	listTTL time.Duration
}

func NewService(repo Repository, cacheService cache.Service, listTTL time.Duration) Service {
	if listTTL <= 0 {
		listTTL = defaultListTTL
	}
	return &service{repo: repo, cache: cacheService, listTTL: listTTL}
}

func (s *service) CreateSystemCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	exists, err := s.repo.SystemNameExists(req.Name, req.CategoryType)
	if err != nil {
		return nil, fmt.Errorf("新增系统分类失败: %v", err)
	}
	if exists {
		return nil, fmt.Errorf("系统分类 '%s' 已存在", req.Name)
	}

	category := &Category{
		Name:         req.Name,
		CategoryType: req.CategoryType,
		UserID:       nil,
		IsSystem:     true,
		Icon:         req.Icon,
		SortOrder:    req.SortOrder,
	}
	if err := s.repo.Create(category); err != nil {
		return nil, fmt.Errorf("新增系统分类失败: %v", err)
	}

	s.invalidateAll(ctx)
	resp := category.ToResponse()
	return &resp, nil
}

func (s *service) UpdateSystemCategory(ctx context.Context, categoryID uuid.UUID, req UpdateCategoryRequest) error {
	category, err := s.repo.GetByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSystemCategoryMissing
		}
		return fmt.Errorf("修改系统分类失败: %v", err)
	}
	if !category.IsSystem {
		return ErrNotSystemUpdate
	}

	updates := buildUpdates(req)
	if len(updates) == 0 {
		return ErrNoUpdates
	}

	if _, err := s.repo.Update(categoryID, updates); err != nil {
		return fmt.Errorf("修改系统分类失败: %v", err)
	}

	s.invalidateAll(ctx)
	return nil
}

func (s *service) DeleteSystemCategory(ctx context.Context, categoryID uuid.UUID) error {
	category, err := s.repo.GetByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSystemCategoryMissing
		}
		return fmt.Errorf("删除系统分类失败: %v", err)
	}
	if !category.IsSystem {
		return ErrNotSystemDelete
	}

	if err := s.repo.Delete(categoryID); err != nil {
		return fmt.Errorf("删除系统分类失败: %v", err)
	}

	s.invalidateAll(ctx)
	return nil
}

func (s *service) ListSystemCategories(ctx context.Context) ([]CategoryResponse, error) {
	system, err := s.repo.ListSystem(nil)
	if err != nil {
		return nil, err
	}
	return toResponses(system), nil
}

func (s *service) CreateUserCategory(ctx context.Context, userID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error) {
	count, err := s.repo.CountUserCustoms(userID)
	if err != nil {
		return nil, fmt.Errorf("新增分类失败: %v", err)
	}
	if count >= maxCustomCategories {
		return nil, ErrCustomLimit
	}

	exists, err := s.repo.UserNameExists(userID, req.Name, req.CategoryType)
	if err != nil {
		return nil, fmt.Errorf("新增分类失败: %v", err)
	}
	if exists {
		return nil, fmt.Errorf("分类 '%s' 已存在", req.Name)
	}

	category := &Category{
		Name:         req.Name,
		CategoryType: req.CategoryType,
		UserID:       &userID,
		IsSystem:     false,
		Icon:         req.Icon,
		SortOrder:    req.SortOrder,
	}
	if err := s.repo.Create(category); err != nil {
		return nil, fmt.Errorf("新增分类失败: %v", err)
	}

	s.invalidateUser(ctx, userID)
	resp := category.ToResponse()
	return &resp, nil
}

func (s *service) UpdateUserCategory(ctx context.Context, userID, categoryID uuid.UUID, req UpdateCategoryRequest) error {
	category, err := s.repo.GetByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryMissing
		}
		return fmt.Errorf("修改分类失败: %v", err)
	}
	if category.IsSystem {
		return ErrSystemUpdate
	}
	if category.UserID == nil || *category.UserID != userID {
		return ErrNotOwnerUpdate
	}

	updates := buildUpdates(req)
	if len(updates) == 0 {
		return ErrNoUpdates
	}

	if _, err := s.repo.Update(categoryID, updates); err != nil {
		return fmt.Errorf("修改分类失败: %v", err)
	}

	s.invalidateUser(ctx, userID)
	return nil
}

func (s *service) DeleteUserCategory(ctx context.Context, userID, categoryID uuid.UUID) error {
	category, err := s.repo.GetByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryMissing
		}
		return fmt.Errorf("删除分类失败: %v", err)
	}
	if category.IsSystem {
		return ErrSystemDelete
	}
	if category.UserID == nil || *category.UserID != userID {
		return ErrNotOwnerDelete
	}

	if err := s.repo.Delete(categoryID); err != nil {
		return fmt.Errorf("删除分类失败: %v", err)
	}

	s.invalidateUser(ctx, userID)
	return nil
}

func (s *service) ListCategories(ctx context.Context, userID *uuid.UUID, categoryType *CategoryType) ([]CategoryResponse, error) {
	if userID == nil {
		system, err := s.repo.ListSystem(categoryType)
		if err != nil {
			return nil, err
		}
		return toResponses(system), nil
	}

	// Type-filtered reads skip the cache; only the full merged list is cached.
	if categoryType != nil {
		return s.mergedList(*userID, categoryType)
	}

	var cached []CategoryResponse
	err := s.cache.GetOrSet(ctx, cache.CategoryListKey(userID.String()), s.listTTL, func() (interface{}, error) {
		return s.mergedList(*userID, nil)
	}, &cached)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

// mergedList keeps system presets ahead of the user's customs, each slice
// already sorted by sort_order.
func (s *service) mergedList(userID uuid.UUID, categoryType *CategoryType) ([]CategoryResponse, error) {
	system, err := s.repo.ListSystem(categoryType)
	if err != nil {
		return nil, err
	}
	customs, err := s.repo.ListUserCustoms(userID, categoryType)
	if err != nil {
		return nil, err
	}
	return toResponses(append(system, customs...)), nil
}

// Invalidation is best effort; stale entries expire with the TTL anyway.

func (s *service) invalidateUser(ctx context.Context, userID uuid.UUID) {
	_ = s.cache.Delete(ctx, cache.CategoryListKey(userID.String()))
}

// invalidateAll drops every cached list; system rows appear in all of them.
func (s *service) invalidateAll(ctx context.Context) {
	_ = s.cache.DeletePattern(ctx, cache.CategoryListPattern())
}

func buildUpdates(req UpdateCategoryRequest) map[string]interface{} {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.CategoryType != nil {
		updates["category_type"] = *req.CategoryType
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	return updates
}

func toResponses(categories []Category) []CategoryResponse {
	responses := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, categories[i].ToResponse())
	}
	return responses
}
