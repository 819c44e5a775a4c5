package categories

type CreateCategoryRequest struct {
	Name         string       `json:"name" binding:"required,min=1,max=50"`
	CategoryType CategoryType `json:"category_type" binding:"required,oneof=1 2"`
	Icon         string       `json:"icon" binding:"omitempty,max=100"`
	SortOrder    int          `json:"sort_order"`
}

type UpdateCategoryRequest struct {
	Name         *string       `json:"name" binding:"omitempty,min=1,max=50"`
	CategoryType *CategoryType `json:"category_type" binding:"omitempty,oneof=1 2"`
	Icon         *string       `json:"icon" binding:"omitempty,max=100"`
	SortOrder    *int          `json:"sort_order"`
}

type CategoryListQuery struct {
	UserID       string        `form:"user_id" binding:"omitempty,uuid"`
	CategoryType *CategoryType `form:"category_type" binding:"omitempty,oneof=1 2"`
}

type UserCategoryListQuery struct {
	CategoryType *CategoryType `form:"category_type" binding:"omitempty,oneof=1 2"`
}
