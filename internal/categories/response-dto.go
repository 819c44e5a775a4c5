package categories

import "time"

type CategoryResponse struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	CategoryType CategoryType `json:"category_type"`
	UserID       *string      `json:"user_id,omitempty"`
	IsSystem     bool         `json:"is_system"`
	Icon         string       `json:"icon,omitempty"`
	SortOrder    int          `json:"sort_order"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

