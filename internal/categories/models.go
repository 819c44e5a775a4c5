package categories

import (
	"time"

	"github.com/google/uuid"
)

// CategoryType tells expense rows from income rows.
type CategoryType int16

const (
	TypeExpense CategoryType = 1 // 支出
	TypeIncome  CategoryType = 2 // 收入
)

func (t CategoryType) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

// Category is a single bill category. System presets carry a nil UserID and
// are visible to every user; custom rows belong to exactly one user.
type Category struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string       `json:"name" gorm:"not null;size:50"`
	CategoryType CategoryType `json:"category_type" gorm:"not null;type:smallint"`
	UserID       *uuid.UUID   `json:"user_id" gorm:"type:uuid"`
	IsSystem     bool         `json:"is_system" gorm:"not null;default:false"`
	Icon         string       `json:"icon" gorm:"size:100"`
	SortOrder    int          `json:"sort_order" gorm:"not null;default:0"` // smaller sorts first
	CreatedAt    time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Category) TableName() string {
	return "categories"
}

func (c *Category) ToResponse() CategoryResponse {
	resp := CategoryResponse{
		ID:           c.ID.String(),
		Name:         c.Name,
		CategoryType: c.CategoryType,
		IsSystem:     c.IsSystem,
		Icon:         c.Icon,
		SortOrder:    c.SortOrder,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.UserID != nil {
		id := c.UserID.String()
		resp.UserID = &id
	}
	return resp
}
