package applicationcode

import (
	"time"

	codeDatamodel "github.com/bp848/mqdriven-sub004/internal/core/datamodel/applicationcode"
)

// ApplicationCode identifies a kind of application, e.g. EXP for expense
// claims or LEV for leave requests. The catalog is seeded and rarely changes.
type ApplicationCode struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *ApplicationCode) IsActiveCode() bool {
	return c.IsActive
}

func FromDataModel(m *codeDatamodel.ApplicationCode) *ApplicationCode {
	return &ApplicationCode{
		ID:          m.ID,
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToDataModel(c *ApplicationCode) *codeDatamodel.ApplicationCode {
	return &codeDatamodel.ApplicationCode{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
