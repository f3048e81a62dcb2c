package approvalroute

import (
	"encoding/json"
	"time"
)

type ApprovalRoute struct {
	ID        int64           `gorm:"primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	RouteData json.RawMessage `gorm:"column:route_data;type:jsonb;not null"`
	IsActive  bool            `gorm:"column:is_active;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time       `gorm:"column:updated_at;default:now()"`
}

func (ApprovalRoute) TableName() string {
	return "approval_routes"
}
