package application

import (
	"encoding/json"
	"time"
)

type Application struct {
	ID                int64           `gorm:"primaryKey"`
	ApplicationCodeID int64           `gorm:"column:application_code_id;not null"`
	ApplicantID       int64           `gorm:"column:applicant_id;not null"`
	ApproverID        *int64          `gorm:"column:approver_id"`
	ApprovalRouteID   *int64          `gorm:"column:approval_route_id"`
	Status            string          `gorm:"column:status;default:draft"`
	CurrentLevel      int             `gorm:"column:current_level;default:0"`
	FormData          json.RawMessage `gorm:"column:form_data;type:jsonb"`
	AccountingStatus  string          `gorm:"column:accounting_status;default:none"`
	RejectionReason   *string         `gorm:"column:rejection_reason"`
	SubmittedAt       *time.Time      `gorm:"column:submitted_at"`
	ApprovedAt        *time.Time      `gorm:"column:approved_at"`
	RejectedAt        *time.Time      `gorm:"column:rejected_at"`
	CreatedAt         time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;default:now()"`
}

func (Application) TableName() string {
	return "applications"
}
