package application

import (
	"encoding/json"
	"time"

	applicationDatamodel "github.com/bp848/mqdriven-sub004/internal/core/datamodel/application"
)

// Application statuses. Only draft may move to pending_approval; only
// pending_approval may move to approved, rejected or cancelled. The last
// three are terminal.
const (
	StatusDraft           = "draft"
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusCancelled       = "cancelled"
)

// Accounting side-flag, independent of the approval state machine. It only
// gates journal export of approved applications.
const (
	AccountingStatusNone     = "none"
	AccountingStatusExported = "exported"
)

const DefaultCancellationReason = "cancelled by applicant"

// FormData is the open per-type-code payload. Shapes vary by application
// code (EXP, TRP, LEV, APL, DLY, WKR), so it stays untyped here; the amount
// derivation in amount.go is the documented contract over its fields.
type FormData map[string]any

type Application struct {
	ID                int64      `json:"id"`
	ApplicationCodeID int64      `json:"application_code_id"`
	ApplicantID       int64      `json:"applicant_id"`
	ApproverID        *int64     `json:"approver_id,omitempty"`
	ApprovalRouteID   *int64     `json:"approval_route_id,omitempty"`
	Status            string     `json:"status"`
	CurrentLevel      int        `json:"current_level"`
	FormData          FormData   `json:"form_data"`
	AccountingStatus  string     `json:"accounting_status"`
	RejectionReason   *string    `json:"rejection_reason,omitempty"`
	SubmittedAt       *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	RejectedAt        *time.Time `json:"rejected_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (a *Application) IsDraft() bool {
	return a.Status == StatusDraft
}

func (a *Application) IsPending() bool {
	return a.Status == StatusPendingApproval
}

// IsTerminal reports whether the application reached a final status.
// Terminal records are immutable except for the accounting side-flag.
func (a *Application) IsTerminal() bool {
	switch a.Status {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

func (a *Application) IsExportable() bool {
	return a.Status == StatusApproved && a.AccountingStatus == AccountingStatusNone
}

func NewApplication(applicantID int64, dto CreateApplicationDTO) *Application {
	now := time.Now()

	formData := dto.FormData
	if formData == nil {
		formData = FormData{}
	}

	return &Application{
		ApplicationCodeID: dto.ApplicationCodeID,
		ApplicantID:       applicantID,
		ApprovalRouteID:   dto.ApprovalRouteID,
		Status:            StatusDraft,
		CurrentLevel:      0,
		FormData:          formData,
		AccountingStatus:  AccountingStatusNone,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func ToDataModel(a *Application) (*applicationDatamodel.Application, error) {
	raw, err := json.Marshal(a.FormData)
	if err != nil {
		return nil, err
	}

	return &applicationDatamodel.Application{
		ID:                a.ID,
		ApplicationCodeID: a.ApplicationCodeID,
		ApplicantID:       a.ApplicantID,
		ApproverID:        a.ApproverID,
		ApprovalRouteID:   a.ApprovalRouteID,
		Status:            a.Status,
		CurrentLevel:      a.CurrentLevel,
		FormData:          raw,
		AccountingStatus:  a.AccountingStatus,
		RejectionReason:   a.RejectionReason,
		SubmittedAt:       a.SubmittedAt,
		ApprovedAt:        a.ApprovedAt,
		RejectedAt:        a.RejectedAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}, nil
}

func FromDataModel(m *applicationDatamodel.Application) *Application {
	formData := FormData{}
	if len(m.FormData) > 0 {
		// Corrupt payloads degrade to an empty form rather than failing reads.
		_ = json.Unmarshal(m.FormData, &formData)
	}

	return &Application{
		ID:                m.ID,
		ApplicationCodeID: m.ApplicationCodeID,
		ApplicantID:       m.ApplicantID,
		ApproverID:        m.ApproverID,
		ApprovalRouteID:   m.ApprovalRouteID,
		Status:            m.Status,
		CurrentLevel:      m.CurrentLevel,
		FormData:          formData,
		AccountingStatus:  m.AccountingStatus,
		RejectionReason:   m.RejectionReason,
		SubmittedAt:       m.SubmittedAt,
		ApprovedAt:        m.ApprovedAt,
		RejectedAt:        m.RejectedAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func FromDataModelSlice(models []*applicationDatamodel.Application) []*Application {
	result := make([]*Application, len(models))
	for i, m := range models {
		result[i] = FromDataModel(m)
	}
	return result
}
