package application

import (
	"errors"
	"strings"
)

// CreateApplicationDTO is the payload for creating a draft.
type CreateApplicationDTO struct {
	ApplicationCodeID int64          `json:"application_code_id"`
	ApprovalRouteID   *int64         `json:"approval_route_id,omitempty"`
	FormData          map[string]any `json:"form_data"`
}

func (dto CreateApplicationDTO) Validate() error {
	if dto.ApplicationCodeID <= 0 {
		return errors.New("application code is required")
	}
	return nil
}

// UpdateDraftDTO carries edits to a draft. Only drafts are editable.
type UpdateDraftDTO struct {
	ApprovalRouteID *int64         `json:"approval_route_id,omitempty"`
	FormData        map[string]any `json:"form_data"`
}

type SubmitApplicationDTO struct {
	ApprovalRouteID *int64 `json:"approval_route_id,omitempty"`
}

type RejectApplicationDTO struct {
	Reason string `json:"reason"`
}

func (dto RejectApplicationDTO) Validate() error {
	if strings.TrimSpace(dto.Reason) == "" {
		return errors.New("reason is required when rejecting an application")
	}
	return nil
}

type CancelApplicationDTO struct {
	Reason string `json:"reason,omitempty"`
}

// ResubmitApplicationDTO creates a new draft from a rejected (or previously
// linked) application, optionally replacing the copied form data.
type ResubmitApplicationDTO struct {
	FormData map[string]any `json:"form_data,omitempty"`
}

// StatusSummary is one dashboard bucket: count and monetary total for a status.
type StatusSummary struct {
	Status      string  `json:"status"`
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}

type SummaryResponse struct {
	Buckets     []StatusSummary `json:"buckets"`
	GrandTotal  float64         `json:"grand_total"`
	ParentCount int             `json:"resubmitted_parent_count"`
	ChildCount  int             `json:"resubmission_count"`
}

// RouteStepView is one rendered level of an application's route progress.
type RouteStepView struct {
	Level      int    `json:"level"`
	ApproverID int64  `json:"approver_id"`
	State      string `json:"state"`
}

type RouteProgressResponse struct {
	ApplicationID int64           `json:"application_id"`
	Status        string          `json:"status"`
	CurrentLevel  int             `json:"current_level"`
	Steps         []RouteStepView `json:"steps"`
}

// ApplicationListItem augments a record with its resubmission badges.
type ApplicationListItem struct {
	*Application
	ResubmittedFromID *int64 `json:"resubmitted_from_id,omitempty"`
	HasResubmission   bool   `json:"has_resubmission"`
}

type ApplicationListResponse struct {
	Applications []ApplicationListItem `json:"applications"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}
