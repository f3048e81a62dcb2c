package approvalroute

import (
	"errors"
	"strings"
	"time"
)

type StepDTO struct {
	ApproverID int64 `json:"approver_id"`
}

type CreateRouteDTO struct {
	Name  string    `json:"name"`
	Steps []StepDTO `json:"steps"`
}

func (dto CreateRouteDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("route name is required")
	}
	if len(dto.Steps) == 0 {
		return errors.New("a route needs at least one step")
	}
	for _, step := range dto.Steps {
		if step.ApproverID <= 0 {
			return errors.New("every step needs an approver")
		}
	}
	return nil
}

type UpdateRouteDTO struct {
	Name     *string   `json:"name,omitempty"`
	Steps    []StepDTO `json:"steps,omitempty"`
	IsActive *bool     `json:"is_active,omitempty"`
}

func (dto UpdateRouteDTO) Validate() error {
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		return errors.New("route name cannot be empty")
	}
	for _, step := range dto.Steps {
		if step.ApproverID <= 0 {
			return errors.New("every step needs an approver")
		}
	}
	return nil
}

type RouteResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Steps     []StepDTO `json:"steps"`
	StepCount int       `json:"step_count"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RoutesResponse struct {
	Routes []RouteResponse `json:"routes"`
}

func (r *Route) ToResponse() RouteResponse {
	steps := make([]StepDTO, len(r.Steps))
	for i, step := range r.Steps {
		steps[i] = StepDTO{ApproverID: step.ApproverID}
	}
	return RouteResponse{
		ID:        r.ID,
		Name:      r.Name,
		Steps:     steps,
		StepCount: r.StepCount(),
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
