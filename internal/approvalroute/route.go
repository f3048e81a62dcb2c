package approvalroute

import (
	"encoding/json"
	"time"

	"github.com/bp848/mqdriven-sub004/internal"
	routeDatamodel "github.com/bp848/mqdriven-sub004/internal/core/datamodel/approvalroute"
)

// Step is one level of an approval route. Steps are walked in order; the
// 1-based position of a step is the application's currentLevel while pending.
type Step struct {
	ApproverID int64 `json:"approverId"`
}

type RouteData struct {
	Steps []Step `json:"steps"`
}

type Route struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Steps     []Step    `json:"steps"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Route) StepCount() int {
	return len(r.Steps)
}

// ApproverAt returns the approver for a 1-based level. An out-of-bounds
// level means the stored current_level no longer fits the route.
func (r *Route) ApproverAt(level int) (int64, error) {
	if level < 1 || level > len(r.Steps) {
		return 0, internal.ErrRouteExhausted
	}
	return r.Steps[level-1].ApproverID, nil
}

// IsFinalStep reports whether the given 1-based level is the route's last step.
func (r *Route) IsFinalStep(level int) bool {
	return len(r.Steps) > 0 && level == len(r.Steps)
}

func NewRoute(name string, steps []Step) *Route {
	now := time.Now()
	return &Route{
		Name:      name,
		Steps:     steps,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func ToDataModel(r *Route) (*routeDatamodel.ApprovalRoute, error) {
	raw, err := json.Marshal(RouteData{Steps: r.Steps})
	if err != nil {
		return nil, err
	}

	return &routeDatamodel.ApprovalRoute{
		ID:        r.ID,
		Name:      r.Name,
		RouteData: raw,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func FromDataModel(m *routeDatamodel.ApprovalRoute) (*Route, error) {
	var data RouteData
	if len(m.RouteData) > 0 {
		if err := json.Unmarshal(m.RouteData, &data); err != nil {
			return nil, err
		}
	}

	return &Route{
		ID:        m.ID,
		Name:      m.Name,
		Steps:     data.Steps,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}
