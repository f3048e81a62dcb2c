package approvalroute

import (
	"log/slog"

	"github.com/bp848/mqdriven-sub004/internal"
	routeDatamodel "github.com/bp848/mqdriven-sub004/internal/core/datamodel/approvalroute"
)

type RepositoryAPI interface {
	GetAll() ([]*routeDatamodel.ApprovalRoute, error)
	GetByID(id int64) (*routeDatamodel.ApprovalRoute, error)
	Create(route *routeDatamodel.ApprovalRoute) error
	Update(route *routeDatamodel.ApprovalRoute) error
	Deactivate(id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetRoute satisfies application.RouteProvider. Inactive routes still
// resolve here so in-flight applications keep their route.
func (s *Service) GetRoute(id int64) (*Route, error) {
	model, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, internal.ErrRouteNotFound
	}

	route, err := FromDataModel(model)
	if err != nil {
		s.logger.Error("corrupt route data", "route_id", id, "error", err)
		return nil, internal.NewInternalError("failed to decode approval route", err)
	}
	return route, nil
}

func (s *Service) GetAllRoutes() ([]RouteResponse, error) {
	models, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get routes from repository", "error", err)
		return nil, err
	}

	responses := make([]RouteResponse, 0, len(models))
	for _, model := range models {
		route, err := FromDataModel(model)
		if err != nil {
			s.logger.Warn("skipping corrupt route", "route_id", model.ID, "error", err)
			continue
		}
		responses = append(responses, route.ToResponse())
	}
	return responses, nil
}

func (s *Service) CreateRoute(dto CreateRouteDTO) (*RouteResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	steps := make([]Step, len(dto.Steps))
	for i, step := range dto.Steps {
		steps[i] = Step{ApproverID: step.ApproverID}
	}

	route := NewRoute(dto.Name, steps)
	model, err := ToDataModel(route)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode approval route", err)
	}

	if err := s.repo.Create(model); err != nil {
		s.logger.Error("failed to create route", "name", dto.Name, "error", err)
		return nil, err
	}
	route.ID = model.ID

	s.logger.Info("approval route created", "route_id", route.ID, "steps", len(steps))
	resp := route.ToResponse()
	return &resp, nil
}

func (s *Service) UpdateRoute(id int64, dto UpdateRouteDTO) (*RouteResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	route, err := s.GetRoute(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		route.Name = *dto.Name
	}
	if dto.Steps != nil {
		steps := make([]Step, len(dto.Steps))
		for i, step := range dto.Steps {
			steps[i] = Step{ApproverID: step.ApproverID}
		}
		route.Steps = steps
	}
	if dto.IsActive != nil {
		route.IsActive = *dto.IsActive
	}

	model, err := ToDataModel(route)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode approval route", err)
	}
	if err := s.repo.Update(model); err != nil {
		s.logger.Error("failed to update route", "route_id", id, "error", err)
		return nil, err
	}

	route.UpdatedAt = model.UpdatedAt
	resp := route.ToResponse()
	return &resp, nil
}

// DeactivateRoute soft-deletes: the route stops appearing for new
// applications but stays resolvable for in-flight ones.
func (s *Service) DeactivateRoute(id int64) error {
	if _, err := s.GetRoute(id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(id); err != nil {
		s.logger.Error("failed to deactivate route", "route_id", id, "error", err)
		return err
	}
	s.logger.Info("approval route deactivated", "route_id", id)
	return nil
}
