package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/bp848/mqdriven-sub004/internal"
	"github.com/bp848/mqdriven-sub004/internal/approvalroute"
	"github.com/bp848/mqdriven-sub004/internal/core/events"
)

// Repository defines the data access methods for applications. Every
// transition is applied as a conditional update; implementations must
// return internal.ErrStaleApplication when the guard matches zero rows.
type Repository interface {
	Create(app *Application) error
	GetByID(id int64) (*Application, error)
	GetByApplicant(applicantID int64, limit, offset int) ([]*Application, error)
	GetByApprover(approverID int64, limit, offset int) ([]*Application, error)
	GetAll(limit, offset int) ([]*Application, error)
	UpdateDraft(app *Application) error
	ApplyTransition(id int64, t *Transition) error
	Delete(id int64) error
}

// RouteProvider resolves approval routes; the route domain owns storage.
type RouteProvider interface {
	GetRoute(id int64) (*approvalroute.Route, error)
}

type Service struct {
	repo     Repository
	routes   RouteProvider
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, routes RouteProvider, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		routes:   routes,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *Service) CreateApplication(actorID int64, dto CreateApplicationDTO) (*Application, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("application validation failed", "error", err, "applicant_id", actorID)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	app := NewApplication(actorID, dto)
	if err := s.repo.Create(app); err != nil {
		s.logger.Error("failed to create application", "error", err, "applicant_id", actorID)
		return nil, err
	}

	s.logger.Info("application draft created",
		"application_id", app.ID,
		"applicant_id", actorID,
		"application_code_id", app.ApplicationCodeID)

	return app, nil
}

func (s *Service) GetApplicationByID(id, userID int64, canViewAll bool) (*Application, error) {
	app, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get application", "error", err, "application_id", id)
		return nil, internal.ErrApplicationNotFound
	}

	if !canViewAll && app.ApplicantID != userID && !isApprover(app, userID) {
		s.logger.Warn("unauthorized access to application",
			"application_id", id, "user_id", userID, "applicant_id", app.ApplicantID)
		return nil, internal.ErrNotApplicant
	}

	return app, nil
}

func (s *Service) GetMyApplications(userID int64, limit, offset int) ([]*Application, error) {
	apps, err := s.repo.GetByApplicant(userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to get user applications", "error", err, "user_id", userID)
		return nil, err
	}
	return apps, nil
}

func (s *Service) GetPendingForApprover(approverID int64, limit, offset int) ([]*Application, error) {
	apps, err := s.repo.GetByApprover(approverID, limit, offset)
	if err != nil {
		s.logger.Error("failed to get pending approvals", "error", err, "approver_id", approverID)
		return nil, err
	}
	return apps, nil
}

func (s *Service) GetAllApplications(limit, offset int, canViewAll bool) ([]*Application, error) {
	if !canViewAll {
		s.logger.Warn("list all applications denied: insufficient permissions")
		return nil, internal.NewForbiddenError("insufficient permissions to list all applications", internal.ErrCodeNotApplicant)
	}

	apps, err := s.repo.GetAll(limit, offset)
	if err != nil {
		s.logger.Error("failed to get all applications", "error", err)
		return nil, err
	}
	return apps, nil
}

// WithBadges decorates records with their resubmission links for list views.
func (s *Service) WithBadges(apps []*Application) []ApplicationListItem {
	links := SummarizeLinks(apps)

	items := make([]ApplicationListItem, len(apps))
	for i, app := range apps {
		item := ApplicationListItem{Application: app}
		if parent, ok := links.ParentOf(app.ID); ok {
			p := parent
			item.ResubmittedFromID = &p
		}
		item.HasResubmission = links.HasResubmission(app.ID)
		items[i] = item
	}
	return items
}

func (s *Service) UpdateDraft(id, actorID int64, dto UpdateDraftDTO) (*Application, error) {
	app, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrApplicationNotFound
	}

	if app.Status != StatusDraft {
		s.logger.Warn("cannot edit application in current status",
			"application_id", id, "status", app.Status)
		return nil, internal.ErrInvalidTransition
	}
	if app.ApplicantID != actorID {
		return nil, internal.ErrNotApplicant
	}

	if dto.FormData != nil {
		app.FormData = dto.FormData
	}
	if dto.ApprovalRouteID != nil {
		app.ApprovalRouteID = dto.ApprovalRouteID
	}
	app.UpdatedAt = time.Now()

	if err := s.repo.UpdateDraft(app); err != nil {
		s.logger.Error("failed to update draft", "error", err, "application_id", id)
		return nil, err
	}

	return app, nil
}

func (s *Service) SubmitApplication(ctx context.Context, id, actorID int64, dto SubmitApplicationDTO) (*Application, error) {
	app, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrApplicationNotFound
	}

	routeID := app.ApprovalRouteID
	if dto.ApprovalRouteID != nil {
		routeID = dto.ApprovalRouteID
	}
	if routeID == nil {
		return nil, internal.ErrMissingRoute
	}

	route, err := s.routes.GetRoute(*routeID)
	if err != nil {
		s.logger.Error("approval route not found for submit", "error", err, "route_id", *routeID)
		return nil, internal.ErrMissingRoute
	}

	// In-flight applications keep walking a deactivated route, but new
	// submissions onto one are refused.
	if !route.IsActive {
		s.logger.Warn("submit refused on deactivated route", "route_id", route.ID, "application_id", id)
		return nil, internal.ErrRouteDeactivated
	}

	transition, err := Submit(app, route, actorID, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.applyAndReload(&app, transition); err != nil {
		return nil, err
	}

	s.logger.Info("application submitted",
		"application_id", app.ID,
		"applicant_id", actorID,
		"route_id", route.ID,
		"approver_id", app.ApproverID)

	s.publish(ctx, events.NewApplicationSubmittedEvent(app.ID, app.ApplicantID, derefID(app.ApproverID)))

	return app, nil
}

func (s *Service) ApproveApplication(ctx context.Context, id, actorID int64) (*Application, error) {
	app, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrApplicationNotFound
	}

	route, err := s.loadRoute(app)
	if err != nil {
		return nil, err
	}

	transition, err := Approve(app, route, actorID, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.applyAndReload(&app, transition); err != nil {
		return nil, err
	}

	if app.Status == StatusApproved {
		amount, _ := DeriveAmount(app.FormData)
		s.logger.Info("application fully approved",
			"application_id", app.ID,
			"approver_id", actorID,
			"amount", amount)
		s.publish(ctx, events.NewApplicationApprovedEvent(app.ID, app.ApplicantID, app.ApplicationCodeID, amount))
	} else {
		s.logger.Info("application advanced to next level",
			"application_id", app.ID,
			"approver_id", actorID,
			"current_level", app.CurrentLevel,
			"next_approver_id", app.ApproverID)
		s.publish(ctx, events.NewApplicationAdvancedEvent(app.ID, app.ApplicantID, derefID(app.ApproverID), app.CurrentLevel))
	}

	return app, nil
}

func (s *Service) RejectApplication(ctx context.Context, id, actorID int64, dto RejectApplicationDTO) (*Application, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.ErrReasonRequired
	}

	app, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrApplicationNotFound
	}

	transition, err := Reject(app, actorID, dto.Reason, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.applyAndReload(&app, transition); err != nil {
		return nil, err
	}

	s.logger.Info("application rejected",
		"application_id", app.ID,
		"approver_id", actorID,
		"level", app.CurrentLevel,
		"reason", dto.Reason)

	s.publish(ctx, events.NewApplicationRejectedEvent(app.ID, app.ApplicantID, dto.Reason))

	return app, nil
}

func (s *Service) CancelApplication(ctx context.Context, id, actorID int64, dto CancelApplicationDTO) (*Application, error) {
	app, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrApplicationNotFound
	}

	transition, err := Cancel(app, actorID, dto.Reason, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.applyAndReload(&app, transition); err != nil {
		return nil, err
	}

	s.logger.Info("application cancelled",
		"application_id", app.ID,
		"applicant_id", actorID)

	s.publish(ctx, events.NewApplicationCancelledEvent(app.ID, app.ApplicantID))

	return app, nil
}

func (s *Service) DeleteDraft(id, actorID int64) error {
	app, err := s.repo.GetByID(id)
	if err != nil {
		return internal.ErrApplicationNotFound
	}

	if err := CanDeleteDraft(app, actorID); err != nil {
		s.logger.Warn("draft delete denied",
			"application_id", id, "actor_id", actorID, "status", app.Status)
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete draft", "error", err, "application_id", id)
		return err
	}

	s.logger.Info("draft deleted", "application_id", id, "applicant_id", actorID)
	return nil
}

// ResubmitApplication creates a fresh draft from an earlier application and
// links the two via resubmission metadata.
func (s *Service) ResubmitApplication(sourceID, actorID int64, dto ResubmitApplicationDTO) (*Application, error) {
	source, err := s.repo.GetByID(sourceID)
	if err != nil {
		return nil, internal.ErrApplicationNotFound
	}

	if source.ApplicantID != actorID {
		return nil, internal.ErrNotApplicant
	}

	formData := source.FormData
	if dto.FormData != nil {
		formData = dto.FormData
	}

	meta := BuildResubmissionMeta(source, time.Now())
	formData = AttachResubmissionMeta(formData, meta)

	app := NewApplication(actorID, CreateApplicationDTO{
		ApplicationCodeID: source.ApplicationCodeID,
		ApprovalRouteID:   source.ApprovalRouteID,
		FormData:          formData,
	})

	if err := s.repo.Create(app); err != nil {
		s.logger.Error("failed to create resubmission", "error", err, "source_id", sourceID)
		return nil, err
	}

	s.logger.Info("application resubmitted",
		"application_id", app.ID,
		"source_id", sourceID,
		"applicant_id", actorID)

	return app, nil
}

// RouteProgress renders the per-level display state of an application's route.
func (s *Service) RouteProgress(id, userID int64, canViewAll bool) (*RouteProgressResponse, error) {
	app, err := s.GetApplicationByID(id, userID, canViewAll)
	if err != nil {
		return nil, err
	}

	route, err := s.loadRoute(app)
	if err != nil {
		return nil, err
	}

	steps := make([]RouteStepView, route.StepCount())
	for i, step := range route.Steps {
		level := i + 1
		steps[i] = RouteStepView{
			Level:      level,
			ApproverID: step.ApproverID,
			State:      StepState(app.Status, app.CurrentLevel, level),
		}
	}

	return &RouteProgressResponse{
		ApplicationID: app.ID,
		Status:        app.Status,
		CurrentLevel:  app.CurrentLevel,
		Steps:         steps,
	}, nil
}

// Summary aggregates the visible applications into per-status dashboard buckets.
func (s *Service) Summary(userID int64, canViewAll bool) (*SummaryResponse, error) {
	var apps []*Application
	var err error
	if canViewAll {
		apps, err = s.repo.GetAll(1000, 0)
	} else {
		apps, err = s.repo.GetByApplicant(userID, 1000, 0)
	}
	if err != nil {
		s.logger.Error("failed to load applications for summary", "error", err, "user_id", userID)
		return nil, err
	}

	byStatus := map[string][]*Application{}
	for _, app := range apps {
		byStatus[app.Status] = append(byStatus[app.Status], app)
	}

	statuses := []string{StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected, StatusCancelled}
	buckets := make([]StatusSummary, 0, len(statuses))
	for _, status := range statuses {
		group := byStatus[status]
		buckets = append(buckets, StatusSummary{
			Status:      status,
			Count:       len(group),
			TotalAmount: SumAmounts(group),
		})
	}

	links := SummarizeLinks(apps)

	return &SummaryResponse{
		Buckets:     buckets,
		GrandTotal:  SumAmounts(apps),
		ParentCount: len(links.ParentIDs),
		ChildCount:  len(links.ChildToParent),
	}, nil
}

func (s *Service) loadRoute(app *Application) (*approvalroute.Route, error) {
	if app.ApprovalRouteID == nil {
		return nil, internal.ErrMissingRoute
	}
	route, err := s.routes.GetRoute(*app.ApprovalRouteID)
	if err != nil {
		s.logger.Error("approval route not found", "error", err, "route_id", *app.ApprovalRouteID)
		return nil, internal.ErrRouteNotFound
	}
	return route, nil
}

// applyAndReload persists a transition under the status/level guard and
// refreshes the record so callers see exactly what was written.
func (s *Service) applyAndReload(app **Application, t *Transition) error {
	id := (*app).ID
	if err := s.repo.ApplyTransition(id, t); err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeStaleApplication {
			s.logger.Warn("transition conflict: application changed concurrently",
				"application_id", id,
				"expected_status", t.ExpectedStatus,
				"expected_level", t.ExpectedLevel)
		} else {
			s.logger.Error("failed to apply transition", "error", err, "application_id", id)
		}
		return err
	}

	fresh, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to reload application after transition", "error", err, "application_id", id)
		return err
	}
	*app = fresh
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}

func isApprover(app *Application, userID int64) bool {
	return app.ApproverID != nil && *app.ApproverID == userID
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
