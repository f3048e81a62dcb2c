package application_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bp848/mqdriven-sub004/internal"
	"github.com/bp848/mqdriven-sub004/internal/application"
	"github.com/bp848/mqdriven-sub004/internal/approvalroute"
	"github.com/bp848/mqdriven-sub004/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// MockApplicationRepository keeps applications in memory and enforces the
// same conditional-update contract as the real repository.
type MockApplicationRepository struct {
	mu     sync.Mutex
	apps   map[int64]*application.Application
	nextID int64
}

func NewMockApplicationRepository() *MockApplicationRepository {
	return &MockApplicationRepository{
		apps:   make(map[int64]*application.Application),
		nextID: 1,
	}
}

func (m *MockApplicationRepository) Create(app *application.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app.ID = m.nextID
	m.nextID++
	stored := *app
	m.apps[app.ID] = &stored
	return nil
}

func (m *MockApplicationRepository) GetByID(id int64) (*application.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return nil, internal.ErrApplicationNotFound
	}
	copied := *app
	return &copied, nil
}

func (m *MockApplicationRepository) GetByApplicant(applicantID int64, limit, offset int) ([]*application.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*application.Application
	for _, app := range m.apps {
		if app.ApplicantID == applicantID {
			copied := *app
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockApplicationRepository) GetByApprover(approverID int64, limit, offset int) ([]*application.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*application.Application
	for _, app := range m.apps {
		if app.Status == application.StatusPendingApproval &&
			app.ApproverID != nil && *app.ApproverID == approverID {
			copied := *app
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockApplicationRepository) GetAll(limit, offset int) ([]*application.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*application.Application
	for _, app := range m.apps {
		copied := *app
		result = append(result, &copied)
	}
	return result, nil
}

func (m *MockApplicationRepository) UpdateDraft(app *application.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.apps[app.ID]
	if !ok || stored.Status != application.StatusDraft {
		return internal.ErrStaleApplication
	}
	copied := *app
	m.apps[app.ID] = &copied
	return nil
}

func (m *MockApplicationRepository) ApplyTransition(id int64, t *application.Transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.apps[id]
	if !ok || stored.Status != t.ExpectedStatus || stored.CurrentLevel != t.ExpectedLevel {
		return internal.ErrStaleApplication
	}
	stored.Status = t.Status
	stored.CurrentLevel = t.CurrentLevel
	if t.ApproverID != nil {
		stored.ApproverID = t.ApproverID
	}
	if t.RouteID != nil {
		stored.ApprovalRouteID = t.RouteID
	}
	if t.SubmittedAt != nil {
		stored.SubmittedAt = t.SubmittedAt
	}
	if t.ApprovedAt != nil {
		stored.ApprovedAt = t.ApprovedAt
	}
	if t.RejectedAt != nil {
		stored.RejectedAt = t.RejectedAt
	}
	if t.RejectionReason != nil {
		stored.RejectionReason = t.RejectionReason
	}
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *MockApplicationRepository) Delete(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok || app.Status != application.StatusDraft {
		return internal.ErrApplicationNotFound
	}
	delete(m.apps, id)
	return nil
}

// MockRouteProvider serves a fixed set of routes.
type MockRouteProvider struct {
	routes map[int64]*approvalroute.Route
}

func (m *MockRouteProvider) GetRoute(id int64) (*approvalroute.Route, error) {
	route, ok := m.routes[id]
	if !ok {
		return nil, internal.ErrRouteNotFound
	}
	return route, nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]string, len(r.events))
	for i, e := range r.events {
		result[i] = e.EventType()
	}
	return result
}

var _ = Describe("Application Service", func() {
	var (
		repo     *MockApplicationRepository
		provider *MockRouteProvider
		bus      *events.EventBus
		recorder *eventRecorder
		service  *application.Service
		ctx      context.Context
	)

	routeID := int64(5)

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockApplicationRepository()
		route := approvalroute.NewRoute("two step", []approvalroute.Step{
			{ApproverID: 10},
			{ApproverID: 20},
		})
		route.ID = routeID
		provider = &MockRouteProvider{routes: map[int64]*approvalroute.Route{routeID: route}}

		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(testLogger)
		recorder = &eventRecorder{}
		for _, eventType := range []string{
			events.EventTypeApplicationSubmitted,
			events.EventTypeApplicationAdvanced,
			events.EventTypeApplicationApproved,
			events.EventTypeApplicationRejected,
			events.EventTypeApplicationCancelled,
		} {
			bus.Subscribe(eventType, recorder.record)
		}

		service = application.NewService(repo, provider, bus, testLogger)
	})

	createDraft := func(applicantID int64) *application.Application {
		app, err := service.CreateApplication(applicantID, application.CreateApplicationDTO{
			ApplicationCodeID: 1,
			ApprovalRouteID:   &routeID,
			FormData:          map[string]any{"amount": 12500.0},
		})
		Expect(err).NotTo(HaveOccurred())
		return app
	}

	submit := func(applicantID int64) *application.Application {
		draft := createDraft(applicantID)
		app, err := service.SubmitApplication(ctx, draft.ID, applicantID, application.SubmitApplicationDTO{})
		Expect(err).NotTo(HaveOccurred())
		return app
	}

	Describe("CreateApplication", func() {
		It("should create a draft at level zero", func() {
			app := createDraft(7)
			Expect(app.Status).To(Equal(application.StatusDraft))
			Expect(app.CurrentLevel).To(Equal(0))
			Expect(app.AccountingStatus).To(Equal(application.AccountingStatusNone))
		})

		It("should reject a missing application code", func() {
			_, err := service.CreateApplication(7, application.CreateApplicationDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("SubmitApplication", func() {
		It("should route the draft to the first approver and publish an event", func() {
			app := submit(7)

			Expect(app.Status).To(Equal(application.StatusPendingApproval))
			Expect(app.CurrentLevel).To(Equal(1))
			Expect(*app.ApproverID).To(Equal(int64(10)))
			Expect(app.SubmittedAt).NotTo(BeNil())

			Eventually(recorder.types).Should(ContainElement(events.EventTypeApplicationSubmitted))
		})

		It("should refuse a draft without a route", func() {
			app, err := service.CreateApplication(7, application.CreateApplicationDTO{
				ApplicationCodeID: 1,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.SubmitApplication(ctx, app.ID, 7, application.SubmitApplicationDTO{})
			Expect(err).To(Equal(internal.ErrMissingRoute))
		})

		It("should accept a route supplied at submit time", func() {
			app, err := service.CreateApplication(7, application.CreateApplicationDTO{
				ApplicationCodeID: 1,
			})
			Expect(err).NotTo(HaveOccurred())

			submitted, err := service.SubmitApplication(ctx, app.ID, 7, application.SubmitApplicationDTO{
				ApprovalRouteID: &routeID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(*submitted.ApprovalRouteID).To(Equal(routeID))
		})

		It("should refuse submission onto a deactivated route", func() {
			retiredID := int64(6)
			retired := approvalroute.NewRoute("retired", []approvalroute.Step{{ApproverID: 30}})
			retired.ID = retiredID
			retired.IsActive = false
			provider.routes[retiredID] = retired

			app, err := service.CreateApplication(7, application.CreateApplicationDTO{
				ApplicationCodeID: 1,
				ApprovalRouteID:   &retiredID,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.SubmitApplication(ctx, app.ID, 7, application.SubmitApplicationDTO{})
			Expect(err).To(Equal(internal.ErrRouteDeactivated))

			unchanged, err := service.GetApplicationByID(app.ID, 7, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(unchanged.Status).To(Equal(application.StatusDraft))
		})

		It("should report a conflict when the draft was already submitted", func() {
			app := submit(7)

			_, err := service.SubmitApplication(ctx, app.ID, 7, application.SubmitApplicationDTO{})
			Expect(err).To(Equal(internal.ErrInvalidTransition))
		})
	})

	Describe("ApproveApplication", func() {
		It("should walk the full route to approval", func() {
			app := submit(7)

			advanced, err := service.ApproveApplication(ctx, app.ID, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(advanced.Status).To(Equal(application.StatusPendingApproval))
			Expect(advanced.CurrentLevel).To(Equal(2))
			Expect(*advanced.ApproverID).To(Equal(int64(20)))

			approved, err := service.ApproveApplication(ctx, app.ID, 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(approved.Status).To(Equal(application.StatusApproved))
			Expect(approved.CurrentLevel).To(Equal(2))
			Expect(approved.ApprovedAt).NotTo(BeNil())

			Eventually(recorder.types).Should(ContainElement(events.EventTypeApplicationAdvanced))
			Eventually(recorder.types).Should(ContainElement(events.EventTypeApplicationApproved))
		})

		It("should refuse a double approval of the same step", func() {
			app := submit(7)

			_, err := service.ApproveApplication(ctx, app.ID, 10)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ApproveApplication(ctx, app.ID, 10)
			Expect(err).To(Equal(internal.ErrNotCurrentApprover))
		})

		It("should refuse approval of a terminal application", func() {
			app := submit(7)
			_, err := service.RejectApplication(ctx, app.ID, 10, application.RejectApplicationDTO{Reason: "no"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ApproveApplication(ctx, app.ID, 10)
			Expect(err).To(Equal(internal.ErrInvalidTransition))
		})
	})

	Describe("RejectApplication", func() {
		It("should finalize with the reason and freeze the level", func() {
			app := submit(7)
			_, err := service.ApproveApplication(ctx, app.ID, 10)
			Expect(err).NotTo(HaveOccurred())

			rejected, err := service.RejectApplication(ctx, app.ID, 20, application.RejectApplicationDTO{
				Reason: "amount exceeds budget",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(rejected.Status).To(Equal(application.StatusRejected))
			Expect(rejected.CurrentLevel).To(Equal(2))
			Expect(*rejected.RejectionReason).To(Equal("amount exceeds budget"))

			Eventually(recorder.types).Should(ContainElement(events.EventTypeApplicationRejected))
		})

		It("should require a reason", func() {
			app := submit(7)

			_, err := service.RejectApplication(ctx, app.ID, 10, application.RejectApplicationDTO{})
			Expect(err).To(Equal(internal.ErrReasonRequired))
		})
	})

	Describe("CancelApplication", func() {
		It("should let the applicant withdraw and record the default reason", func() {
			app := submit(7)

			cancelled, err := service.CancelApplication(ctx, app.ID, 7, application.CancelApplicationDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(cancelled.Status).To(Equal(application.StatusCancelled))
			Expect(*cancelled.RejectionReason).To(Equal(application.DefaultCancellationReason))

			Eventually(recorder.types).Should(ContainElement(events.EventTypeApplicationCancelled))
		})
	})

	Describe("UpdateDraft", func() {
		It("should apply edits to a draft", func() {
			app := createDraft(7)

			updated, err := service.UpdateDraft(app.ID, 7, application.UpdateDraftDTO{
				FormData: map[string]any{"amount": 999.0},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.FormData["amount"]).To(Equal(999.0))
		})

		It("should refuse edits after submission", func() {
			app := submit(7)

			_, err := service.UpdateDraft(app.ID, 7, application.UpdateDraftDTO{
				FormData: map[string]any{"amount": 999.0},
			})
			Expect(err).To(Equal(internal.ErrInvalidTransition))
		})
	})

	Describe("DeleteDraft", func() {
		It("should delete a draft and nothing else", func() {
			draft := createDraft(7)
			Expect(service.DeleteDraft(draft.ID, 7)).To(Succeed())

			pending := submit(7)
			Expect(service.DeleteDraft(pending.ID, 7)).To(Equal(internal.ErrInvalidTransition))
		})
	})

	Describe("ResubmitApplication", func() {
		It("should copy a rejected application into a linked draft", func() {
			app := submit(7)
			_, err := service.RejectApplication(ctx, app.ID, 10, application.RejectApplicationDTO{Reason: "fix it"})
			Expect(err).NotTo(HaveOccurred())

			draft, err := service.ResubmitApplication(app.ID, 7, application.ResubmitApplicationDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(draft.Status).To(Equal(application.StatusDraft))
			Expect(draft.ID).NotTo(Equal(app.ID))

			meta, ok := draft.FormData["meta"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(meta["resubmittedFromId"]).To(Equal(app.ID))
		})

		It("should keep the original parent when resubmitting a linked draft again", func() {
			app := submit(7)
			_, err := service.RejectApplication(ctx, app.ID, 10, application.RejectApplicationDTO{Reason: "fix it"})
			Expect(err).NotTo(HaveOccurred())

			first, err := service.ResubmitApplication(app.ID, 7, application.ResubmitApplicationDTO{})
			Expect(err).NotTo(HaveOccurred())

			second, err := service.ResubmitApplication(first.ID, 7, application.ResubmitApplicationDTO{})
			Expect(err).NotTo(HaveOccurred())

			meta, ok := second.FormData["meta"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(meta["resubmittedFromId"]).To(Equal(app.ID))
		})

		It("should refuse resubmission by another user", func() {
			app := submit(7)
			_, err := service.ResubmitApplication(app.ID, 99, application.ResubmitApplicationDTO{})
			Expect(err).To(Equal(internal.ErrNotApplicant))
		})
	})

	Describe("RouteProgress", func() {
		It("should render per-level states for the applicant", func() {
			app := submit(7)
			_, err := service.ApproveApplication(ctx, app.ID, 10)
			Expect(err).NotTo(HaveOccurred())

			progress, err := service.RouteProgress(app.ID, 7, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(progress.CurrentLevel).To(Equal(2))
			Expect(progress.Steps).To(HaveLen(2))
			Expect(progress.Steps[0].State).To(Equal(application.StepStateApproved))
			Expect(progress.Steps[1].State).To(Equal(application.StepStateCurrent))
		})

		It("should hide applications from unrelated users", func() {
			app := submit(7)

			_, err := service.RouteProgress(app.ID, 99, false)
			Expect(err).To(Equal(internal.ErrNotApplicant))
		})
	})

	Describe("Summary", func() {
		It("should bucket the applicant's records by status", func() {
			createDraft(7)
			submit(7)
			app := submit(7)
			_, err := service.RejectApplication(ctx, app.ID, 10, application.RejectApplicationDTO{Reason: "no"})
			Expect(err).NotTo(HaveOccurred())

			summary, err := service.Summary(7, false)
			Expect(err).NotTo(HaveOccurred())

			byStatus := map[string]application.StatusSummary{}
			for _, bucket := range summary.Buckets {
				byStatus[bucket.Status] = bucket
			}
			Expect(byStatus[application.StatusDraft].Count).To(Equal(1))
			Expect(byStatus[application.StatusPendingApproval].Count).To(Equal(1))
			Expect(byStatus[application.StatusRejected].Count).To(Equal(1))
			Expect(summary.GrandTotal).To(Equal(37500.0))
		})
	})

	Describe("WithBadges", func() {
		It("should decorate listed records with resubmission links", func() {
			app := submit(7)
			_, err := service.RejectApplication(ctx, app.ID, 10, application.RejectApplicationDTO{Reason: "no"})
			Expect(err).NotTo(HaveOccurred())

			child, err := service.ResubmitApplication(app.ID, 7, application.ResubmitApplicationDTO{})
			Expect(err).NotTo(HaveOccurred())

			apps, err := service.GetMyApplications(7, 20, 0)
			Expect(err).NotTo(HaveOccurred())

			items := service.WithBadges(apps)
			byID := map[int64]application.ApplicationListItem{}
			for _, item := range items {
				byID[item.ID] = item
			}
			Expect(byID[app.ID].HasResubmission).To(BeTrue())
			Expect(byID[child.ID].ResubmittedFromID).NotTo(BeNil())
			Expect(*byID[child.ID].ResubmittedFromID).To(Equal(app.ID))
		})
	})

	Describe("GetAllApplications", func() {
		It("should refuse callers without the view-all permission", func() {
			_, err := service.GetAllApplications(20, 0, false)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})
	})
})
