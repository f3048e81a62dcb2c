package application_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/bp848/mqdriven-sub004/internal"
	"github.com/bp848/mqdriven-sub004/internal/application"
	"github.com/bp848/mqdriven-sub004/internal/auth"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// mockAppService records the last call made and serves canned responses.
type mockAppService struct {
	app        *application.Application
	apps       []*application.Application
	err        error
	lastAction string
	lastID     int64
	lastActor  int64
	lastLimit  int
	lastOffset int
	lastReason string
}

func (m *mockAppService) CreateApplication(actorID int64, dto application.CreateApplicationDTO) (*application.Application, error) {
	m.lastAction, m.lastActor = "create", actorID
	return m.app, m.err
}

func (m *mockAppService) GetApplicationByID(id, userID int64, canViewAll bool) (*application.Application, error) {
	m.lastAction, m.lastID, m.lastActor = "get", id, userID
	return m.app, m.err
}

func (m *mockAppService) GetMyApplications(userID int64, limit, offset int) ([]*application.Application, error) {
	m.lastAction, m.lastActor, m.lastLimit, m.lastOffset = "my", userID, limit, offset
	return m.apps, m.err
}

func (m *mockAppService) GetPendingForApprover(approverID int64, limit, offset int) ([]*application.Application, error) {
	m.lastAction, m.lastActor, m.lastLimit, m.lastOffset = "pending", approverID, limit, offset
	return m.apps, m.err
}

func (m *mockAppService) GetAllApplications(limit, offset int, canViewAll bool) ([]*application.Application, error) {
	m.lastAction, m.lastLimit, m.lastOffset = "all", limit, offset
	return m.apps, m.err
}

func (m *mockAppService) WithBadges(apps []*application.Application) []application.ApplicationListItem {
	items := make([]application.ApplicationListItem, len(apps))
	for i, app := range apps {
		items[i] = application.ApplicationListItem{Application: app}
	}
	return items
}

func (m *mockAppService) UpdateDraft(id, actorID int64, dto application.UpdateDraftDTO) (*application.Application, error) {
	m.lastAction, m.lastID, m.lastActor = "update", id, actorID
	return m.app, m.err
}

func (m *mockAppService) SubmitApplication(ctx context.Context, id, actorID int64, dto application.SubmitApplicationDTO) (*application.Application, error) {
	m.lastAction, m.lastID, m.lastActor = "submit", id, actorID
	return m.app, m.err
}

func (m *mockAppService) ApproveApplication(ctx context.Context, id, actorID int64) (*application.Application, error) {
	m.lastAction, m.lastID, m.lastActor = "approve", id, actorID
	return m.app, m.err
}

func (m *mockAppService) RejectApplication(ctx context.Context, id, actorID int64, dto application.RejectApplicationDTO) (*application.Application, error) {
	m.lastAction, m.lastID, m.lastActor, m.lastReason = "reject", id, actorID, dto.Reason
	return m.app, m.err
}

func (m *mockAppService) CancelApplication(ctx context.Context, id, actorID int64, dto application.CancelApplicationDTO) (*application.Application, error) {
	m.lastAction, m.lastID, m.lastActor = "cancel", id, actorID
	return m.app, m.err
}

func (m *mockAppService) DeleteDraft(id, actorID int64) error {
	m.lastAction, m.lastID, m.lastActor = "delete", id, actorID
	return m.err
}

func (m *mockAppService) ResubmitApplication(sourceID, actorID int64, dto application.ResubmitApplicationDTO) (*application.Application, error) {
	m.lastAction, m.lastID, m.lastActor = "resubmit", sourceID, actorID
	return m.app, m.err
}

func (m *mockAppService) RouteProgress(id, userID int64, canViewAll bool) (*application.RouteProgressResponse, error) {
	m.lastAction, m.lastID, m.lastActor = "progress", id, userID
	return &application.RouteProgressResponse{ApplicationID: id}, m.err
}

func (m *mockAppService) Summary(userID int64, canViewAll bool) (*application.SummaryResponse, error) {
	m.lastAction, m.lastActor = "summary", userID
	return &application.SummaryResponse{}, m.err
}

var _ = Describe("Application Handler", func() {
	var (
		mock    *mockAppService
		handler *application.Handler
		user    *auth.User
	)

	BeforeEach(func() {
		mock = &mockAppService{
			app: &application.Application{
				ID:          42,
				ApplicantID: 7,
				Status:      application.StatusDraft,
				FormData:    application.FormData{},
			},
		}
		handler = application.NewHandler(mock)
		user = &auth.User{
			ID:          7,
			Email:       "applicant@example.com",
			Permissions: []string{auth.PermissionCreateApplications},
		}
	})

	request := func(method, target string, body any, id string) (*httptest.ResponseRecorder, *http.Request) {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, target, &buf)
		if body != nil {
			req.ContentLength = int64(buf.Len())
		}

		ctx := context.WithValue(req.Context(), auth.ContextUserKey, user)
		if id != "" {
			routeCtx := chi.NewRouteContext()
			routeCtx.URLParams.Add("id", id)
			ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
		}
		return httptest.NewRecorder(), req.WithContext(ctx)
	}

	Describe("CreateApplication", func() {
		It("should create a draft for the authenticated user", func() {
			w, req := request(http.MethodPost, "/api/v1/applications", map[string]any{
				"application_code_id": 1,
				"form_data":           map[string]any{"amount": 500},
			}, "")

			handler.CreateApplication(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(mock.lastAction).To(Equal("create"))
			Expect(mock.lastActor).To(Equal(int64(7)))
		})

		It("should reject a missing application code before touching the service", func() {
			w, req := request(http.MethodPost, "/api/v1/applications", map[string]any{
				"form_data": map[string]any{},
			}, "")

			handler.CreateApplication(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(mock.lastAction).To(BeEmpty())
		})

		It("should return 401 without an authenticated user", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", bytes.NewBufferString("{}"))
			w := httptest.NewRecorder()

			handler.CreateApplication(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("GetApplication", func() {
		It("should fetch by path id", func() {
			w, req := request(http.MethodGet, "/api/v1/applications/42", nil, "42")

			handler.GetApplication(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(mock.lastID).To(Equal(int64(42)))
		})

		It("should reject a non-numeric id", func() {
			w, req := request(http.MethodGet, "/api/v1/applications/abc", nil, "abc")

			handler.GetApplication(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should map service errors onto their HTTP status", func() {
			mock.err = internal.ErrApplicationNotFound

			w, req := request(http.MethodGet, "/api/v1/applications/42", nil, "42")
			handler.GetApplication(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GetMyApplications", func() {
		It("should apply default pagination", func() {
			w, req := request(http.MethodGet, "/api/v1/applications/my", nil, "")

			handler.GetMyApplications(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(mock.lastLimit).To(Equal(20))
			Expect(mock.lastOffset).To(Equal(0))
		})

		It("should honor query pagination within bounds", func() {
			w, req := request(http.MethodGet, "/api/v1/applications/my?limit=50&offset=10", nil, "")
			handler.GetMyApplications(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(mock.lastLimit).To(Equal(50))
			Expect(mock.lastOffset).To(Equal(10))

			w, req = request(http.MethodGet, "/api/v1/applications/my?limit=9999", nil, "")
			handler.GetMyApplications(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(mock.lastLimit).To(Equal(20))
		})
	})

	Describe("RejectApplication", func() {
		It("should require a reason", func() {
			w, req := request(http.MethodPost, "/api/v1/applications/42/reject", map[string]any{
				"reason": "   ",
			}, "42")

			handler.RejectApplication(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(mock.lastAction).To(BeEmpty())
		})

		It("should pass the reason through to the service", func() {
			w, req := request(http.MethodPost, "/api/v1/applications/42/reject", map[string]any{
				"reason": "missing receipts",
			}, "42")

			handler.RejectApplication(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(mock.lastAction).To(Equal("reject"))
			Expect(mock.lastReason).To(Equal("missing receipts"))
		})
	})

	Describe("SubmitApplication", func() {
		It("should accept an empty body", func() {
			w, req := request(http.MethodPost, "/api/v1/applications/42/submit", nil, "42")

			handler.SubmitApplication(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(mock.lastAction).To(Equal("submit"))
		})

		It("should surface a stale-application conflict as 409", func() {
			mock.err = internal.ErrStaleApplication

			w, req := request(http.MethodPost, "/api/v1/applications/42/submit", nil, "42")
			handler.SubmitApplication(w, req)

			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})

	Describe("DeleteDraft", func() {
		It("should return 204 on success", func() {
			w, req := request(http.MethodDelete, "/api/v1/applications/42", nil, "42")

			handler.DeleteDraft(w, req)

			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(mock.lastAction).To(Equal("delete"))
		})
	})

	Describe("ResubmitApplication", func() {
		It("should return 201 with the new draft", func() {
			w, req := request(http.MethodPost, "/api/v1/applications/42/resubmit", nil, "42")

			handler.ResubmitApplication(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(mock.lastID).To(Equal(int64(42)))
		})
	})
})
