package approvalroute_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/bp848/mqdriven-sub004/internal"
	"github.com/bp848/mqdriven-sub004/internal/approvalroute"
	routeDatamodel "github.com/bp848/mqdriven-sub004/internal/core/datamodel/approvalroute"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestApprovalRouteService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ApprovalRoute Service Suite")
}

// MockRepository implements approvalroute.RepositoryAPI for testing
type MockRepository struct {
	routes     map[int64]*routeDatamodel.ApprovalRoute
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		routes: make(map[int64]*routeDatamodel.ApprovalRoute),
		nextID: 1,
	}
}

func (m *MockRepository) GetAll() ([]*routeDatamodel.ApprovalRoute, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*routeDatamodel.ApprovalRoute
	for _, route := range m.routes {
		result = append(result, route)
	}
	return result, nil
}

func (m *MockRepository) GetByID(id int64) (*routeDatamodel.ApprovalRoute, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	route, exists := m.routes[id]
	if !exists {
		return nil, nil
	}
	return route, nil
}

func (m *MockRepository) Create(route *routeDatamodel.ApprovalRoute) error {
	if m.shouldFail {
		return m.failError
	}
	route.ID = m.nextID
	m.nextID++
	m.routes[route.ID] = route
	return nil
}

func (m *MockRepository) Update(route *routeDatamodel.ApprovalRoute) error {
	if m.shouldFail {
		return m.failError
	}
	m.routes[route.ID] = route
	return nil
}

func (m *MockRepository) Deactivate(id int64) error {
	if m.shouldFail {
		return m.failError
	}
	if route, exists := m.routes[id]; exists {
		route.IsActive = false
	}
	return nil
}

var _ = Describe("ApprovalRoute Service", func() {
	var (
		mockRepo *MockRepository
		service  *approvalroute.Service
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = approvalroute.NewService(mockRepo, testLogger)
	})

	Describe("CreateRoute", func() {
		It("should create a route with ordered steps", func() {
			route, err := service.CreateRoute(approvalroute.CreateRouteDTO{
				Name: "two step expense",
				Steps: []approvalroute.StepDTO{
					{ApproverID: 10},
					{ApproverID: 20},
				},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(route.ID).To(BeNumerically(">", 0))
			Expect(route.StepCount).To(Equal(2))
			Expect(route.Steps[0].ApproverID).To(Equal(int64(10)))
			Expect(route.Steps[1].ApproverID).To(Equal(int64(20)))
			Expect(route.IsActive).To(BeTrue())
		})

		It("should reject a route without steps", func() {
			_, err := service.CreateRoute(approvalroute.CreateRouteDTO{
				Name:  "empty route",
				Steps: nil,
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should reject a step without an approver", func() {
			_, err := service.CreateRoute(approvalroute.CreateRouteDTO{
				Name:  "bad step",
				Steps: []approvalroute.StepDTO{{ApproverID: 0}},
			})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetRoute", func() {
		It("should resolve a stored route with 1-based approver lookup", func() {
			created, err := service.CreateRoute(approvalroute.CreateRouteDTO{
				Name: "three step",
				Steps: []approvalroute.StepDTO{
					{ApproverID: 10},
					{ApproverID: 20},
					{ApproverID: 30},
				},
			})
			Expect(err).NotTo(HaveOccurred())

			route, err := service.GetRoute(created.ID)
			Expect(err).NotTo(HaveOccurred())

			first, err := route.ApproverAt(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(Equal(int64(10)))

			last, err := route.ApproverAt(3)
			Expect(err).NotTo(HaveOccurred())
			Expect(last).To(Equal(int64(30)))
			Expect(route.IsFinalStep(3)).To(BeTrue())
			Expect(route.IsFinalStep(2)).To(BeFalse())
		})

		It("should return ErrRouteNotFound for a missing route", func() {
			_, err := service.GetRoute(999)
			Expect(err).To(Equal(internal.ErrRouteNotFound))
		})

		It("should still resolve a deactivated route", func() {
			created, err := service.CreateRoute(approvalroute.CreateRouteDTO{
				Name:  "retired",
				Steps: []approvalroute.StepDTO{{ApproverID: 10}},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeactivateRoute(created.ID)).To(Succeed())

			route, err := service.GetRoute(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(route.IsActive).To(BeFalse())
		})
	})

	Describe("UpdateRoute", func() {
		It("should replace steps and keep the name when not provided", func() {
			created, err := service.CreateRoute(approvalroute.CreateRouteDTO{
				Name:  "original",
				Steps: []approvalroute.StepDTO{{ApproverID: 10}},
			})
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.UpdateRoute(created.ID, approvalroute.UpdateRouteDTO{
				Steps: []approvalroute.StepDTO{
					{ApproverID: 10},
					{ApproverID: 40},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("original"))
			Expect(updated.StepCount).To(Equal(2))
		})
	})

	Describe("ApproverAt", func() {
		It("should return ErrRouteExhausted outside the step range", func() {
			route := approvalroute.NewRoute("one step", []approvalroute.Step{{ApproverID: 10}})

			_, err := route.ApproverAt(0)
			Expect(err).To(Equal(internal.ErrRouteExhausted))

			_, err = route.ApproverAt(2)
			Expect(err).To(Equal(internal.ErrRouteExhausted))
		})
	})

	Describe("repository failures", func() {
		It("should surface repository errors from GetAllRoutes", func() {
			mockRepo.shouldFail = true
			mockRepo.failError = errors.New("database down")

			_, err := service.GetAllRoutes()
			Expect(err).To(MatchError("database down"))
		})
	})
})
