package application_test

import (
	"testing"
	"time"

	"github.com/bp848/mqdriven-sub004/internal"
	"github.com/bp848/mqdriven-sub004/internal/application"
	"github.com/bp848/mqdriven-sub004/internal/approvalroute"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestApplicationDomain(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Application Domain Suite")
}

var _ = Describe("State machine", func() {
	var (
		now   time.Time
		route *approvalroute.Route
	)

	approver := func(id int64) *int64 { return &id }

	newDraft := func(applicantID int64) *application.Application {
		return application.NewApplication(applicantID, application.CreateApplicationDTO{
			ApplicationCodeID: 1,
			FormData:          map[string]any{"amount": 5000},
		})
	}

	newPending := func(applicantID int64, level int, approverID int64) *application.Application {
		app := newDraft(applicantID)
		app.ID = 42
		app.Status = application.StatusPendingApproval
		app.CurrentLevel = level
		app.ApproverID = approver(approverID)
		return app
	}

	BeforeEach(func() {
		now = time.Now()
		route = approvalroute.NewRoute("standard", []approvalroute.Step{
			{ApproverID: 10},
			{ApproverID: 20},
			{ApproverID: 30},
		})
		route.ID = 5
	})

	Describe("Submit", func() {
		It("should move a draft to pending at level 1 with the first approver", func() {
			app := newDraft(7)

			t, err := application.Submit(app, route, 7, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Status).To(Equal(application.StatusPendingApproval))
			Expect(t.CurrentLevel).To(Equal(1))
			Expect(*t.ApproverID).To(Equal(int64(10)))
			Expect(*t.RouteID).To(Equal(int64(5)))
			Expect(t.SubmittedAt).NotTo(BeNil())
			Expect(t.ExpectedStatus).To(Equal(application.StatusDraft))
			Expect(t.ExpectedLevel).To(Equal(0))
		})

		It("should refuse submission by anyone but the applicant", func() {
			app := newDraft(7)

			_, err := application.Submit(app, route, 99, now)
			Expect(err).To(Equal(internal.ErrNotApplicant))
		})

		It("should refuse submission of a non-draft", func() {
			app := newPending(7, 1, 10)

			_, err := application.Submit(app, route, 7, now)
			Expect(err).To(Equal(internal.ErrInvalidTransition))
		})

		It("should refuse submission without a usable route", func() {
			app := newDraft(7)

			_, err := application.Submit(app, nil, 7, now)
			Expect(err).To(Equal(internal.ErrMissingRoute))

			empty := approvalroute.NewRoute("empty", nil)
			_, err = application.Submit(app, empty, 7, now)
			Expect(err).To(Equal(internal.ErrMissingRoute))
		})
	})

	Describe("Approve", func() {
		It("should advance to the next level when steps remain", func() {
			app := newPending(7, 1, 10)

			t, err := application.Approve(app, route, 10, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Status).To(Equal(application.StatusPendingApproval))
			Expect(t.CurrentLevel).To(Equal(2))
			Expect(*t.ApproverID).To(Equal(int64(20)))
			Expect(t.ApprovedAt).To(BeNil())
			Expect(t.ExpectedStatus).To(Equal(application.StatusPendingApproval))
			Expect(t.ExpectedLevel).To(Equal(1))
		})

		It("should finalize on the last step", func() {
			app := newPending(7, 3, 30)

			t, err := application.Approve(app, route, 30, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Status).To(Equal(application.StatusApproved))
			Expect(t.CurrentLevel).To(Equal(3))
			Expect(t.ApprovedAt).NotTo(BeNil())
			Expect(t.ExpectedLevel).To(Equal(3))
		})

		It("should refuse approval by a user who is not the current approver", func() {
			app := newPending(7, 2, 20)

			_, err := application.Approve(app, route, 10, now)
			Expect(err).To(Equal(internal.ErrNotCurrentApprover))

			_, err = application.Approve(app, route, 7, now)
			Expect(err).To(Equal(internal.ErrNotCurrentApprover))
		})

		It("should refuse approval of a terminal application", func() {
			app := newPending(7, 3, 30)
			app.Status = application.StatusApproved

			_, err := application.Approve(app, route, 30, now)
			Expect(err).To(Equal(internal.ErrInvalidTransition))
		})

		It("should fail when the stored level no longer fits the route", func() {
			app := newPending(7, 5, 30)
			shortRoute := approvalroute.NewRoute("short", []approvalroute.Step{{ApproverID: 30}})
			app.CurrentLevel = 2
			app.ApproverID = approver(30)

			_, err := application.Approve(app, shortRoute, 30, now)
			Expect(err).To(Equal(internal.ErrRouteExhausted))
		})
	})

	Describe("Reject", func() {
		It("should finalize the application at the rejecting level", func() {
			app := newPending(7, 2, 20)

			t, err := application.Reject(app, 20, "missing receipts", now)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Status).To(Equal(application.StatusRejected))
			Expect(t.CurrentLevel).To(Equal(2))
			Expect(*t.RejectionReason).To(Equal("missing receipts"))
			Expect(t.RejectedAt).NotTo(BeNil())
		})

		It("should require a non-blank reason", func() {
			app := newPending(7, 1, 10)

			_, err := application.Reject(app, 10, "   ", now)
			Expect(err).To(Equal(internal.ErrReasonRequired))
		})

		It("should refuse rejection by a non-approver", func() {
			app := newPending(7, 1, 10)

			_, err := application.Reject(app, 7, "no", now)
			Expect(err).To(Equal(internal.ErrNotCurrentApprover))
		})
	})

	Describe("Cancel", func() {
		It("should let the applicant withdraw a pending application", func() {
			app := newPending(7, 2, 20)

			t, err := application.Cancel(app, 7, "plans changed", now)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Status).To(Equal(application.StatusCancelled))
			Expect(*t.RejectionReason).To(Equal("plans changed"))
		})

		It("should fall back to the default reason when blank", func() {
			app := newPending(7, 1, 10)

			t, err := application.Cancel(app, 7, "", now)
			Expect(err).NotTo(HaveOccurred())
			Expect(*t.RejectionReason).To(Equal(application.DefaultCancellationReason))
		})

		It("should refuse cancellation by the approver", func() {
			app := newPending(7, 1, 10)

			_, err := application.Cancel(app, 10, "", now)
			Expect(err).To(Equal(internal.ErrNotApplicant))
		})

		It("should refuse cancellation of a draft", func() {
			app := newDraft(7)

			_, err := application.Cancel(app, 7, "", now)
			Expect(err).To(Equal(internal.ErrInvalidTransition))
		})
	})

	Describe("CanDeleteDraft", func() {
		It("should allow the applicant to delete a draft", func() {
			Expect(application.CanDeleteDraft(newDraft(7), 7)).To(Succeed())
		})

		It("should refuse other users and non-drafts", func() {
			Expect(application.CanDeleteDraft(newDraft(7), 8)).To(Equal(internal.ErrNotApplicant))
			Expect(application.CanDeleteDraft(newPending(7, 1, 10), 7)).To(Equal(internal.ErrInvalidTransition))
		})
	})

	Describe("StepState", func() {
		It("should render a pending application's route", func() {
			Expect(application.StepState(application.StatusPendingApproval, 2, 1)).To(Equal(application.StepStateApproved))
			Expect(application.StepState(application.StatusPendingApproval, 2, 2)).To(Equal(application.StepStateCurrent))
			Expect(application.StepState(application.StatusPendingApproval, 2, 3)).To(Equal(application.StepStatePending))
		})

		It("should mark the rejecting level and freeze later ones", func() {
			Expect(application.StepState(application.StatusRejected, 2, 1)).To(Equal(application.StepStatePending))
			Expect(application.StepState(application.StatusRejected, 2, 2)).To(Equal(application.StepStateRejectedHere))
			Expect(application.StepState(application.StatusRejected, 2, 3)).To(Equal(application.StepStatePending))
		})

		It("should show every level approved on a fully approved route", func() {
			Expect(application.StepState(application.StatusApproved, 3, 1)).To(Equal(application.StepStateApproved))
			Expect(application.StepState(application.StatusApproved, 3, 2)).To(Equal(application.StepStateApproved))
			Expect(application.StepState(application.StatusApproved, 3, 3)).To(Equal(application.StepStateApproved))
		})

		It("should mark the level where cancellation happened", func() {
			Expect(application.StepState(application.StatusCancelled, 1, 1)).To(Equal(application.StepStateCancelled))
			Expect(application.StepState(application.StatusCancelled, 1, 2)).To(Equal(application.StepStatePending))
		})
	})
})
