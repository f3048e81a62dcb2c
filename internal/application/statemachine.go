package application

import (
	"strings"
	"time"

	"github.com/bp848/mqdriven-sub004/internal"
	"github.com/bp848/mqdriven-sub004/internal/approvalroute"
)

// Transition is the set of fields a state-machine action wants persisted.
// It is a pure computation result; applying it (with the compare-and-swap
// guard on the prior status and level) is the repository's job.
type Transition struct {
	Status          string
	CurrentLevel    int
	ApproverID      *int64
	RouteID         *int64
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	RejectedAt      *time.Time
	RejectionReason *string

	// Guard values the conditional update must match.
	ExpectedStatus string
	ExpectedLevel  int
}

// Submit moves a draft into the approval flow: level 1, first approver of
// the route, submittedAt stamped.
func Submit(app *Application, route *approvalroute.Route, actorID int64, now time.Time) (*Transition, error) {
	if app.Status != StatusDraft {
		return nil, internal.ErrInvalidTransition
	}
	if actorID != app.ApplicantID {
		return nil, internal.ErrNotApplicant
	}
	if route == nil || route.StepCount() == 0 {
		return nil, internal.ErrMissingRoute
	}

	firstApprover, err := route.ApproverAt(1)
	if err != nil {
		return nil, err
	}

	return &Transition{
		Status:         StatusPendingApproval,
		CurrentLevel:   1,
		ApproverID:     &firstApprover,
		RouteID:        &route.ID,
		SubmittedAt:    &now,
		ExpectedStatus: StatusDraft,
		ExpectedLevel:  app.CurrentLevel,
	}, nil
}

// Approve advances a pending application one level, or finalizes it when the
// acting approver sits on the route's last step.
func Approve(app *Application, route *approvalroute.Route, actorID int64, now time.Time) (*Transition, error) {
	if app.Status != StatusPendingApproval {
		return nil, internal.ErrInvalidTransition
	}
	if app.ApproverID == nil || actorID != *app.ApproverID {
		return nil, internal.ErrNotCurrentApprover
	}
	if route == nil || route.StepCount() == 0 {
		return nil, internal.ErrMissingRoute
	}

	if route.IsFinalStep(app.CurrentLevel) {
		return &Transition{
			Status:         StatusApproved,
			CurrentLevel:   app.CurrentLevel,
			ApprovedAt:     &now,
			ExpectedStatus: StatusPendingApproval,
			ExpectedLevel:  app.CurrentLevel,
		}, nil
	}

	nextLevel := app.CurrentLevel + 1
	nextApprover, err := route.ApproverAt(nextLevel)
	if err != nil {
		return nil, err
	}

	return &Transition{
		Status:         StatusPendingApproval,
		CurrentLevel:   nextLevel,
		ApproverID:     &nextApprover,
		ExpectedStatus: StatusPendingApproval,
		ExpectedLevel:  app.CurrentLevel,
	}, nil
}

// Reject finalizes a pending application at the rejecting step. The level is
// left untouched so the record shows where rejection happened.
func Reject(app *Application, actorID int64, reason string, now time.Time) (*Transition, error) {
	if app.Status != StatusPendingApproval {
		return nil, internal.ErrInvalidTransition
	}
	if app.ApproverID == nil || actorID != *app.ApproverID {
		return nil, internal.ErrNotCurrentApprover
	}
	if strings.TrimSpace(reason) == "" {
		return nil, internal.ErrReasonRequired
	}

	return &Transition{
		Status:          StatusRejected,
		CurrentLevel:    app.CurrentLevel,
		RejectedAt:      &now,
		RejectionReason: &reason,
		ExpectedStatus:  StatusPendingApproval,
		ExpectedLevel:   app.CurrentLevel,
	}, nil
}

// Cancel lets the applicant withdraw a pending application. The rejectedAt
// slot is reused for the cancellation timestamp.
func Cancel(app *Application, actorID int64, reason string, now time.Time) (*Transition, error) {
	if app.Status != StatusPendingApproval {
		return nil, internal.ErrInvalidTransition
	}
	if actorID != app.ApplicantID {
		return nil, internal.ErrNotApplicant
	}

	if strings.TrimSpace(reason) == "" {
		reason = DefaultCancellationReason
	}

	return &Transition{
		Status:          StatusCancelled,
		CurrentLevel:    app.CurrentLevel,
		RejectedAt:      &now,
		RejectionReason: &reason,
		ExpectedStatus:  StatusPendingApproval,
		ExpectedLevel:   app.CurrentLevel,
	}, nil
}

// CanDeleteDraft checks the explicit-delete precondition: drafts only, and
// only by their applicant.
func CanDeleteDraft(app *Application, actorID int64) error {
	if app.Status != StatusDraft {
		return internal.ErrInvalidTransition
	}
	if actorID != app.ApplicantID {
		return internal.ErrNotApplicant
	}
	return nil
}

// Step display states derived for route progress rendering.
const (
	StepStatePending      = "pending"
	StepStateCurrent      = "current"
	StepStateApproved     = "approved"
	StepStateRejectedHere = "rejected_here"
	StepStateCancelled    = "cancelled"
)

// StepState derives the display state of one route level from the
// application's status and current level. Pure presentation logic.
func StepState(status string, currentLevel, level int) string {
	if level < currentLevel && status != StatusRejected && status != StatusCancelled {
		return StepStateApproved
	}
	if level == currentLevel {
		switch status {
		case StatusPendingApproval:
			return StepStateCurrent
		case StatusRejected:
			return StepStateRejectedHere
		case StatusCancelled:
			return StepStateCancelled
		case StatusApproved:
			return StepStateApproved
		}
	}
	return StepStatePending
}
