package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bp848/mqdriven-sub004/internal/core/events"
)

// EventHandler turns application lifecycle events into notifications: the
// next approver hears about work waiting on them, the applicant hears about
// outcomes.
type EventHandler struct {
	notifier *Notifier
	logger   *slog.Logger
}

func NewEventHandler(notifier *Notifier, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		notifier: notifier,
		logger:   logger,
	}
}

func (h *EventHandler) RegisterHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeApplicationSubmitted, h.handleSubmitted)
	bus.Subscribe(events.EventTypeApplicationAdvanced, h.handleAdvanced)
	bus.Subscribe(events.EventTypeApplicationApproved, h.handleApproved)
	bus.Subscribe(events.EventTypeApplicationRejected, h.handleRejected)
	bus.Subscribe(events.EventTypeApplicationCancelled, h.handleCancelled)
}

func (h *EventHandler) handleSubmitted(ctx context.Context, event events.Event) error {
	submitted, ok := event.(*events.ApplicationSubmittedEvent)
	if !ok {
		return nil
	}

	return h.notifier.Enqueue(Job{
		RecipientID:   submitted.ApproverID,
		ApplicationID: submitted.ApplicationID,
		Event:         event.EventType(),
		Subject:       fmt.Sprintf("Application #%d awaits your approval", submitted.ApplicationID),
		Body:          fmt.Sprintf("Application #%d was submitted and is waiting at your approval step.", submitted.ApplicationID),
	})
}

func (h *EventHandler) handleAdvanced(ctx context.Context, event events.Event) error {
	advanced, ok := event.(*events.ApplicationAdvancedEvent)
	if !ok {
		return nil
	}

	return h.notifier.Enqueue(Job{
		RecipientID:   advanced.ApproverID,
		ApplicationID: advanced.ApplicationID,
		Event:         event.EventType(),
		Subject:       fmt.Sprintf("Application #%d awaits your approval", advanced.ApplicationID),
		Body: fmt.Sprintf("Application #%d cleared step %d and is now waiting at your approval step.",
			advanced.ApplicationID, advanced.CurrentLevel-1),
	})
}

func (h *EventHandler) handleApproved(ctx context.Context, event events.Event) error {
	approved, ok := event.(*events.ApplicationApprovedEvent)
	if !ok {
		return nil
	}

	return h.notifier.Enqueue(Job{
		RecipientID:   approved.ApplicantID,
		ApplicationID: approved.ApplicationID,
		Event:         event.EventType(),
		Subject:       fmt.Sprintf("Application #%d approved", approved.ApplicationID),
		Body:          fmt.Sprintf("Your application #%d passed the final approval step.", approved.ApplicationID),
	})
}

func (h *EventHandler) handleRejected(ctx context.Context, event events.Event) error {
	rejected, ok := event.(*events.ApplicationRejectedEvent)
	if !ok {
		return nil
	}

	return h.notifier.Enqueue(Job{
		RecipientID:   rejected.ApplicantID,
		ApplicationID: rejected.ApplicationID,
		Event:         event.EventType(),
		Subject:       fmt.Sprintf("Application #%d rejected", rejected.ApplicationID),
		Body:          fmt.Sprintf("Your application #%d was rejected: %s", rejected.ApplicationID, rejected.Reason),
	})
}

func (h *EventHandler) handleCancelled(ctx context.Context, event events.Event) error {
	cancelled, ok := event.(*events.ApplicationCancelledEvent)
	if !ok {
		return nil
	}

	return h.notifier.Enqueue(Job{
		RecipientID:   cancelled.ApplicantID,
		ApplicationID: cancelled.ApplicationID,
		Event:         event.EventType(),
		Subject:       fmt.Sprintf("Application #%d cancelled", cancelled.ApplicationID),
		Body:          fmt.Sprintf("Your application #%d was withdrawn.", cancelled.ApplicationID),
	})
}
