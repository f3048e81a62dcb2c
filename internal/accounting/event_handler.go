package accounting

import (
	"context"
	"log/slog"

	"github.com/bp848/mqdriven-sub004/internal/core/events"
)

// EventHandler drafts journal entries when applications reach final
// approval.
type EventHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewEventHandler(service *Service, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

func (h *EventHandler) RegisterHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeApplicationApproved, h.handleApplicationApproved)
}

func (h *EventHandler) handleApplicationApproved(ctx context.Context, event events.Event) error {
	approved, ok := event.(*events.ApplicationApprovedEvent)
	if !ok {
		h.logger.Error("unexpected event payload for application.approved", "event_id", event.EventID())
		return nil
	}

	if err := h.service.DraftEntryForApplication(approved.ApplicationID); err != nil {
		h.logger.Error("failed to draft journal entry from approval event",
			"application_id", approved.ApplicationID,
			"error", err)
		return err
	}
	return nil
}
