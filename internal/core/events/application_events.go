package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeApplicationSubmitted = "application.submitted"
	EventTypeApplicationAdvanced  = "application.advanced"
	EventTypeApplicationApproved  = "application.approved"
	EventTypeApplicationRejected  = "application.rejected"
	EventTypeApplicationCancelled = "application.cancelled"
)

type ApplicationSubmittedEvent struct {
	BaseEvent
	ApplicationID int64 `json:"application_id"`
	ApplicantID   int64 `json:"applicant_id"`
	ApproverID    int64 `json:"approver_id"`
}

func NewApplicationSubmittedEvent(applicationID, applicantID, approverID int64) *ApplicationSubmittedEvent {
	return &ApplicationSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeApplicationSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"application_id": applicationID,
				"applicant_id":   applicantID,
				"approver_id":    approverID,
			},
		},
		ApplicationID: applicationID,
		ApplicantID:   applicantID,
		ApproverID:    approverID,
	}
}

type ApplicationAdvancedEvent struct {
	BaseEvent
	ApplicationID int64 `json:"application_id"`
	ApplicantID   int64 `json:"applicant_id"`
	ApproverID    int64 `json:"approver_id"`
	CurrentLevel  int   `json:"current_level"`
}

func NewApplicationAdvancedEvent(applicationID, applicantID, approverID int64, currentLevel int) *ApplicationAdvancedEvent {
	return &ApplicationAdvancedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeApplicationAdvanced,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"application_id": applicationID,
				"applicant_id":   applicantID,
				"approver_id":    approverID,
				"current_level":  currentLevel,
			},
		},
		ApplicationID: applicationID,
		ApplicantID:   applicantID,
		ApproverID:    approverID,
		CurrentLevel:  currentLevel,
	}
}

type ApplicationApprovedEvent struct {
	BaseEvent
	ApplicationID     int64   `json:"application_id"`
	ApplicantID       int64   `json:"applicant_id"`
	ApplicationCodeID int64   `json:"application_code_id"`
	Amount            float64 `json:"amount"`
}

func NewApplicationApprovedEvent(applicationID, applicantID, applicationCodeID int64, amount float64) *ApplicationApprovedEvent {
	return &ApplicationApprovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeApplicationApproved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"application_id":      applicationID,
				"applicant_id":        applicantID,
				"application_code_id": applicationCodeID,
				"amount":              amount,
			},
		},
		ApplicationID:     applicationID,
		ApplicantID:       applicantID,
		ApplicationCodeID: applicationCodeID,
		Amount:            amount,
	}
}

type ApplicationRejectedEvent struct {
	BaseEvent
	ApplicationID int64  `json:"application_id"`
	ApplicantID   int64  `json:"applicant_id"`
	Reason        string `json:"reason"`
}

func NewApplicationRejectedEvent(applicationID, applicantID int64, reason string) *ApplicationRejectedEvent {
	return &ApplicationRejectedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeApplicationRejected,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"application_id": applicationID,
				"applicant_id":   applicantID,
				"reason":         reason,
			},
		},
		ApplicationID: applicationID,
		ApplicantID:   applicantID,
		Reason:        reason,
	}
}

type ApplicationCancelledEvent struct {
	BaseEvent
	ApplicationID int64 `json:"application_id"`
	ApplicantID   int64 `json:"applicant_id"`
}

func NewApplicationCancelledEvent(applicationID, applicantID int64) *ApplicationCancelledEvent {
	return &ApplicationCancelledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeApplicationCancelled,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"application_id": applicationID,
				"applicant_id":   applicantID,
			},
		},
		ApplicationID: applicationID,
		ApplicantID:   applicantID,
	}
}
