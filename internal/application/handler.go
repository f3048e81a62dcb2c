package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bp848/mqdriven-sub004/internal/auth"
	"github.com/bp848/mqdriven-sub004/internal/core/common/validation"
	"github.com/bp848/mqdriven-sub004/internal/transport"
	"github.com/bp848/mqdriven-sub004/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateApplication(actorID int64, dto CreateApplicationDTO) (*Application, error)
	GetApplicationByID(id, userID int64, canViewAll bool) (*Application, error)
	GetMyApplications(userID int64, limit, offset int) ([]*Application, error)
	GetPendingForApprover(approverID int64, limit, offset int) ([]*Application, error)
	GetAllApplications(limit, offset int, canViewAll bool) ([]*Application, error)
	WithBadges(apps []*Application) []ApplicationListItem
	UpdateDraft(id, actorID int64, dto UpdateDraftDTO) (*Application, error)
	SubmitApplication(ctx context.Context, id, actorID int64, dto SubmitApplicationDTO) (*Application, error)
	ApproveApplication(ctx context.Context, id, actorID int64) (*Application, error)
	RejectApplication(ctx context.Context, id, actorID int64, dto RejectApplicationDTO) (*Application, error)
	CancelApplication(ctx context.Context, id, actorID int64, dto CancelApplicationDTO) (*Application, error)
	DeleteDraft(id, actorID int64) error
	ResubmitApplication(sourceID, actorID int64, dto ResubmitApplicationDTO) (*Application, error)
	RouteProgress(id, userID int64, canViewAll bool) (*RouteProgressResponse, error)
	Summary(userID int64, canViewAll bool) (*SummaryResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var dto CreateApplicationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateApplication: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if appErr := validation.ValidateApplicationCodeID(dto.ApplicationCodeID); appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	app, err := h.Service.CreateApplication(user.ID, dto)
	if err != nil {
		h.Logger.Error("CreateApplication: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateApplication: draft created",
		"application_id", app.ID,
		"user_id", user.ID,
		"application_code_id", app.ApplicationCodeID)

	h.WriteJSON(w, http.StatusCreated, app)
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, ok := h.applicationIDFromURL(w, r)
	if !ok {
		return
	}

	app, err := h.Service.GetApplicationByID(id, user.ID, user.CanViewAllApplications())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) GetMyApplications(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := h.pagination(r)
	apps, err := h.Service.GetMyApplications(user.ID, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ApplicationListResponse{
		Applications: h.Service.WithBadges(apps),
		Limit:        limit,
		Offset:       offset,
	})
}

func (h *Handler) GetPendingApprovals(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := h.pagination(r)
	apps, err := h.Service.GetPendingForApprover(user.ID, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ApplicationListResponse{
		Applications: h.Service.WithBadges(apps),
		Limit:        limit,
		Offset:       offset,
	})
}

func (h *Handler) GetAllApplications(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := h.pagination(r)
	apps, err := h.Service.GetAllApplications(limit, offset, user.CanViewAllApplications())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ApplicationListResponse{
		Applications: h.Service.WithBadges(apps),
		Limit:        limit,
		Offset:       offset,
	})
}

func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, ok := h.applicationIDFromURL(w, r)
	if !ok {
		return
	}

	var dto UpdateDraftDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateDraft: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	app, err := h.Service.UpdateDraft(id, user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, ok := h.applicationIDFromURL(w, r)
	if !ok {
		return
	}

	var dto SubmitApplicationDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.Logger.Error("SubmitApplication: invalid request body", "error", err)
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	app, err := h.Service.SubmitApplication(r.Context(), id, user.ID, dto)
	if err != nil {
		h.Logger.Error("SubmitApplication: service error", "error", err, "application_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("SubmitApplication: application submitted",
		"application_id", app.ID,
		"user_id", user.ID,
		"current_level", app.CurrentLevel)

	h.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, ok := h.applicationIDFromURL(w, r)
	if !ok {
		return
	}

	app, err := h.Service.ApproveApplication(r.Context(), id, user.ID)
	if err != nil {
		h.Logger.Error("ApproveApplication: service error", "error", err, "application_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ApproveApplication: step approved",
		"application_id", app.ID,
		"approver_id", user.ID,
		"status", app.Status,
		"current_level", app.CurrentLevel)

	h.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, ok := h.applicationIDFromURL(w, r)
	if !ok {
		return
	}

	var dto RejectApplicationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("RejectApplication: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if appErr := validation.ValidateRejectionReason(dto.Reason); appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	app, err := h.Service.RejectApplication(r.Context(), id, user.ID, dto)
	if err != nil {
		h.Logger.Error("RejectApplication: service error", "error", err, "application_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("RejectApplication: application rejected",
		"application_id", app.ID,
		"approver_id", user.ID,
		"frozen_level", app.CurrentLevel)

	h.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) CancelApplication(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, ok := h.applicationIDFromURL(w, r)
	if !ok {
		return
	}

	var dto CancelApplicationDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.Logger.Error("CancelApplication: invalid request body", "error", err)
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	app, err := h.Service.CancelApplication(r.Context(), id, user.ID, dto)
	if err != nil {
		h.Logger.Error("CancelApplication: service error", "error", err, "application_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, ok := h.applicationIDFromURL(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteDraft(id, user.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ResubmitApplication(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, ok := h.applicationIDFromURL(w, r)
	if !ok {
		return
	}

	var dto ResubmitApplicationDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.Logger.Error("ResubmitApplication: invalid request body", "error", err)
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	app, err := h.Service.ResubmitApplication(id, user.ID, dto)
	if err != nil {
		h.Logger.Error("ResubmitApplication: service error", "error", err, "source_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ResubmitApplication: new draft created",
		"source_id", id,
		"application_id", app.ID,
		"user_id", user.ID)

	h.WriteJSON(w, http.StatusCreated, app)
}

func (h *Handler) GetRouteProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, ok := h.applicationIDFromURL(w, r)
	if !ok {
		return
	}

	progress, err := h.Service.RouteProgress(id, user.ID, user.CanViewAllApplications())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, progress)
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.Service.Summary(user.ID, user.CanViewAllApplications())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("user not found in context", "path", r.URL.Path)
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return user, true
}

func (h *Handler) applicationIDFromURL(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("invalid application ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid application ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) pagination(r *http.Request) (int, int) {
	limit := 20
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
