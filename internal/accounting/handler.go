package accounting

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bp848/mqdriven-sub004/internal/transport"
	"github.com/bp848/mqdriven-sub004/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ExportJournal(applicationID int64) (*ExportResponse, error)
	GetJournalForApplication(applicationID int64) (*EntryResponse, error)
	ListJournals(status string, limit, offset int) ([]EntryResponse, error)
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

func (h *Handler) ListJournals(w http.ResponseWriter, r *http.Request) {
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
	status := r.URL.Query().Get("status")

	entries, err := h.Service.ListJournals(status, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, EntriesResponse{Entries: entries})
}

func (h *Handler) GetJournalForApplication(w http.ResponseWriter, r *http.Request) {
	applicationID, ok := h.applicationIDFromURL(w, r)
	if !ok {
		return
	}

	entry, err := h.Service.GetJournalForApplication(applicationID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) ExportJournal(w http.ResponseWriter, r *http.Request) {
	applicationID, ok := h.applicationIDFromURL(w, r)
	if !ok {
		return
	}

	result, err := h.Service.ExportJournal(applicationID)
	if err != nil {
		h.Logger.Error("ExportJournal: service error", "error", err, "application_id", applicationID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ExportJournal: journal exported", "application_id", applicationID)
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) applicationIDFromURL(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "applicationId")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("invalid application ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid application ID")
		return 0, false
	}
	return id, true
}
