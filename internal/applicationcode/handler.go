package applicationcode

import (
	"log/slog"
	"net/http"

	"github.com/bp848/mqdriven-sub004/internal/transport"
	"github.com/bp848/mqdriven-sub004/pkg/logger"
)

type ServiceAPI interface {
	GetAllCodes() ([]CodeResponse, error)
	GetCodeByID(id int64) (*ApplicationCode, error)
	IsValidCode(id int64) bool
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

func (h *Handler) GetApplicationCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.Service.GetAllCodes()
	if err != nil {
		h.Logger.Error("GetApplicationCodes: failed to get codes", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get application codes")
		return
	}

	h.WriteJSON(w, http.StatusOK, CodesResponse{ApplicationCodes: codes})
}
