package ocr

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/bp848/mqdriven-sub004/internal/transport"
	"github.com/bp848/mqdriven-sub004/pkg/logger"
)

const maxUploadSize = 10 << 20 // 10 MiB

type ClientAPI interface {
	Enabled() bool
	Extract(ctx context.Context, fileBytes []byte, mimeType string) (*ExtractedFields, error)
}

type Handler struct {
	*transport.BaseHandler
	Client ClientAPI
}

func NewHandler(client ClientAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Client:      client,
	}
}

// ExtractDocument accepts a multipart "document" file and responds with
// field guesses for form prefill.
func (h *Handler) ExtractDocument(w http.ResponseWriter, r *http.Request) {
	if !h.Client.Enabled() {
		h.WriteError(w, http.StatusServiceUnavailable, "document extraction is not configured")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.Logger.Error("ExtractDocument: invalid multipart form", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "document file is required")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		h.WriteError(w, http.StatusRequestEntityTooLarge, "document too large")
		return
	}

	fileBytes, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		h.Logger.Error("ExtractDocument: failed to read upload", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to read document")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	fields, err := h.Client.Extract(r.Context(), fileBytes, mimeType)
	if err != nil {
		h.Logger.Error("ExtractDocument: extraction failed", "error", err, "filename", header.Filename)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, fields)
}
