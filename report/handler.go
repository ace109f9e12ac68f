package report

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ftgifting/backoffice/internal/documents"
)

// Handler serves PDF downloads for documents.
type Handler struct {
	renderer *Renderer
	docs     *documents.Service
	logger   *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(renderer *Renderer, docs *documents.Service, logger *slog.Logger) *Handler {
	return &Handler{renderer: renderer, docs: docs, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/documents/{kind}/{id}/pdf", h.documentPDF)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) documentPDF(w http.ResponseWriter, r *http.Request) {
	kind, ok := documents.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		http.Error(w, "unknown document kind", http.StatusNotFound)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid document id", http.StatusBadRequest)
		return
	}

	doc, err := h.docs.Get(r.Context(), kind, id)
	if err != nil {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}

	pdf, err := h.renderer.Render(r.Context(), doc)
	if err != nil {
		h.logger.Error("render document pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", FileName(doc)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
