package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ftgifting/backoffice/internal/documents"
	"github.com/ftgifting/backoffice/internal/platform/httpx"
	"github.com/ftgifting/backoffice/internal/ratelimit"
	"github.com/ftgifting/backoffice/internal/shared"
	"github.com/ftgifting/backoffice/report"
)

// Enqueuer hands messages to the background queue; delivery happens in the worker.
type Enqueuer interface {
	EnqueueSend(ctx context.Context, msg Message) error
}

// Handler exposes the send endpoint: render the document, build the templated
// body, and queue the message. Outbound requests are limited per caller IP
// with a sliding window; rejected callers get a Retry-After hint.
type Handler struct {
	logger   *slog.Logger
	docs     *documents.Service
	renderer *report.Renderer
	enqueuer Enqueuer
	limiter  *ratelimit.Limiter
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, docs *documents.Service, renderer *report.Renderer, enqueuer Enqueuer, limiter *ratelimit.Limiter) *Handler {
	return &Handler{
		logger:   logger,
		docs:     docs,
		renderer: renderer,
		enqueuer: enqueuer,
		limiter:  limiter,
	}
}

// MountRoutes registers mail routes. It expects to be mounted inside the
// /documents/{kind} subtree so the kind and id URL params resolve.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/{id}/send", h.sendDocument)
}

type sendRequest struct {
	To string `json:"to,omitempty"`
}

// clientIP strips the ephemeral port from RemoteAddr so every connection from
// the same host shares one rate-limit window. RealIP-rewritten addresses carry
// no port and pass through unchanged.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Handler) sendDocument(w http.ResponseWriter, r *http.Request) {
	allowed, retryAfter, err := h.limiter.Allow(r.Context(), clientIP(r))
	if err != nil {
		h.logger.Error("rate limit check failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if !allowed {
		seconds := int(retryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
		httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests",
			fmt.Sprintf("rate limit exceeded, retry in %ds", seconds))
		return
	}

	kind, ok := documents.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown document kind")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid document id")
		return
	}

	var req sendRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
			return
		}
	}

	doc, err := h.docs.Get(r.Context(), kind, id)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "document not found")
		return
	}

	to := req.To
	if to == "" {
		to = doc.ClientEmail
	}
	if to == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "document has no client email and none was provided")
		return
	}

	pdf, err := h.renderer.Render(r.Context(), doc)
	if err != nil {
		h.logger.Error("render attachment", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Upstream Unavailable", "document rendering failed, try again")
		return
	}

	subject, body, err := BuildBody(TemplateParams{
		ClientName: doc.ClientName,
		DocLabel:   doc.Kind.Label(),
		CustomID:   doc.CustomID,
		Amount:     report.FormatAmount(doc.GrandTotal),
		Currency:   doc.Currency,
		DueDate:    doc.PaymentDue,
	})
	if err != nil {
		h.logger.Error("build mail body", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	msg := Message{
		To:          to,
		Subject:     subject,
		HTMLContent: body,
		PDFBase64:   base64.StdEncoding.EncodeToString(pdf),
		PDFFileName: report.FileName(doc),
	}
	if err := h.enqueuer.EnqueueSend(r.Context(), msg); err != nil {
		h.logger.Error("enqueue mail", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	attrs := []any{
		slog.String("kind", string(kind)),
		slog.String("custom_id", doc.CustomID),
		slog.String("to", to),
	}
	if userID, ok := shared.UserFromContext(r.Context()); ok {
		attrs = append(attrs, slog.String("user_id", userID.String()))
	}
	h.logger.Info("document email queued", attrs...)

	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued", "to": to})
}
