package documents

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ftgifting/backoffice/internal/platform/httpx"
)

// Handler wires the JSON endpoints for the document lifecycle.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.parseKind(w, r)
	if !ok {
		return
	}
	filter := ListFilter{Limit: 50}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
			filter.Limit = n
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	docs, err := h.service.List(r.Context(), kind, filter)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (h *Handler) NewDraft(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.parseKind(w, r)
	if !ok {
		return
	}
	doc, err := h.service.NewDraft(r.Context(), kind)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := h.parseKindID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Get(r.Context(), kind, id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.parseKind(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	mode := SubmitModeNew
	if r.URL.Query().Get("mode") == string(SubmitModeSave) {
		mode = SubmitModeSave
	}

	doc, result, err := h.service.Submit(r.Context(), kind, req, mode)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if result != nil {
		httpx.JSON(w, http.StatusBadRequest, result)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) Change(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := h.parseKindID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	doc, result, err := h.service.Change(r.Context(), kind, id, req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if result != nil {
		httpx.JSON(w, http.StatusBadRequest, result)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) transition(to Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, id, ok := h.parseKindID(w, r)
		if !ok {
			return
		}
		doc, err := h.service.Transition(r.Context(), kind, id, to)
		if err != nil {
			h.respondErr(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
	}
}

func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := h.parseKindID(w, r)
	if !ok {
		return
	}
	if kind != KindQuotation {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "only quotations can be converted")
		return
	}
	invoice, err := h.service.Convert(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) Duplicate(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := h.parseKindID(w, r)
	if !ok {
		return
	}
	dup, err := h.service.Duplicate(r.Context(), kind, id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, dup)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := h.parseKindID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), kind, id); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Overview(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"overview": entries})
}

func (h *Handler) parseKind(w http.ResponseWriter, r *http.Request) (Kind, bool) {
	kind, ok := ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown document kind")
		return "", false
	}
	return kind, true
}

func (h *Handler) parseKindID(w http.ResponseWriter, r *http.Request) (Kind, uuid.UUID, bool) {
	kind, ok := h.parseKind(w, r)
	if !ok {
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid document id")
		return "", uuid.Nil, false
	}
	return kind, id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (SubmitRequest, bool) {
	var req SubmitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		fields := make(map[string]string)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		httpx.ProblemFields(w, http.StatusBadRequest, "Validation Failed", fields)
		return req, false
	}
	return req, true
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "document not found")
	case errors.Is(err, ErrConverted):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrDuplicatesExhausted):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("document operation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
