package documents

import (
	"github.com/go-chi/chi/v5"
)

// KindRoutes registers the per-kind document routes. The caller mounts them
// under a /documents/{kind} subtree so further routes, such as mail dispatch,
// can share the kind and id URL params.
func (h *Handler) KindRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Submit)
	r.Get("/new", h.NewDraft)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Change)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/mark-paid", h.transition(StatusPaid))
	r.Post("/{id}/approve", h.transition(StatusApproved))
	r.Post("/{id}/reject", h.transition(StatusRejected))
	r.Post("/{id}/mark-delivered", h.transition(StatusDelivered))
	r.Post("/{id}/void", h.transition(StatusVoid))
	r.Post("/{id}/duplicate", h.Duplicate)
	r.Post("/{id}/convert", h.Convert)
}
