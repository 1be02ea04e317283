package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", h.Health)

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(RequireUserID)

		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Get("/summary", h.GetSummary)
		r.Get("/checkout-selection", h.CheckoutSelection)

		r.Post("/items", h.AddItem)
		r.Put("/items/{lineId}", h.UpdateQuantity)
		r.Put("/items/{lineId}/selection", h.UpdateSelection)
		r.Delete("/items/{lineId}", h.RemoveItem)
		r.Post("/items/batch-delete", h.RemoveBatch)
		r.Put("/selection", h.UpdateSelectionBatch)
	})

	return r
}
