package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"storefront/internal/cart"
	checkoutctrl "storefront/internal/checkout/controller"
)

func NewRouter(cartCtrl *cart.Controller, checkoutCtrl *checkoutctrl.Controller, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(Tracing)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", cartCtrl.HandleGetCart)
		r.Delete("/", cartCtrl.HandleClear)
		r.Post("/items", cartCtrl.HandleAddItem)
		r.Patch("/items/{itemId}", cartCtrl.HandleUpdateQuantity)
		r.Delete("/items/{itemId}", cartCtrl.HandleRemoveItem)
	})

	r.Route("/checkout/sessions", func(r chi.Router) {
		r.Post("/", checkoutCtrl.HandleStart)
		r.Get("/{sessionId}", checkoutCtrl.HandleGet)
		r.Delete("/{sessionId}", checkoutCtrl.HandleDiscard)
		r.Post("/{sessionId}/submit", checkoutCtrl.HandleSubmit)
		r.Post("/{sessionId}/retry", checkoutCtrl.HandleRetry)
	})

	return r
}
