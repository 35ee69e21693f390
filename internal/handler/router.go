package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mehrab-nt/TeamGraphic-sub000/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware бэк-офиса.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Post("/orders/event", h.RecordOrderEvent)

			r.Post("/credits", h.RegisterCredit)
			r.Get("/credits/{creditID}/balance", h.GetBalance)
			r.Post("/credits/{creditID}/recompute", h.RecomputeBalance)
			r.Get("/credits/{creditID}/deposits", h.GetDeposits)

			r.Post("/deposits", h.CreateDeposit)
			r.Post("/deposits/{depositID}/confirm", h.ConfirmDeposit)
			r.Post("/deposits/{depositID}/reject", h.RejectDeposit)

			r.Get("/credits/{creditID}/cashback", h.GetCashBack)
			r.Post("/credits/{creditID}/cashback/confirm", h.ConfirmCashBack)

			r.Post("/pricing/quote", h.QuotePrice)
			r.Post("/pricing/sheets", h.SaveSheet)
			r.Post("/pricing/sizes", h.SaveCutSize)
			r.Get("/pricing/sheets/{sheetID}/sizes/{sizeID}", h.GetSheetPrice)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
