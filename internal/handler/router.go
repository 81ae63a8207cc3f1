package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/suraksha-service/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Put("/", h.ReplaceCustomers)
			r.Post("/", h.LogVisit)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetCustomer)
				r.Put("/", h.UpdateVisit)
				r.Delete("/", h.DeleteCustomer)

				r.Get("/reminder", h.GetReminder)
				r.Post("/reminder", h.MarkReminderSent)
			})
		})

		r.Get("/reminders/upcoming", h.GetUpcoming)

		r.Route("/stats", func(r chi.Router) {
			r.Get("/", h.GetStats)
			r.Get("/dashboard", h.GetDashboard)
			r.Get("/service-types", h.GetServiceTypes)
			r.Get("/performance", h.GetPerformance)
		})

		r.Get("/export/customers.csv", h.ExportCSV)
		r.Get("/export/report.txt", h.ExportReport)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
