// Package api exposes the transfer engine over an HTTP/JSON interface.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP routing table for the service.
func NewRouter(service Service) http.Handler {
	h := NewHandler(service)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.OpenAccount)
		r.Get("/", h.ListAccounts)
		r.Get("/{number}", h.GetAccount)
		r.Post("/{number}/disable", h.DisableAccount)
		r.Put("/{number}/limits", h.UpdateLimits)
		r.Get("/{number}/transactions", h.ListTransactions)
	})

	r.Route("/transfers", func(r chi.Router) {
		r.Post("/", h.Transfer)
		r.Post("/preview", h.PreviewTransfer)
	})

	r.Route("/atm", func(r chi.Router) {
		r.Post("/deposits", h.Deposit)
		r.Post("/withdrawals", h.Withdraw)
	})

	return r
}
