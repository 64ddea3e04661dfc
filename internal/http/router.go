package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/ledgerline/internal/http/facility"
	"github.com/MrJamesThe3rd/ledgerline/internal/http/ledger"
	"github.com/MrJamesThe3rd/ledgerline/internal/http/payment"
	"github.com/MrJamesThe3rd/ledgerline/internal/http/reconcile"
)

func New(
	facilitiesV1 *facility.Handler,
	ledgerV1 *ledger.Handler,
	paymentsV1 *payment.Handler,
	reconcileV1 *reconcile.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/facilities", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			facilitiesV1.Routes(r)
			ledgerV1.FacilityRoutes(r)
		})

		r.Route("/transactions", ledgerV1.Routes)

		r.Route("/payments", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			paymentsV1.Routes(r)
		})

		r.Route("/reconcile", reconcileV1.Routes)
	})

	router.Handle("/metrics", promhttp.Handler())

	return router
}
