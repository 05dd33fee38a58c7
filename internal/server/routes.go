package server

import (
	"compress/gzip"
	"net/http"

	"github.com/VladKvetkin/paywebhook/internal/handler"
	"github.com/VladKvetkin/paywebhook/internal/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const WebhookPath = "/api/payos/webhook"

func (s *Server) setupRoutes(handler *handler.Handler) {
	s.setupMiddleware()

	s.mux.Route("/", func(r chi.Router) {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

		r.Route("/api", func(r chi.Router) {
			// Every method reaches the handler; probes and stray methods are acknowledged there.
			r.HandleFunc("/payos/webhook", handler.PaymentWebhook)

			r.Route("/user", func(r chi.Router) {
				r.Use(
					middleware.Auth(s.tokens),
					chiMiddleware.Compress(gzip.BestCompression, "application/json"),
				)

				r.Get("/premium", http.HandlerFunc(handler.GetPremium))
				r.Get("/orders/{orderCode}", http.HandlerFunc(handler.GetOrder))
			})
		})
	})
}

func (s *Server) setupMiddleware() {
	s.mux.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
		middleware.Logger,
		chiMiddleware.Recoverer,
	)
}
