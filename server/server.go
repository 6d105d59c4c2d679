package server

import (
	"context"
	"net/http"
	"time"

	"solotto/application"
	"solotto/config"
	"solotto/domain/interfaces"
	"solotto/server/guard"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// Server is the HTTP front of the settlement engine
type Server struct {
	httpServer *http.Server
}

// New builds the router and wires the middleware chain
func New(
	cfg *config.Config,
	uowFactory application.UnitOfWorkFactory,
	chain interfaces.ChainGateway,
	priceSource interfaces.PriceSource,
	rateLimiter interfaces.RateLimiter,
	alertPublisher interfaces.EventPublisher,
	drawSweeper Sweeper,
	payoutSweeper Sweeper,
) *Server {
	h := NewHandlers(uowFactory, chain, priceSource, alertPublisher, cfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(guard.RateLimit(rateLimiter, uowFactory))

		r.Post("/purchases", h.Purchase)
		r.Post("/withdrawals", h.RequestWithdrawal)
		r.Get("/draws/current", h.CurrentDraw)
		r.Get("/draws/{id}/winners", h.DrawWinners)
		r.Get("/referrals/{wallet}/earnings", h.ReferralEarnings)
		r.Get("/price", h.Price)

		r.Route("/admin", func(r chi.Router) {
			r.Use(guard.AdminAuth(uowFactory))

			r.Post("/draws", h.CreateDraw)
			r.Post("/referral-codes", h.RegisterReferralCode)
			r.Post("/sweeps/draws", h.TriggerSweep(drawSweeper, "draw"))
			r.Post("/sweeps/payouts", h.TriggerSweep(payoutSweeper, "payout"))
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start serves HTTP until Shutdown is called
func (s *Server) Start() error {
	log.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
