package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checkout-flow/config"
	"checkout-flow/widget"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
)

const version = "1.0.0"

// Server exposes the checkout workflows to the storefront
type Server struct {
	cfg      config.Config
	client   client.Client
	detector widget.DeviceDetector
	logger   *zap.SugaredLogger
}

func NewServer(cfg config.Config, c client.Client, detector widget.DeviceDetector, logger *zap.SugaredLogger) *Server {
	if detector == nil {
		detector = widget.UserAgentDetector{}
	}
	return &Server{cfg: cfg, client: c, detector: detector, logger: logger}
}

func (s *Server) Mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", SessionHeader},
		ExposedHeaders:   []string{SessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", s.healthCheckHandler)

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", s.startCheckoutHandler)
			r.Get("/", s.getCheckoutHandler)
			r.Delete("/", s.teardownCheckoutHandler)
			r.Post("/events", s.widgetEventHandler)
			r.Get("/return", s.redirectReturnHandler)
		})
	})
	return r
}

// Serve runs the HTTP server until SIGINT or SIGTERM
func (s *Server) Serve(mux http.Handler) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      mux,
		WriteTimeout: time.Second * 90,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Infow("signal caught", "signal", sig.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	s.logger.Infow("server has started", "addr", s.cfg.Addr, "taskQueue", s.cfg.TaskQueue)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdown; err != nil {
		return err
	}

	s.logger.Infow("server has stopped", "addr", s.cfg.Addr)
	return nil
}

func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "ok",
		"version": version,
	}
	if err := s.jsonResponse(w, http.StatusOK, data); err != nil {
		s.internalServerError(w, r, err)
	}
}
