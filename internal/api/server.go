// Package api serves the tracker over HTTP: JSON endpoints for sessions and
// hands, and a WebSocket feed of a hand's events.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/lox/handtracker/internal/auth"
	"github.com/lox/handtracker/internal/tracker"
)

// Server is the HTTP front end for a tracker.
type Server struct {
	tracker   *tracker.Tracker
	logger    *log.Logger
	validator auth.Validator
	upgrader  websocket.Upgrader
	router    chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithValidator requires every request except /health to carry a token
// accepted by v.
func WithValidator(v auth.Validator) Option {
	return func(s *Server) { s.validator = v }
}

// NewServer creates a server for tr.
func NewServer(tr *tracker.Tracker, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		tracker:   tr,
		logger:    logger.WithPrefix("api"),
		validator: auth.NoopValidator{},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		s.mountTracker(r)
	})

	return r
}

func (s *Server) mountTracker(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.createSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Put("/", s.updateSession)
			r.Delete("/", s.deleteSession)
			r.Get("/hands", s.listSessionHands)
			r.Get("/phhs", s.exportSession)
		})
	})

	r.Route("/hands", func(r chi.Router) {
		r.Get("/", s.listHands)
		r.Post("/", s.createHand)
		r.Route("/{handID}", func(r chi.Router) {
			r.Get("/", s.getHand)
			r.Patch("/", s.annotateHand)
			r.Delete("/", s.deleteHand)
			r.Post("/actions", s.recordAction)
			r.Post("/undo", s.undo)
			r.Post("/street", s.advanceStreet)
			r.Put("/cards", s.setHoleCards)
			r.Put("/board", s.setBoard)
			r.Get("/phh", s.exportHand)
			r.Get("/feed", s.handleFeed)
		})
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.validator.Validate(r.Context(), auth.TokenFromRequest(r))
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: err.Error(), Code: "unauthorized"})
			return
		case err != nil:
			s.logger.Warn("Auth check failed", "path", r.URL.Path, "error", err)
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: "auth_unavailable"})
			return
		}
		if id != nil {
			r = r.WithContext(auth.WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
