package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sandevgo/jarvis/internal/core"
	"github.com/sandevgo/jarvis/pkg/log"
)

const maxBodyBytes = 1 << 20

type Sessions interface {
	Messages(ctx context.Context, id string) ([]core.Message, error)
	Reset(ctx context.Context, id string) error
}

type Ingester interface {
	BulkIngest(ctx context.Context, sourceText, sourceTag string) (int, error)
}

// Server exposes the dispatcher and memory over a small JSON API.
type Server struct {
	router   *chi.Mux
	http     *http.Server
	agent    core.Agent
	sessions Sessions
	memory   Ingester
}

func New(ctx context.Context, addr string, agent core.Agent, sessions Sessions, memory Ingester) *Server {
	ctx = log.WithComponent(ctx, "http")
	r := chi.NewRouter()

	s := &Server{
		router:   r,
		agent:    agent,
		sessions: sessions,
		memory:   memory,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger(ctx))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/messages", s.postMessage)
		})
		r.Post("/documents", s.postDocument)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.http.Addr).Msg("starting http api")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// accessLogger logs every request through the logger carried by ctx.
func accessLogger(ctx context.Context) func(http.Handler) http.Handler {
	logger := log.FromCtx(ctx)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Str("request_id", middleware.GetReqID(r.Context())).
					Msg("access")
			}()

			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context())))
		})
	}
}
