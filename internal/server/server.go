package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osse101/RaceBot_Go/internal/activitylog"
	"github.com/osse101/RaceBot_Go/internal/gacha"
	"github.com/osse101/RaceBot_Go/internal/handler"
	"github.com/osse101/RaceBot_Go/internal/logger"
	"github.com/osse101/RaceBot_Go/internal/metrics"
	"github.com/osse101/RaceBot_Go/internal/racing"
	"github.com/osse101/RaceBot_Go/internal/settlement"
	"github.com/osse101/RaceBot_Go/internal/sse"
)

type Server struct {
	httpServer *http.Server
}

// Dependencies are the services the routes delegate to. DB and Stream may
// be nil: readiness then always succeeds and the event stream is not mounted.
type Dependencies struct {
	Version    string
	DB         handler.Pinger
	Racing     racing.Service
	Settlement settlement.Service
	Keys       gacha.Service
	Activity   activitylog.Service
	Stream     *sse.Hub
}

// NewServer creates a new Server instance
func NewServer(port int, deps Dependencies) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           NewRouter(deps),
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
	}
}

// NewRouter builds the HTTP routes and middleware stack
func NewRouter(deps Dependencies) chi.Router {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	r.Use(SecurityHeadersMiddleware())
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(requestIDMiddleware)
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(deps.DB))
	r.Get("/version", handler.HandleVersion(deps.Version))

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	raceHandler := handler.NewRaceHandler(deps.Racing)
	accountHandler := handler.NewAccountHandler(deps.Settlement, deps.Keys, deps.Activity)

	r.Route("/api/v1", func(r chi.Router) {
		if deps.Stream != nil {
			r.Get("/stream", sse.Handler(deps.Stream))
		}

		r.Route("/races", func(r chi.Router) {
			r.Post("/solo", raceHandler.HandleSolo)
			r.Post("/showdown", raceHandler.HandleShowdown)
			r.Get("/{id}", raceHandler.HandleGetRace)

			r.Route("/challenges", func(r chi.Router) {
				r.Post("/", raceHandler.HandleChallenge)
				r.Post("/{id}/accept", raceHandler.HandleAccept)
				r.Post("/{id}/decline", raceHandler.HandleDecline)
			})
		})

		r.Route("/tracks", func(r chi.Router) {
			r.Get("/", handler.HandleListTracks())
			r.Get("/{track}/rating", handler.HandleGetTrackRating())
		})

		r.Route("/accounts/{id}", func(r chi.Router) {
			r.Get("/balance", accountHandler.HandleGetBalance)
			r.Get("/races", raceHandler.HandleRecentRaces)
			r.Get("/activity", accountHandler.HandleGetActivity)
			r.Get("/keys", accountHandler.HandleListKeys)
			r.Post("/keys/use", accountHandler.HandleUseKey)
			r.Post("/keys/buy", accountHandler.HandleBuyKey)
		})
	})

	return r
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer so streaming handlers can flush
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// requestIDMiddleware reuses a caller-supplied request ID or generates one,
// stores it in the context and echoes it back
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > RequestIDMaxLength {
			requestID = logger.GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), requestID)))
	})
}

func isQuietPath(path string) bool {
	for _, p := range quietPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isQuietPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		log := logger.FromContext(r.Context())

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
