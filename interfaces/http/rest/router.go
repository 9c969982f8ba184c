// Package rest exposes the attendance reports over HTTP.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"attendance-backend/application/queries"
	pkgerrors "attendance-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// DailyReporter builds daily reports
type DailyReporter interface {
	Handle(ctx context.Context, q queries.DailyReportQuery) (*queries.DailyReportResult, error)
}

// WeeklyReporter builds weekly reports
type WeeklyReporter interface {
	Handle(ctx context.Context, q queries.WeeklyReportQuery) (*queries.WeeklyReportResult, error)
}

// Router creates and configures the HTTP router
type Router struct {
	daily          DailyReporter
	weekly         WeeklyReporter
	metrics        http.Handler
	allowedOrigins []string
	errors         *pkgerrors.ErrorHandler
	logger         *zap.Logger
}

// NewRouter creates a new router instance. metrics may be nil, in which case
// /metrics is not mounted.
func NewRouter(
	daily DailyReporter,
	weekly WeeklyReporter,
	metrics http.Handler,
	allowedOrigins []string,
	debug bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		daily:          daily,
		weekly:         weekly,
		metrics:        metrics,
		allowedOrigins: allowedOrigins,
		errors:         pkgerrors.NewErrorHandler(logger, debug),
		logger:         logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(rt.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", rt.healthCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics)
	}

	router.Get("/daily", rt.dailyReport)
	router.Get("/weekly", rt.weeklyReport)

	return router
}

func (rt *Router) dailyReport(w http.ResponseWriter, r *http.Request) {
	result, err := rt.daily.Handle(r.Context(), queries.DailyReportQuery{Date: r.URL.Query().Get("date")})
	if err != nil {
		rt.errors.Handle(w, r, err)
		return
	}
	rt.respond(w, http.StatusOK, result)
}

func (rt *Router) weeklyReport(w http.ResponseWriter, r *http.Request) {
	result, err := rt.weekly.Handle(r.Context(), queries.WeeklyReportQuery{Date: r.URL.Query().Get("date")})
	if err != nil {
		rt.errors.Handle(w, r, err)
		return
	}
	rt.respond(w, http.StatusOK, result)
}

func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	rt.respond(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (rt *Router) respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		rt.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("HTTP Request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
