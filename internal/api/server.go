// internal/api/server.go

// Package api exposes the session monitor and the SMS dispatch workflow over HTTP.
package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/models"
	"wms-dispatch/internal/parcels"
	"wms-dispatch/internal/session"
	"wms-dispatch/internal/sms"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionService is the part of session.Manager the API exposes.
type SessionService interface {
	Config() session.TimeoutConfig
	Login(ctx context.Context, userID string, metadata map[string]string) (*models.Session, error)
	Activity(ctx context.Context, id string, kind session.ActivityKind) (*models.Session, error)
	Extend(ctx context.Context, id string) (*models.Session, error)
	Logout(ctx context.Context, id, reason string) error
	Status(ctx context.Context, id string) (*models.Session, error)
}

// SMSService is the part of sms.Workflow the API exposes.
type SMSService interface {
	Catalog() *sms.Catalog
	ConfigErrors() []string
	Preview(req sms.ParcelBatchRequest) ([]sms.Job, []string)
	SendParcels(ctx context.Context, req sms.ParcelBatchRequest) (*sms.BatchResult, error)
	SendBulk(ctx context.Context, req sms.BulkRequest) (*sms.BatchResult, error)
	SendStatusUpdate(ctx context.Context, req sms.StatusUpdateRequest) (*sms.BatchResult, error)
}

// ParcelQuery reads parcels for listing and sending.
type ParcelQuery interface {
	GetByID(ctx context.Context, id int64) (*models.Parcel, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Parcel, error)
	List(ctx context.Context, f parcels.Filter) ([]models.Parcel, error)
	Destinations(ctx context.Context, branch string) ([]string, error)
}

// ReadinessCheck reports whether a backing service is reachable.
type ReadinessCheck func(ctx context.Context) error

// Dependencies are the services behind the routes. Checks are run by /ready.
type Dependencies struct {
	Sessions SessionService
	SMS      SMSService
	Parcels  ParcelQuery
	Checks   map[string]ReadinessCheck
	Logger   logger.Logger
}

type Options struct {
	AllowedOrigins  []string
	DefaultTestMode bool
}

// Server serves the session and SMS endpoints.
type Server struct {
	sessions SessionService
	sms      SMSService
	parcels  ParcelQuery
	checks   map[string]ReadinessCheck
	logger   logger.Logger
	opts     Options
	now      func() time.Time
}

func NewServer(deps Dependencies, opts Options) *Server {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{
		sessions: deps.Sessions,
		sms:      deps.SMS,
		parcels:  deps.Parcels,
		checks:   deps.Checks,
		logger:   deps.Logger.Named("api"),
		opts:     opts,
		now:      time.Now,
	}
}

// Routes builds the chi router with CORS, health, readiness and metrics.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		// ---------------- Sessions ----------------
		api.Route("/sessions", func(sr chi.Router) {
			sr.Get("/config", s.sessionConfig)
			sr.Post("/", s.login)
			sr.Get("/{id}", s.sessionStatus)
			sr.Post("/{id}/activity", s.activity)
			sr.Post("/{id}/extend", s.extend)
			sr.Delete("/{id}", s.logout)
		})

		// ---------------- SMS ----------------
		api.Route("/sms", func(sr chi.Router) {
			sr.Get("/config", s.smsConfig)
			sr.Get("/templates", s.templates)
			sr.Post("/phone/validate", s.validatePhone)
			sr.Get("/parcels", s.listParcels)
			sr.Get("/destinations", s.destinations)
			sr.Post("/parcels/preview", s.preview)
			sr.Post("/parcels/send", s.sendParcels)
			sr.Post("/parcels/{id}/status-update", s.statusUpdate)
			sr.Post("/bulk", s.sendBulk)
		})
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.Debug("http request", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  middleware.GetReqID(r.Context()),
		})
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	results := make(map[string]string, len(s.checks))
	var failed []string
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			failed = append(failed, name)
			continue
		}
		results[name] = "ok"
	}

	if len(failed) > 0 {
		sort.Strings(failed)
		writeError(w, http.StatusServiceUnavailable, APIResponse{
			Message: "not ready",
			Errors:  failed,
			Data:    results,
		})
		return
	}
	writeJSON(w, http.StatusOK, results)
}
