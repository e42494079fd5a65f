// internal/httpapi/server.go
package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"careers-backend/internal/candidatures/aggregate"
	"careers-backend/internal/candidatures/lifecycle"
	"careers-backend/internal/candidatures/storage"
	"careers-backend/internal/common/errors"
	"careers-backend/internal/common/logger"
	"careers-backend/internal/common/observability"
	"careers-backend/internal/contact"
	"careers-backend/internal/openings"
)

// Server wires the HTTP surface to the core services. Handlers only parse
// and encode; every decision lives in the services.
type Server struct {
	aggregator *aggregate.Service
	lifecycle  *lifecycle.Controller
	registry   *storage.Registry
	openings   *openings.Service
	contact    *contact.Service
	db         *sql.DB
	obs        *observability.Observability
	logger     logger.Logger
}

type Deps struct {
	Aggregator    *aggregate.Service
	Lifecycle     *lifecycle.Controller
	Registry      *storage.Registry
	Openings      *openings.Service
	Contact       *contact.Service
	DB            *sql.DB
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewServer(deps Deps) *Server {
	return &Server{
		aggregator: deps.Aggregator,
		lifecycle:  deps.Lifecycle,
		registry:   deps.Registry,
		openings:   deps.Openings,
		contact:    deps.Contact,
		db:         deps.DB,
		obs:        deps.Observability,
		logger:     deps.Logger,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/candidatures", s.instrument("/api/candidatures", s.handleListApplications)).Methods(http.MethodGet)
	api.HandleFunc("/candidatures/stages", s.instrument("/api/candidatures/stages", s.handleListInternships)).Methods(http.MethodGet)
	api.HandleFunc("/candidatures/spontanees", s.instrument("/api/candidatures/spontanees", s.handleListSpontaneous)).Methods(http.MethodGet)
	api.HandleFunc("/candidatures/statut/{type}/{id:[0-9]+}", s.instrument("/api/candidatures/statut", s.handleTransition)).Methods(http.MethodPut)

	api.HandleFunc("/candidature-emploi", s.instrument("/api/candidature-emploi", s.handleEmploiIntake)).Methods(http.MethodPost)
	api.HandleFunc("/candidature-stage", s.instrument("/api/candidature-stage", s.handleStageIntake)).Methods(http.MethodPost)
	api.HandleFunc("/candidature-spontanee", s.instrument("/api/candidature-spontanee", s.handleSpontaneeIntake)).Methods(http.MethodPost)

	api.HandleFunc("/offres", s.instrument("/api/offres", s.handleListOpenings)).Methods(http.MethodGet)
	api.HandleFunc("/offres", s.instrument("/api/offres", s.handleCreateOpening)).Methods(http.MethodPost)
	api.HandleFunc("/offres/{id:[0-9]+}", s.instrument("/api/offres/{id}", s.handleGetOpening)).Methods(http.MethodGet)
	api.HandleFunc("/offres/{id:[0-9]+}", s.instrument("/api/offres/{id}", s.handleUpdateOpening)).Methods(http.MethodPut)
	api.HandleFunc("/offres/{id:[0-9]+}", s.instrument("/api/offres/{id}", s.handleDeleteOpening)).Methods(http.MethodDelete)

	api.HandleFunc("/contact", s.instrument("/api/contact", s.handleContact)).Methods(http.MethodPost)

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/db/ping", s.handleDBPing).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// --- plumbing ---

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		if s.obs != nil {
			s.obs.RecordRequest(r.Context(), route, rec.status)
			s.obs.RecordRequestDuration(r.Context(), route, time.Since(start))
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("response encoding failed", nil)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	std, ok := err.(*errors.StandardError)
	if !ok {
		std = errors.NewInternalError(err)
	}
	s.writeJSON(w, errors.HTTPStatus(std), map[string]interface{}{"error": std})
}
