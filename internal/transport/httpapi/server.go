// Package httpapi is the operator-facing HTTP surface of the navigator:
// a JSON API over the survey engine and waypoint store, a websocket that
// pushes views and accepts orientation samples, and the console page.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/survey_navigator/internal/gps"
	"github.com/relabs-tech/survey_navigator/internal/mapview"
	"github.com/relabs-tech/survey_navigator/internal/metrics"
	"github.com/relabs-tech/survey_navigator/internal/projection"
	"github.com/relabs-tech/survey_navigator/internal/survey"
	"github.com/relabs-tech/survey_navigator/internal/waypoint"
)

const requestTimeout = 2 * time.Second

// Navigator is the engine surface the API drives.
type Navigator interface {
	Submit(ev survey.Event) bool
	Snapshot(ctx context.Context) (survey.View, error)
	Guidance(ctx context.Context) (survey.View, error)
	Subscribe(ctx context.Context) (<-chan survey.View, func())
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

type Server struct {
	nav      Navigator
	store    waypoint.Store
	registry *projection.Registry
	index    []byte
	now      func() time.Time

	errorHandlers []errorHandler
}

// NewServer builds the API. The console page is rendered and minified
// once here.
func NewServer(nav Navigator, store waypoint.Store) (*Server, error) {
	page, err := renderIndex()
	if err != nil {
		return nil, err
	}
	s := &Server{
		nav:      nav,
		store:    store,
		registry: projection.Default(),
		index:    page,
		now:      time.Now,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(projection.ErrInvalidZone, http.StatusBadRequest),
		sentinelHandler(projection.ErrOutOfExtent, http.StatusBadRequest),
		sentinelHandler(mapview.ErrInvalidViewport, http.StatusBadRequest),
		sentinelHandler(gps.ErrInvalidFix, http.StatusBadRequest),
		sentinelHandler(waypoint.ErrInvalidName, http.StatusBadRequest),
		sentinelHandler(waypoint.ErrNotFound, http.StatusNotFound),
		sentinelHandler(survey.ErrNoActivePosition, http.StatusConflict),
		sentinelHandler(survey.ErrNoActiveTarget, http.StatusConflict),
		sentinelHandler(gps.ErrSensorUnavailable, http.StatusServiceUnavailable),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout),
	}
	return s, nil
}

// Handler returns the chi router with logging, metrics and recovery.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/zones", s.listZones)
		r.Post("/convert/plane", s.convertToPlane)
		r.Post("/convert/geo", s.convertToGeo)

		r.Get("/view", s.getView)
		r.Get("/guidance", s.getGuidance)
		r.Post("/target", s.setTarget)
		r.Delete("/target", s.clearTarget)
		r.Put("/mode", s.setMode)
		r.Put("/orientation", s.setOrientation)
		r.Put("/follow", s.setFollow)
		r.Put("/invert", s.setInvert)
		r.Put("/zone", s.selectZone)
		r.Put("/viewport", s.setViewport)
		r.Post("/heading", s.postHeading)

		r.Route("/waypoints", func(r chi.Router) {
			r.Get("/", s.listWaypoints)
			r.Post("/", s.createWaypoint)
			r.Get("/export.csv", s.exportWaypoints)
			r.Post("/import", s.importWaypoints)
			r.Delete("/{name}", s.deleteWaypoint)
			r.Put("/{name}/visible", s.setWaypointVisible)
			r.Post("/{name}/target", s.targetWaypoint)
		})
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(s.index)
}

// submit queues an event, answering 503 when the engine is saturated.
func (s *Server) submit(w http.ResponseWriter, ev survey.Event) {
	if !s.nav.Submit(ev) {
		writeError(w, http.StatusServiceUnavailable, "navigator busy")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "accepted"})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("response encode failed")
		status = http.StatusInternalServerError
		data = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, err.Error())
		return true
	}
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Debug().Err(err).Msg("request rejected")
			return
		}
	}
	log.Error().Err(err).Msg("internal error")
	writeError(w, http.StatusInternalServerError, "internal error")
}
