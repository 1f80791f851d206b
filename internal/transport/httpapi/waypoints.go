package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/survey_navigator/internal/gps"
	"github.com/relabs-tech/survey_navigator/internal/survey"
	"github.com/relabs-tech/survey_navigator/internal/waypoint"
)

const maxImportBytes = 8 << 20

func (s *Server) listWaypoints(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

type createWaypointRequest struct {
	Name string `json:"name"`
}

// createWaypoint records the current position under the given name.
func (s *Server) createWaypoint(w http.ResponseWriter, r *http.Request) {
	var req createWaypointRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	v, err := s.nav.Snapshot(ctx)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if v.Position == nil {
		s.handleError(w, survey.ErrNoActivePosition)
		return
	}

	fix := gps.Fix{Latitude: v.Position.Lat, Longitude: v.Position.Lon, Accuracy: v.Position.Accuracy}
	rec, err := waypoint.NewRecord(req.Name, fix, v.Position.Quality, s.now())
	if err != nil {
		s.handleError(w, err)
		return
	}
	if err := s.store.Save(r.Context(), rec); err != nil {
		s.handleError(w, err)
		return
	}
	log.Info().Str("name", rec.Name).Float64("lat", rec.Lat).Float64("lon", rec.Lon).Str("status", rec.Status).Msg("waypoint recorded")
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) deleteWaypoint(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.store.Delete(r.Context(), name); err != nil {
		s.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type visibleRequest struct {
	Visible bool `json:"visible"`
}

func (s *Server) setWaypointVisible(w http.ResponseWriter, r *http.Request) {
	var req visibleRequest
	if !decode(w, r, &req) {
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.store.SetVisible(r.Context(), name, req.Visible); err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "visible": req.Visible})
}

// targetWaypoint switches to navigate mode with the waypoint as target.
func (s *Server) targetWaypoint(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	if !s.nav.Submit(survey.SetAppModeEvent{Mode: survey.ModeNavigate}) {
		writeError(w, http.StatusServiceUnavailable, "navigator busy")
		return
	}
	s.submit(w, survey.SetTargetEvent{Target: survey.Target{Name: rec.Name, Geo: rec.Geo()}})
}

// zoneParam reads ?zone=, defaulting to the zone selected in the view.
func (s *Server) zoneParam(r *http.Request) (int, error) {
	if z := r.URL.Query().Get("zone"); z != "" {
		id, err := strconv.Atoi(z)
		if err != nil {
			return 0, fmt.Errorf("zone %q: %w", z, err)
		}
		return id, nil
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	v, err := s.nav.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return v.Zone, nil
}

func (s *Server) exportWaypoints(w http.ResponseWriter, r *http.Request) {
	zone, err := s.zoneParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.registry.Zone(zone); err != nil {
		s.handleError(w, err)
		return
	}
	records, err := s.store.List(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}

	name := fmt.Sprintf("waypoints_%s_zone%02d.csv", s.now().Format("20060102_150405"), zone)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := waypoint.Export(w, records, zone); err != nil {
		log.Error().Err(err).Msg("csv export failed")
	}
}

type importResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

func (s *Server) importWaypoints(w http.ResponseWriter, r *http.Request) {
	zone, err := s.zoneParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := waypoint.Import(http.MaxBytesReader(w, r.Body, maxImportBytes), zone, s.now())
	if err != nil {
		s.handleError(w, err)
		return
	}
	for _, rec := range res.Records {
		if err := s.store.Save(r.Context(), rec); err != nil {
			s.handleError(w, err)
			return
		}
	}

	resp := importResponse{Imported: len(res.Records), Skipped: res.Skipped}
	for _, e := range res.Errors {
		resp.Errors = append(resp.Errors, e.Error())
	}
	log.Info().Int("imported", resp.Imported).Int("skipped", resp.Skipped).Int("zone", zone).Msg("waypoints imported")
	writeJSON(w, http.StatusOK, resp)
}
