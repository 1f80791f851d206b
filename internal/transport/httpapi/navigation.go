package httpapi

import (
	"context"
	"net/http"

	"github.com/relabs-tech/survey_navigator/internal/mapview"
	"github.com/relabs-tech/survey_navigator/internal/orientation"
	"github.com/relabs-tech/survey_navigator/internal/projection"
	"github.com/relabs-tech/survey_navigator/internal/survey"
)

func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	v, err := s.nav.Snapshot(ctx)
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// getGuidance answers 409 while there is no position or no target.
func (s *Server) getGuidance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	v, err := s.nav.Guidance(ctx)
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v.Guidance)
}

type targetRequest struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
	// Plane coordinates in Zone, used when lat/lon are absent.
	Zone int      `json:"zone"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
}

func (s *Server) setTarget(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if !decode(w, r, &req) {
		return
	}

	var g projection.GeoPoint
	switch {
	case req.Lat != nil && req.Lon != nil:
		g = projection.GeoPoint{Lat: *req.Lat, Lon: *req.Lon}
	case req.X != nil && req.Y != nil:
		var err error
		g, err = s.registry.ToGeo(projection.PlanePoint{Northing: *req.X, Easting: *req.Y}, req.Zone)
		if err != nil {
			s.handleError(w, err)
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "lat/lon or zone/x/y required")
		return
	}
	if !g.Valid() {
		writeError(w, http.StatusBadRequest, "target out of range")
		return
	}
	s.submit(w, survey.SetTargetEvent{Target: survey.Target{Name: req.Name, Geo: g}})
}

func (s *Server) clearTarget(w http.ResponseWriter, _ *http.Request) {
	s.submit(w, survey.ClearTargetEvent{})
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) setMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := survey.ParseAppMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.submit(w, survey.SetAppModeEvent{Mode: m})
}

func (s *Server) setOrientation(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := mapview.ParseOrientationMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.submit(w, survey.SetOrientationModeEvent{Mode: m})
}

type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

// setFollow sets follow when enabled is given and toggles it otherwise.
func (s *Server) setFollow(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		s.submit(w, survey.ToggleFollowEvent{})
		return
	}
	s.submit(w, survey.SetFollowEvent{Follow: *req.Enabled})
}

func (s *Server) setInvert(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled required")
		return
	}
	s.submit(w, survey.SetInvertHeadingEvent{Invert: *req.Enabled})
}

type zoneRequest struct {
	Zone int `json:"zone"`
}

func (s *Server) selectZone(w http.ResponseWriter, r *http.Request) {
	var req zoneRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := s.registry.Zone(req.Zone); err != nil {
		s.handleError(w, err)
		return
	}
	s.submit(w, survey.SelectZoneEvent{Zone: req.Zone})
}

func (s *Server) setViewport(w http.ResponseWriter, r *http.Request) {
	var v mapview.Viewport
	if !decode(w, r, &v) {
		return
	}
	if !v.Valid() {
		s.handleError(w, mapview.ErrInvalidViewport)
		return
	}
	s.submit(w, survey.ViewportEvent{Viewport: v})
}

// postHeading accepts a device-orientation sample; one without data is
// accepted and ignored by the smoother.
func (s *Server) postHeading(w http.ResponseWriter, r *http.Request) {
	var sample orientation.Sample
	if !decode(w, r, &sample) {
		return
	}
	s.submit(w, survey.HeadingEvent{Sample: sample})
}
