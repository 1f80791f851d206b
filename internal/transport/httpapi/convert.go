package httpapi

import (
	"net/http"

	"github.com/relabs-tech/survey_navigator/internal/projection"
)

type zoneResponse struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Region      string            `json:"region"`
	EPSG        int               `json:"epsg"`
	Params      projection.Params `json:"params"`
	Proj4       string            `json:"proj4"`
}

func (s *Server) listZones(w http.ResponseWriter, _ *http.Request) {
	zones := s.registry.Zones()
	out := make([]zoneResponse, len(zones))
	for i, z := range zones {
		out[i] = zoneResponse{
			ID:          z.ID,
			Name:        z.Name,
			DisplayName: z.DisplayName(),
			Region:      z.Region,
			EPSG:        z.EPSG,
			Params:      z.Params,
			Proj4:       z.Params.Proj4(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type convertPlaneRequest struct {
	Zone int     `json:"zone"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

func (s *Server) convertToPlane(w http.ResponseWriter, r *http.Request) {
	var req convertPlaneRequest
	if !decode(w, r, &req) {
		return
	}
	g := projection.GeoPoint{Lat: req.Lat, Lon: req.Lon}
	if !g.Valid() {
		writeError(w, http.StatusBadRequest, "lat/lon out of range")
		return
	}
	p, err := s.registry.ToPlane(g, req.Zone)
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"zone": req.Zone, "x": p.Northing, "y": p.Easting})
}

type convertGeoRequest struct {
	Zone int     `json:"zone"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

func (s *Server) convertToGeo(w http.ResponseWriter, r *http.Request) {
	var req convertGeoRequest
	if !decode(w, r, &req) {
		return
	}
	g, err := s.registry.ToGeo(projection.PlanePoint{Northing: req.X, Easting: req.Y}, req.Zone)
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"zone": req.Zone, "lat": g.Lat, "lon": g.Lon})
}
