// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package projection converts between WGS84/JGD2011 geographic coordinates
// and the 19 JGD2011 plane rectangular coordinate systems.
//
// Plane coordinates follow the Japanese survey convention: X is the
// northing and Y the easting, both in metres from the zone origin.
package projection

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidZone is returned for zone ids outside 1..19.
var ErrInvalidZone = errors.New("invalid zone")

// ErrOutOfExtent is returned for plane coordinates too far from the zone
// origin to belong to it.
var ErrOutOfExtent = errors.New("coordinate outside zone extent")

// MaxPlaneExtent bounds |X| and |Y| in metres. The series stays accurate
// well beyond it; anything further is not a position in the zone.
const MaxPlaneExtent = 2_000_000.0

// GeoPoint is a geographic position in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies within the geographic ranges.
func (g GeoPoint) Valid() bool {
	return g.Lat >= -90 && g.Lat <= 90 && g.Lon >= -180 && g.Lon <= 180
}

// PlanePoint is a position in a zone, relative to its false origin.
type PlanePoint struct {
	Northing float64 `json:"x"`
	Easting  float64 `json:"y"`
}

// inExtent also rejects NaN and infinities.
func (p PlanePoint) inExtent() bool {
	return math.Abs(p.Northing) <= MaxPlaneExtent && math.Abs(p.Easting) <= MaxPlaneExtent
}

// Registry is the immutable table of zones.
type Registry struct {
	zones [ZoneCount]Zone
}

var defaultRegistry = &Registry{zones: buildZones()}

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// Zones lists all systems ordered by id.
func (r *Registry) Zones() []Zone {
	out := make([]Zone, ZoneCount)
	copy(out, r.zones[:])
	return out
}

// Zone returns the system with the given id.
func (r *Registry) Zone(id int) (Zone, error) {
	if id < 1 || id > ZoneCount {
		return Zone{}, fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidZone, id, ZoneCount)
	}
	return r.zones[id-1], nil
}

// ToPlane projects a geographic point into the zone.
func (r *Registry) ToPlane(g GeoPoint, zoneID int) (PlanePoint, error) {
	z, err := r.Zone(zoneID)
	if err != nil {
		return PlanePoint{}, err
	}
	x, y := z.tm.forward(g.Lat, g.Lon)
	p := PlanePoint{Northing: x, Easting: y}
	if !p.inExtent() {
		return PlanePoint{}, fmt.Errorf("%w: %.8f,%.8f in zone %d", ErrOutOfExtent, g.Lat, g.Lon, zoneID)
	}
	return p, nil
}

// ToGeo recovers the geographic point of a plane coordinate in the zone.
func (r *Registry) ToGeo(p PlanePoint, zoneID int) (GeoPoint, error) {
	z, err := r.Zone(zoneID)
	if err != nil {
		return GeoPoint{}, err
	}
	if !p.inExtent() {
		return GeoPoint{}, fmt.Errorf("%w: %g,%g in zone %d", ErrOutOfExtent, p.Northing, p.Easting, zoneID)
	}
	lat, lon := z.tm.inverse(p.Northing, p.Easting)
	return GeoPoint{Lat: lat, Lon: lon}, nil
}

// ToPlane uses the default registry.
func ToPlane(g GeoPoint, zoneID int) (PlanePoint, error) { return defaultRegistry.ToPlane(g, zoneID) }

// ToGeo uses the default registry.
func ToGeo(p PlanePoint, zoneID int) (GeoPoint, error) { return defaultRegistry.ToGeo(p, zoneID) }
