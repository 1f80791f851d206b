// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package navigation computes bearing/distance guidance from the current
// position toward a target.
package navigation

import (
	"fmt"
	"math"

	"github.com/relabs-tech/survey_navigator/internal/heading"
	"github.com/relabs-tech/survey_navigator/internal/projection"
)

// EarthRadius is the mean radius used for great-circle distances (m).
const EarthRadius = 6371000.0

// cardinals are the 16 compass points starting at north, clockwise.
var cardinals = [16]string{
	"北", "北北東", "北東", "東北東",
	"東", "東南東", "南東", "南南東",
	"南", "南南西", "南西", "西南西",
	"西", "西北西", "北西", "北北西",
}

// cardinalsASCII are the same sectors for fonts without kanji.
var cardinalsASCII = [16]string{
	"N", "NNE", "NE", "ENE",
	"E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW",
	"W", "WNW", "NW", "NNW",
}

// Direction words for the decomposed offsets.
const (
	North = "北"
	South = "南"
	East  = "東"
	West  = "西"
)

// Side tells on which side of the bow the target lies.
type Side string

const (
	Starboard Side = "右舷"
	Port      Side = "左舷"
)

// Distance returns the haversine distance in metres.
func Distance(a, b projection.GeoPoint) float64 {
	lat1, lat2 := rad(a.Lat), rad(b.Lat)
	dLat := lat2 - lat1
	dLon := rad(b.Lon - a.Lon)

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
	return EarthRadius * c
}

// Bearing returns the initial great-circle bearing from a to b in [0, 360).
func Bearing(a, b projection.GeoPoint) float64 {
	lat1, lat2 := rad(a.Lat), rad(b.Lat)
	dLon := rad(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return heading.Normalize(math.Atan2(y, x) * 180 / math.Pi)
}

// CardinalIndex maps a bearing to its 22.5° compass sector, rounding to the
// nearest sector.
func CardinalIndex(bearing float64) int {
	idx := int(math.Round(bearing/22.5)) % 16
	if idx < 0 {
		idx += 16
	}
	return idx
}

// Cardinal names the compass sector of a bearing.
func Cardinal(bearing float64) string {
	return cardinals[CardinalIndex(bearing)]
}

// CardinalASCII names the compass sector with the English abbreviation.
func CardinalASCII(bearing float64) string {
	return cardinalsASCII[CardinalIndex(bearing)]
}

// RelativeBearing returns the target bearing relative to the heading in
// (-180, 180]. With invert set the heading is taken from the stern.
func RelativeBearing(bearing, effectiveHeading float64, invert bool) float64 {
	adjusted := effectiveHeading
	if invert {
		adjusted = math.Mod(effectiveHeading+180, 360)
	}
	return heading.Signed(bearing - adjusted)
}

// Result is the guidance toward one target.
type Result struct {
	Distance float64 `json:"distance_m"`
	Band     Band    `json:"band"`

	Bearing  float64 `json:"bearing_deg"`
	Cardinal string  `json:"cardinal"`

	NorthSouth      float64 `json:"north_south_m"`
	NorthSouthLabel string  `json:"north_south_label"`
	EastWest        float64 `json:"east_west_m"`
	EastWestLabel   string  `json:"east_west_label"`

	Relative          float64 `json:"relative_deg"`
	Side              Side    `json:"side"`
	RelativeMagnitude int     `json:"relative_magnitude_deg"`
}

// Compute builds the guidance from one position toward a target.
func Compute(from, to projection.GeoPoint, effectiveHeading float64, invert bool, bands Bands) Result {
	r := Result{
		Distance: Distance(from, to),
		Bearing:  Bearing(from, to),
	}
	r.Band = bands.Classify(r.Distance)
	r.Cardinal = Cardinal(r.Bearing)

	r.NorthSouth = Distance(from, projection.GeoPoint{Lat: to.Lat, Lon: from.Lon})
	r.NorthSouthLabel = North
	if to.Lat-from.Lat < 0 {
		r.NorthSouthLabel = South
	}

	r.EastWest = Distance(from, projection.GeoPoint{Lat: from.Lat, Lon: to.Lon})
	r.EastWestLabel = East
	if to.Lon-from.Lon < 0 {
		r.EastWestLabel = West
	}

	r.Relative = RelativeBearing(r.Bearing, effectiveHeading, invert)
	r.Side = Starboard
	if r.Relative < 0 {
		r.Side = Port
	}
	r.RelativeMagnitude = int(math.Round(math.Abs(r.Relative)))

	return r
}

// ComputeGuidance is Compute for optional endpoints: with either side
// missing nothing is computed and ok is false.
func ComputeGuidance(from, to *projection.GeoPoint, effectiveHeading float64, invert bool, bands Bands) (Result, bool) {
	if from == nil || to == nil {
		return Result{}, false
	}
	return Compute(*from, *to, effectiveHeading, invert, bands), true
}

// DistanceText formats the headline distance.
func (r Result) DistanceText() string {
	return fmt.Sprintf("%.2f m", r.Distance)
}

// NorthSouthText formats the north/south offset.
func (r Result) NorthSouthText() string {
	return fmt.Sprintf("%s %.2f m", r.NorthSouthLabel, r.NorthSouth)
}

// EastWestText formats the east/west offset.
func (r Result) EastWestText() string {
	return fmt.Sprintf("%s %.2f m", r.EastWestLabel, r.EastWest)
}

// RelativeText formats side and magnitude, e.g. "右舷 45°".
func (r Result) RelativeText() string {
	return fmt.Sprintf("%s %d°", r.Side, r.RelativeMagnitude)
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }
