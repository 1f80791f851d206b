package gps

import (
	"errors"
	"math"
	"time"

	"github.com/relabs-tech/survey_navigator/internal/projection"
)

// ErrInvalidFix is returned for fixes whose position, accuracy or course
// cannot be used.
var ErrInvalidFix = errors.New("gps: invalid fix")

// Fix represents a single position fix suitable for JSON and MQTT. A new
// fix supersedes the previous one; fixes are never merged.
type Fix struct {
	Latitude    float64  `json:"lat"`                  // decimal degrees
	Longitude   float64  `json:"lon"`                  // decimal degrees
	Accuracy    float64  `json:"acc"`                  // horizontal accuracy, metres
	CourseDeg   *float64 `json:"course_deg,omitempty"` // course over ground, nil when not reported
	SpeedKnots  float64  `json:"speed_knots"`          // speed over ground
	FixQuality  string   `json:"fix_quality,omitempty"`
	TimestampMs int64    `json:"timestamp_ms"`
}

// Geo returns the fix position.
func (f Fix) Geo() projection.GeoPoint {
	return projection.GeoPoint{Lat: f.Latitude, Lon: f.Longitude}
}

// Course returns the course over ground if the receiver reported one.
func (f Fix) Course() (float64, bool) {
	if f.CourseDeg == nil {
		return 0, false
	}
	return *f.CourseDeg, true
}

// Time returns the fix timestamp.
func (f Fix) Time() time.Time {
	return time.UnixMilli(f.TimestampMs)
}

// Valid reports whether the position is inside the geographic ranges, the
// accuracy is finite and non-negative and a reported course is finite.
func (f Fix) Valid() bool {
	if !f.Geo().Valid() || !(f.Accuracy >= 0) || math.IsInf(f.Accuracy, 1) {
		return false
	}
	if f.CourseDeg != nil && (math.IsNaN(*f.CourseDeg) || math.IsInf(*f.CourseDeg, 0)) {
		return false
	}
	return true
}
