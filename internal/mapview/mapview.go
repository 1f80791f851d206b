// Package mapview turns heading, course and the operator's display toggles
// into render-time rotations and pan-to-follow actions for the map widget.
package mapview

import (
	"fmt"
	"math"

	"github.com/relabs-tech/survey_navigator/internal/heading"
)

// OrientationMode selects how the map is drawn relative to north.
type OrientationMode string

const (
	NorthUp  OrientationMode = "north-up"
	CourseUp OrientationMode = "course-up"
)

// ParseOrientationMode accepts the wire names of the two modes.
func ParseOrientationMode(s string) (OrientationMode, error) {
	switch OrientationMode(s) {
	case NorthUp, CourseUp:
		return OrientationMode(s), nil
	}
	return "", fmt.Errorf("unknown orientation mode %q", s)
}

// Anchor ratios: the marker sits at screen centre in north-up and lower
// down in course-up so more of the view ahead is visible.
const (
	northUpAnchorY  = 0.5
	courseUpAnchorY = 0.75
	panDeadbandPx   = 1.0
)

// Rotation holds the two CSS-style rotations, in degrees clockwise.
type Rotation struct {
	Map    float64 `json:"map"`
	Marker float64 `json:"marker"`
}

// EffectiveHeading prefers the receiver's course over ground and falls back
// to the smoothed compass heading.
func EffectiveHeading(course *float64, smoothed float64) float64 {
	if course != nil && !math.IsNaN(*course) && !math.IsInf(*course, 0) {
		return heading.Normalize(*course)
	}
	return heading.Normalize(smoothed)
}

// Reconcile maps (mode, follow, effective heading) to the rotation pair.
//
//	north-up,  any follow -> map 0,        marker heading
//	course-up, follow     -> map -heading, marker 0
//	course-up, no follow  -> map 0,        marker heading
func Reconcile(mode OrientationMode, follow bool, effective float64) Rotation {
	if mode == CourseUp && follow {
		r := Rotation{Marker: 0}
		if effective != 0 {
			r.Map = -effective
		}
		return r
	}
	return Rotation{Map: 0, Marker: effective}
}
