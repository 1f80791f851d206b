package mapview

import (
	"errors"
	"math"

	"github.com/relabs-tech/survey_navigator/internal/projection"
)

// MaxMercatorLat is the latitude limit of web-mercator tile maps.
const MaxMercatorLat = 85.0511287798

// ErrInvalidViewport is returned for viewports that cannot place a marker.
var ErrInvalidViewport = errors.New("invalid viewport")

// Viewport is what the map widget last reported about itself: its pixel
// size and the geographic bounds of the unrotated view.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	North  float64 `json:"north"`
	South  float64 `json:"south"`
	East   float64 `json:"east"`
	West   float64 `json:"west"`
}

// Valid reports whether the viewport can be used to place a marker.
func (v Viewport) Valid() bool {
	for _, f := range []float64{v.Width, v.Height, v.North, v.South, v.East, v.West} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return v.Width > 0 && v.Height > 0 && v.North > v.South && v.East > v.West &&
		v.North <= MaxMercatorLat && v.South >= -MaxMercatorLat
}

// Contains reports whether p lies inside the visible bounds.
func (v Viewport) Contains(p projection.GeoPoint) bool {
	return p.Lat <= v.North && p.Lat >= v.South && p.Lon <= v.East && p.Lon >= v.West
}

// ScreenPoint returns the pixel position of p in the viewport, using the
// web-mercator vertical scale tile maps are drawn in.
func (v Viewport) ScreenPoint(p projection.GeoPoint) (x, y float64) {
	x = (p.Lon - v.West) / (v.East - v.West) * v.Width
	top, bottom := mercatorY(v.North), mercatorY(v.South)
	y = (top - mercatorY(p.Lat)) / (top - bottom) * v.Height
	return x, y
}

func mercatorY(lat float64) float64 {
	lat = math.Max(-MaxMercatorLat, math.Min(MaxMercatorLat, lat))
	phi := lat * math.Pi / 180
	return math.Log(math.Tan(math.Pi/4 + phi/2))
}

// PanKind tells the widget how to bring the marker back to its anchor.
type PanKind string

const (
	PanNone    PanKind = "none"
	PanSnap    PanKind = "snap"
	PanAnimate PanKind = "animate"
)

// PanAction is the offset, in pixels, by which the map should be panned so
// the marker lands on the anchor point.
type PanAction struct {
	Kind PanKind `json:"kind"`
	DX   float64 `json:"dx"`
	DY   float64 `json:"dy"`
}

// Anchor returns the pixel point the marker is kept on in the given mode.
func Anchor(mode OrientationMode, v Viewport) (x, y float64) {
	ratio := northUpAnchorY
	if mode == CourseUp {
		ratio = courseUpAnchorY
	}
	return v.Width / 2, v.Height * ratio
}

// Follow computes the pan-to-follow action for the current position. A
// position outside the visible bounds snaps; otherwise the map animates
// only when the offset exceeds the one pixel deadband.
func Follow(mode OrientationMode, follow bool, pos *projection.GeoPoint, v Viewport) PanAction {
	if !follow || pos == nil || !v.Valid() {
		return PanAction{Kind: PanNone}
	}
	x, y := v.ScreenPoint(*pos)
	ax, ay := Anchor(mode, v)
	dx, dy := x-ax, y-ay

	if !v.Contains(*pos) {
		return PanAction{Kind: PanSnap, DX: dx, DY: dy}
	}
	if math.Abs(dx) <= panDeadbandPx && math.Abs(dy) <= panDeadbandPx {
		return PanAction{Kind: PanNone}
	}
	return PanAction{Kind: PanAnimate, DX: dx, DY: dy}
}
