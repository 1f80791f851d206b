package mapview

import (
	"math"
	"testing"

	"github.com/relabs-tech/survey_navigator/internal/projection"
)

func fptr(v float64) *float64 { return &v }

func TestEffectiveHeading(t *testing.T) {
	if got := EffectiveHeading(fptr(84.4), 10); got != 84.4 {
		t.Errorf("course preferred: got %v", got)
	}
	if got := EffectiveHeading(nil, 10); got != 10 {
		t.Errorf("compass fallback: got %v", got)
	}
	if got := EffectiveHeading(fptr(math.NaN()), 20); got != 20 {
		t.Errorf("NaN course falls back: got %v", got)
	}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		mode   OrientationMode
		follow bool
		want   Rotation
	}{
		{NorthUp, false, Rotation{Map: 0, Marker: 30}},
		{NorthUp, true, Rotation{Map: 0, Marker: 30}},
		{CourseUp, true, Rotation{Map: -30, Marker: 0}},
		{CourseUp, false, Rotation{Map: 0, Marker: 30}},
	}
	for _, tc := range tests {
		got := Reconcile(tc.mode, tc.follow, 30)
		if got != tc.want {
			t.Errorf("Reconcile(%s, %v) = %+v, want %+v", tc.mode, tc.follow, got, tc.want)
		}
		if again := Reconcile(tc.mode, tc.follow, 30); again != got {
			t.Errorf("Reconcile not idempotent: %+v then %+v", got, again)
		}
	}
}

func TestParseOrientationMode(t *testing.T) {
	if m, err := ParseOrientationMode("course-up"); err != nil || m != CourseUp {
		t.Fatalf("got %v, %v", m, err)
	}
	if _, err := ParseOrientationMode("heading-up"); err == nil {
		t.Fatal("expected error")
	}
}

var testViewport = Viewport{Width: 400, Height: 800, North: 35.01, South: 34.99, East: 139.01, West: 138.99}

func TestFollow_Disabled(t *testing.T) {
	pos := &projection.GeoPoint{Lat: 35.005, Lon: 139.005}
	if got := Follow(NorthUp, false, pos, testViewport); got.Kind != PanNone {
		t.Errorf("follow off: got %+v", got)
	}
	if got := Follow(NorthUp, true, nil, testViewport); got.Kind != PanNone {
		t.Errorf("no position: got %+v", got)
	}
	if got := Follow(NorthUp, true, pos, Viewport{}); got.Kind != PanNone {
		t.Errorf("no viewport: got %+v", got)
	}
}

func TestFollow_Deadband(t *testing.T) {
	x, _ := testViewport.ScreenPoint(projection.GeoPoint{Lat: 35, Lon: 139})
	if math.Abs(x-200) > 1e-6 {
		t.Fatalf("centre x = %v", x)
	}
	// Centre of a small viewport is close enough to the mercator centre.
	got := Follow(NorthUp, true, &projection.GeoPoint{Lat: 35, Lon: 139}, testViewport)
	if got.Kind != PanNone {
		t.Errorf("at anchor: got %+v", got)
	}
}

func TestFollow_AnimateAndSnap(t *testing.T) {
	got := Follow(NorthUp, true, &projection.GeoPoint{Lat: 35, Lon: 139.005}, testViewport)
	if got.Kind != PanAnimate || math.Abs(got.DX-100) > 1e-6 {
		t.Errorf("inside bounds: got %+v", got)
	}

	got = Follow(NorthUp, true, &projection.GeoPoint{Lat: 35, Lon: 139.02}, testViewport)
	if got.Kind != PanSnap || got.DX <= 0 {
		t.Errorf("outside bounds: got %+v", got)
	}
}

func TestFollow_CourseUpAnchor(t *testing.T) {
	ax, ay := Anchor(CourseUp, testViewport)
	if ax != 200 || ay != 600 {
		t.Fatalf("anchor = %v,%v", ax, ay)
	}
	// The centre point now sits 200px above the anchor.
	got := Follow(CourseUp, true, &projection.GeoPoint{Lat: 35, Lon: 139}, testViewport)
	if got.Kind != PanAnimate || math.Abs(got.DY+200) > 0.5 {
		t.Errorf("course-up: got %+v", got)
	}
}

func TestViewport_Valid(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Viewport)
		want bool
	}{
		{"ok", func(*Viewport) {}, true},
		{"zero size", func(v *Viewport) { v.Width = 0 }, false},
		{"inverted", func(v *Viewport) { v.North, v.South = v.South, v.North }, false},
		{"north beyond mercator", func(v *Viewport) { v.North = 86 }, false},
		{"south beyond mercator", func(v *Viewport) { v.South = -89 }, false},
		{"at mercator limit", func(v *Viewport) { v.North, v.South = MaxMercatorLat, -MaxMercatorLat }, true},
		{"nan", func(v *Viewport) { v.East = math.NaN() }, false},
		{"inf", func(v *Viewport) { v.Height = math.Inf(1) }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := testViewport
			tc.edit(&v)
			if got := v.Valid(); got != tc.want {
				t.Errorf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFollow_PolarPositionStaysFinite(t *testing.T) {
	for _, lat := range []float64{-90, 90} {
		got := Follow(NorthUp, true, &projection.GeoPoint{Lat: lat, Lon: 139}, testViewport)
		if got.Kind != PanSnap || math.IsInf(got.DY, 0) || math.IsNaN(got.DY) {
			t.Errorf("lat %v: got %+v", lat, got)
		}
	}
}
