// Package survey holds the navigator's application state and the single
// goroutine that owns it. Sensor fixes, compass samples and operator
// actions arrive as events; a frame tick turns the state into a View.
package survey

import (
	"errors"
	"fmt"
	"time"

	"github.com/relabs-tech/survey_navigator/internal/gps"
	"github.com/relabs-tech/survey_navigator/internal/heading"
	"github.com/relabs-tech/survey_navigator/internal/mapview"
	"github.com/relabs-tech/survey_navigator/internal/navigation"
	"github.com/relabs-tech/survey_navigator/internal/orientation"
	"github.com/relabs-tech/survey_navigator/internal/projection"
)

var (
	ErrNoActivePosition = errors.New("no active position")
	ErrNoActiveTarget   = errors.New("no active target")
)

// AppMode is the operator's current task.
type AppMode string

const (
	ModeSurvey   AppMode = "survey"
	ModeNavigate AppMode = "navigate"
)

// ParseAppMode accepts the wire names of the two modes.
func ParseAppMode(s string) (AppMode, error) {
	switch AppMode(s) {
	case ModeSurvey, ModeNavigate:
		return AppMode(s), nil
	}
	return "", fmt.Errorf("unknown app mode %q", s)
}

// Target is the single active navigation target.
type Target struct {
	Name string              `json:"name,omitempty"`
	Geo  projection.GeoPoint `json:"geo"`
}

// Settings are the tunables the state is created with.
type Settings struct {
	Zone       int
	Bands      navigation.Bands
	Thresholds gps.Thresholds
}

// DefaultSettings uses zone IX (Kanto) and the stock thresholds.
var DefaultSettings = Settings{
	Zone:       9,
	Bands:      navigation.DefaultBands,
	Thresholds: gps.DefaultThresholds,
}

// State is the navigator's application state. It is not safe for
// concurrent use; the Engine owns one and is its only writer.
type State struct {
	settings Settings

	fix      *gps.Fix
	recentre bool
	smoother heading.Smoother

	target   *Target
	guidance *navigation.Result

	mode        AppMode
	orientation mapview.OrientationMode
	follow      bool
	invert      bool
	zone        int
	viewport    mapview.Viewport
	gpsStatus   gps.Status
}

// NewState returns the state a freshly started navigator has: survey mode,
// north-up, following the position.
func NewState(settings Settings) *State {
	if _, err := projection.Default().Zone(settings.Zone); err != nil {
		settings.Zone = DefaultSettings.Zone
	}
	return &State{
		settings:    settings,
		mode:        ModeSurvey,
		orientation: mapview.NorthUp,
		follow:      true,
		zone:        settings.Zone,
	}
}

// HandleFix processes one position fix: it detects the first fix, replaces
// the stored fix and recomputes guidance when a target is active. It
// reports whether this was the first fix.
func (s *State) HandleFix(f gps.Fix, now time.Time) bool {
	first := s.fix == nil
	if first {
		s.recentre = true
	}
	if f.CourseDeg != nil {
		c := heading.Normalize(*f.CourseDeg)
		f.CourseDeg = &c
	}
	s.fix = &f
	s.gpsStatus = gps.StatusOK(now)
	s.refreshGuidance()
	return first
}

// HandleHeading folds a compass sample into the smoothed heading. Samples
// without orientation data are skipped.
func (s *State) HandleHeading(sample orientation.Sample) bool {
	raw, ok := sample.RawHeading()
	if !ok {
		return false
	}
	s.smoother.Update(raw)
	s.refreshGuidance()
	return true
}

// HandleSensorStatus records a degraded or recovered sensor. The last fix
// is kept.
func (s *State) HandleSensorStatus(st gps.Status) {
	s.gpsStatus = st
}

// SetTarget activates a navigation target.
func (s *State) SetTarget(t Target) {
	s.target = &t
	s.refreshGuidance()
}

// ClearTarget drops the target and its guidance.
func (s *State) ClearTarget() {
	s.target = nil
	s.guidance = nil
}

// SetMode switches between survey and navigate. Any switch clears the
// active target.
func (s *State) SetMode(m AppMode) {
	if m == s.mode {
		return
	}
	s.mode = m
	s.ClearTarget()
}

func (s *State) SetOrientation(m mapview.OrientationMode) { s.orientation = m }
func (s *State) SetFollow(on bool)                        { s.follow = on }
func (s *State) ToggleFollow()                            { s.follow = !s.follow }
func (s *State) SetViewport(v mapview.Viewport)           { s.viewport = v }

// SetInvertHeading mirrors the heading used for the relative bearing, for
// operators facing the stern.
func (s *State) SetInvertHeading(on bool) {
	s.invert = on
	s.refreshGuidance()
}

// SelectZone changes the plane coordinate system used for display.
func (s *State) SelectZone(id int) error {
	if _, err := projection.Default().Zone(id); err != nil {
		return err
	}
	s.zone = id
	return nil
}

// EffectiveHeading is the course over ground when the last fix carried
// one, else the smoothed compass heading.
func (s *State) EffectiveHeading() float64 {
	var course *float64
	if s.fix != nil {
		course = s.fix.CourseDeg
	}
	return mapview.EffectiveHeading(course, s.smoother.Current())
}

// ComputeGuidance computes the guidance for the current position and
// target without touching the stored result.
func (s *State) ComputeGuidance() (navigation.Result, error) {
	if s.fix == nil {
		return navigation.Result{}, ErrNoActivePosition
	}
	if s.target == nil {
		return navigation.Result{}, ErrNoActiveTarget
	}
	return navigation.Compute(s.fix.Geo(), s.target.Geo, s.EffectiveHeading(), s.invert, s.settings.Bands), nil
}

// refreshGuidance updates the stored guidance. With a missing position or
// target the previous guidance is left as it is.
func (s *State) refreshGuidance() {
	r, err := s.ComputeGuidance()
	if err != nil {
		return
	}
	s.guidance = &r
}

// Fix returns the current fix, if any.
func (s *State) Fix() (gps.Fix, bool) {
	if s.fix == nil {
		return gps.Fix{}, false
	}
	return *s.fix, true
}

// Target returns the active target, if any.
func (s *State) Target() (Target, bool) {
	if s.target == nil {
		return Target{}, false
	}
	return *s.target, true
}

// Guidance returns the last computed guidance, if any.
func (s *State) Guidance() (navigation.Result, bool) {
	if s.guidance == nil {
		return navigation.Result{}, false
	}
	return *s.guidance, true
}

func (s *State) Mode() AppMode                        { return s.mode }
func (s *State) Orientation() mapview.OrientationMode { return s.orientation }
func (s *State) Follow() bool                         { return s.follow }
func (s *State) InvertHeading() bool                  { return s.invert }
func (s *State) Zone() int                            { return s.zone }
func (s *State) Heading() float64                     { return s.smoother.Current() }
func (s *State) GPSStatus() gps.Status                { return s.gpsStatus }
