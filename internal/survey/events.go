package survey

import (
	"fmt"
	"time"

	"github.com/relabs-tech/survey_navigator/internal/gps"
	"github.com/relabs-tech/survey_navigator/internal/mapview"
	"github.com/relabs-tech/survey_navigator/internal/orientation"
)

// Event is one input to the engine loop.
type Event interface {
	apply(s *State, now time.Time) error
}

type FixEvent struct{ Fix gps.Fix }

func (e FixEvent) apply(s *State, now time.Time) error {
	if !e.Fix.Valid() {
		return fmt.Errorf("%w: lat=%v lon=%v acc=%v", gps.ErrInvalidFix,
			e.Fix.Latitude, e.Fix.Longitude, e.Fix.Accuracy)
	}
	s.HandleFix(e.Fix, now)
	return nil
}

type HeadingEvent struct{ Sample orientation.Sample }

func (e HeadingEvent) apply(s *State, _ time.Time) error {
	s.HandleHeading(e.Sample)
	return nil
}

type SensorStatusEvent struct{ Status gps.Status }

func (e SensorStatusEvent) apply(s *State, _ time.Time) error {
	s.HandleSensorStatus(e.Status)
	return nil
}

type SetTargetEvent struct{ Target Target }

func (e SetTargetEvent) apply(s *State, _ time.Time) error {
	if !e.Target.Geo.Valid() {
		return ErrNoActiveTarget
	}
	s.SetTarget(e.Target)
	return nil
}

type ClearTargetEvent struct{}

func (ClearTargetEvent) apply(s *State, _ time.Time) error {
	s.ClearTarget()
	return nil
}

type SetAppModeEvent struct{ Mode AppMode }

func (e SetAppModeEvent) apply(s *State, _ time.Time) error {
	s.SetMode(e.Mode)
	return nil
}

type SetOrientationModeEvent struct{ Mode mapview.OrientationMode }

func (e SetOrientationModeEvent) apply(s *State, _ time.Time) error {
	s.SetOrientation(e.Mode)
	return nil
}

type ToggleFollowEvent struct{}

func (ToggleFollowEvent) apply(s *State, _ time.Time) error {
	s.ToggleFollow()
	return nil
}

type SetFollowEvent struct{ Follow bool }

func (e SetFollowEvent) apply(s *State, _ time.Time) error {
	s.SetFollow(e.Follow)
	return nil
}

type SetInvertHeadingEvent struct{ Invert bool }

func (e SetInvertHeadingEvent) apply(s *State, _ time.Time) error {
	s.SetInvertHeading(e.Invert)
	return nil
}

type SelectZoneEvent struct{ Zone int }

func (e SelectZoneEvent) apply(s *State, _ time.Time) error {
	return s.SelectZone(e.Zone)
}

type ViewportEvent struct{ Viewport mapview.Viewport }

func (e ViewportEvent) apply(s *State, _ time.Time) error {
	if !e.Viewport.Valid() {
		return fmt.Errorf("%w: %+v", mapview.ErrInvalidViewport, e.Viewport)
	}
	s.SetViewport(e.Viewport)
	return nil
}
