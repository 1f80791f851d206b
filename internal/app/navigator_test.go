package app

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/relabs-tech/survey_navigator/internal/config"
	"github.com/relabs-tech/survey_navigator/internal/gps"
	"github.com/relabs-tech/survey_navigator/internal/orientation"
	"github.com/relabs-tech/survey_navigator/internal/survey"
	"github.com/relabs-tech/survey_navigator/internal/waypoint"
)

type fakeSubmitter struct {
	events []survey.Event
	full   bool
}

func (f *fakeSubmitter) Submit(ev survey.Event) bool {
	if f.full {
		return false
	}
	f.events = append(f.events, ev)
	return true
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.DefaultZone = 12
	cfg.ProximityArrived = 0.5
	cfg.ProximityNear = 3

	s := settingsFromConfig(cfg)
	if s.Zone != 12 {
		t.Errorf("zone = %d", s.Zone)
	}
	if s.Bands.Arrived != 0.5 || s.Bands.Near != 3 {
		t.Errorf("bands = %+v", s.Bands)
	}
	if s.Thresholds.Fix != cfg.GNSSFixMaxAccuracy || s.Thresholds.Float != cfg.GNSSFloatMaxAccuracy {
		t.Errorf("thresholds = %+v", s.Thresholds)
	}
}

func TestMQTTHandlers_SubmitEvents(t *testing.T) {
	nav := &fakeSubmitter{}
	yaw := 45.0

	onFix(nav)(gps.Fix{Latitude: 35, Longitude: 139})
	onStatus(nav)(gps.Status{State: gps.StateOK})
	onHeading(nav)(orientation.Sample{CompassHeading: &yaw})

	if len(nav.events) != 3 {
		t.Fatalf("submitted %d events, want 3", len(nav.events))
	}
	if _, ok := nav.events[0].(survey.FixEvent); !ok {
		t.Errorf("event 0 is %T", nav.events[0])
	}
	if _, ok := nav.events[1].(survey.SensorStatusEvent); !ok {
		t.Errorf("event 1 is %T", nav.events[1])
	}
	if ev, ok := nav.events[2].(survey.HeadingEvent); !ok || *ev.Sample.CompassHeading != 45 {
		t.Errorf("event 2 is %#v", nav.events[2])
	}
}

func TestMQTTHandlers_FullQueueDoesNotBlock(t *testing.T) {
	nav := &fakeSubmitter{full: true}
	onFix(nav)(gps.Fix{})
	if len(nav.events) != 0 {
		t.Error("event recorded on full queue")
	}
}

func TestMQTTHandlers_InvalidFixDropped(t *testing.T) {
	nav := &fakeSubmitter{}
	course := math.Inf(1)
	for _, f := range []gps.Fix{
		{Latitude: 91, Longitude: 139},
		{Latitude: 35, Longitude: 139, Accuracy: math.NaN()},
		{Latitude: 35, Longitude: 139, CourseDeg: &course},
	} {
		onFix(nav)(f)
	}
	if len(nav.events) != 0 {
		t.Errorf("submitted %d invalid fixes", len(nav.events))
	}
}

func TestPublishViews_ForwardsUntilClosed(t *testing.T) {
	views := make(chan survey.View, 3)
	views <- survey.View{Zone: 1}
	views <- survey.View{Zone: 2}
	views <- survey.View{Zone: 3}
	close(views)

	var got []int
	err := publishViews(context.Background(), views, func(v survey.View) error {
		got = append(got, v.Zone)
		if v.Zone == 2 {
			return errors.New("broker down")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("publishViews: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("published zones %v, want all three", got)
	}
}

func TestPublishViews_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := publishViews(ctx, make(chan survey.View), func(survey.View) error { return nil }); err != nil {
		t.Fatalf("publishViews: %v", err)
	}
}

func TestOpenStore_File(t *testing.T) {
	cfg := config.Defaults()
	cfg.StorePath = filepath.Join(t.TempDir(), "waypoints.yaml")

	store, err := openStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*waypoint.FileStore); !ok {
		t.Errorf("store is %T, want *waypoint.FileStore", store)
	}
}
