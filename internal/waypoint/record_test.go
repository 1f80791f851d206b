package waypoint

import (
	"errors"
	"testing"
	"time"

	"github.com/relabs-tech/survey_navigator/internal/gps"
)

func TestNewRecord(t *testing.T) {
	at := time.Date(2026, 3, 19, 12, 0, 0, 5_000_000, time.FixedZone("JST", 9*3600))
	r, err := NewRecord("  P-07 ", gps.Fix{Latitude: 35, Longitude: 139, Accuracy: 0.3}, gps.LabelFix, at)
	if err != nil {
		t.Fatal(err)
	}
	if r.Name != "P-07" || !r.IsVisible || r.Status != "FIX" {
		t.Errorf("record = %+v", r)
	}
	if r.Timestamp != "2026-03-19T03:00:00.005Z" {
		t.Errorf("timestamp = %q", r.Timestamp)
	}
	if !r.Time().Equal(at) {
		t.Errorf("Time() = %v", r.Time())
	}
}

func TestNewRecord_Invalid(t *testing.T) {
	if _, err := NewRecord(" ", gps.Fix{Latitude: 35, Longitude: 139}, "", time.Now()); !errors.Is(err, ErrInvalidName) {
		t.Errorf("err = %v", err)
	}
	if _, err := NewRecord("X", gps.Fix{Latitude: 135, Longitude: 139}, "", time.Now()); err == nil {
		t.Error("expected position error")
	}
}
