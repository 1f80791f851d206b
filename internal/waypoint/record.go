// Package waypoint stores surveyed points and exchanges them as CSV.
package waypoint

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/relabs-tech/survey_navigator/internal/gps"
	"github.com/relabs-tech/survey_navigator/internal/projection"
)

var (
	ErrNotFound    = errors.New("waypoint not found")
	ErrInvalidName = errors.New("invalid waypoint name")
)

// TimestampLayout is ISO-8601 in UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is one stored survey point.
type Record struct {
	Name      string  `json:"name" yaml:"name"`
	Lat       float64 `json:"lat" yaml:"lat"`
	Lon       float64 `json:"lon" yaml:"lon"`
	Acc       float64 `json:"acc" yaml:"acc"`
	Status    string  `json:"status" yaml:"status"`
	Timestamp string  `json:"timestamp" yaml:"timestamp"`
	IsVisible bool    `json:"isVisible" yaml:"isVisible"`
}

// NewRecord captures a fix under the given name.
func NewRecord(name string, f gps.Fix, label string, now time.Time) (Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Record{}, ErrInvalidName
	}
	if !f.Valid() {
		return Record{}, fmt.Errorf("waypoint %q: invalid position %.8f,%.8f", name, f.Latitude, f.Longitude)
	}
	return Record{
		Name:      name,
		Lat:       f.Latitude,
		Lon:       f.Longitude,
		Acc:       f.Accuracy,
		Status:    label,
		Timestamp: FormatTimestamp(now),
		IsVisible: true,
	}, nil
}

// Geo returns the record position.
func (r Record) Geo() projection.GeoPoint {
	return projection.GeoPoint{Lat: r.Lat, Lon: r.Lon}
}

// Time parses the record timestamp; the zero time is returned when it
// cannot be parsed.
func (r Record) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatTimestamp renders t the way records store it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
