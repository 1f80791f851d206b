package gps

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
)

// rmcCourseField is the index of the course-over-ground field in an RMC
// sentence; the parser reports an empty field as 0, so presence is checked
// on the raw field.
const rmcCourseField = 7

// DefaultHDOPScale converts HDOP into an approximate horizontal accuracy
// for receivers that do not emit GST.
const DefaultHDOPScale = 5.0

// Decoder accumulates NMEA sentences into fixes. RMC carries position and
// course and closes a fix; GST and GGA contribute accuracy and quality.
type Decoder struct {
	HDOPScale float64
	Now       func() time.Time

	accuracy float64
	haveGST  bool
	quality  string
}

// NewDecoder returns a decoder using the wall clock.
func NewDecoder() *Decoder {
	return &Decoder{HDOPScale: DefaultHDOPScale, Now: time.Now}
}

// Feed parses one line. It returns ok=true with a complete fix whenever a
// valid RMC sentence arrives. Non-NMEA noise is ignored; a void RMC yields
// a PositionUnavailable sensor error.
func (d *Decoder) Feed(line string) (Fix, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "$") {
		return Fix{}, false, nil
	}

	sentence, err := sentenceParser.Parse(line)
	if err != nil {
		return Fix{}, false, fmt.Errorf("nmea parse: %w", err)
	}

	switch m := sentence.(type) {
	case GST:
		d.accuracy = math.Hypot(m.LatitudeError, m.LongitudeError)
		d.haveGST = true

	case nmea.GGA:
		d.quality = m.FixQuality
		if !d.haveGST {
			scale := d.HDOPScale
			if scale <= 0 {
				scale = DefaultHDOPScale
			}
			d.accuracy = m.HDOP * scale
		}

	case nmea.RMC:
		if m.Validity != nmea.ValidRMC {
			return Fix{}, false, &SensorError{
				Kind: PositionUnavailable,
				Err:  errors.New("receiver reports void position"),
			}
		}

		fix := Fix{
			Latitude:    m.Latitude,
			Longitude:   m.Longitude,
			Accuracy:    d.accuracy,
			SpeedKnots:  m.Speed,
			FixQuality:  d.quality,
			TimestampMs: d.rmcTime(m).UnixMilli(),
		}
		if len(m.Fields) > rmcCourseField && strings.TrimSpace(m.Fields[rmcCourseField]) != "" {
			course := m.Course
			fix.CourseDeg = &course
		}
		return fix, true, nil
	}

	return Fix{}, false, nil
}

func (d *Decoder) rmcTime(m nmea.RMC) time.Time {
	if !m.Date.Valid || !m.Time.Valid {
		if d.Now == nil {
			return time.Now()
		}
		return d.Now()
	}
	return time.Date(2000+m.Date.YY, time.Month(m.Date.MM), m.Date.DD,
		m.Time.Hour, m.Time.Minute, m.Time.Second, m.Time.Millisecond*int(time.Millisecond), time.UTC)
}
