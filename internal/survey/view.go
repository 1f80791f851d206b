package survey

import (
	"github.com/relabs-tech/survey_navigator/internal/gps"
	"github.com/relabs-tech/survey_navigator/internal/heading"
	"github.com/relabs-tech/survey_navigator/internal/mapview"
	"github.com/relabs-tech/survey_navigator/internal/navigation"
	"github.com/relabs-tech/survey_navigator/internal/projection"
)

// PositionView is the current fix as shown to the operator, with plane
// coordinates in the selected zone. X and Y are nil when the fix lies
// outside the zone's usable extent.
type PositionView struct {
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	Accuracy    float64  `json:"acc"`
	Quality     string   `json:"quality"`
	Course      *float64 `json:"course,omitempty"`
	TimestampMs int64    `json:"timestamp_ms"`
}

// GuidanceView is the guidance toward the active target, preformatted.
type GuidanceView struct {
	navigation.Result
	DistanceText   string  `json:"distance_text"`
	NorthSouthText string  `json:"north_south_text"`
	EastWestText   string  `json:"east_west_text"`
	RelativeText   string  `json:"relative_text"`
	ArrowRotation  float64 `json:"arrow_rotation"`
}

// View is everything the presentation layer needs for one frame.
type View struct {
	Mode          AppMode                 `json:"mode"`
	Orientation   mapview.OrientationMode `json:"orientation"`
	Follow        bool                    `json:"follow"`
	InvertHeading bool                    `json:"invert_heading"`
	Zone          int                     `json:"zone"`
	ZoneName      string                  `json:"zone_name"`

	Position         *PositionView     `json:"position,omitempty"`
	Heading          float64           `json:"heading"`
	EffectiveHeading float64           `json:"effective_heading"`
	Rotation         mapview.Rotation  `json:"rotation"`
	Pan              mapview.PanAction `json:"pan"`
	Recentre         bool              `json:"recentre,omitempty"`

	Target   *Target       `json:"target,omitempty"`
	Guidance *GuidanceView `json:"guidance,omitempty"`

	GPSStatus gps.Status `json:"gps_status"`
}

// View builds the view model. It reads the state only, so repeated calls
// with unchanged state give identical views.
func (s *State) View() View {
	effective := s.EffectiveHeading()
	v := View{
		Mode:             s.mode,
		Orientation:      s.orientation,
		Follow:           s.follow,
		InvertHeading:    s.invert,
		Zone:             s.zone,
		Heading:          s.smoother.Current(),
		EffectiveHeading: effective,
		Rotation:         mapview.Reconcile(s.orientation, s.follow, effective),
		Recentre:         s.recentre,
		GPSStatus:        s.gpsStatus,
	}
	if z, err := projection.Default().Zone(s.zone); err == nil {
		v.ZoneName = z.Name
	}

	var pos *projection.GeoPoint
	if s.fix != nil {
		g := s.fix.Geo()
		pos = &g
		pv := &PositionView{
			Lat:         s.fix.Latitude,
			Lon:         s.fix.Longitude,
			Accuracy:    s.fix.Accuracy,
			Quality:     s.settings.Thresholds.Label(s.fix.Accuracy),
			Course:      s.fix.CourseDeg,
			TimestampMs: s.fix.TimestampMs,
		}
		if p, err := projection.ToPlane(g, s.zone); err == nil {
			x, y := p.Northing, p.Easting
			pv.X, pv.Y = &x, &y
		}
		v.Position = pv
	}
	v.Pan = mapview.Follow(s.orientation, s.follow, pos, s.viewport)

	if s.target != nil {
		t := *s.target
		v.Target = &t
	}
	if s.guidance != nil {
		r := *s.guidance
		v.Guidance = &GuidanceView{
			Result:         r,
			DistanceText:   r.DistanceText(),
			NorthSouthText: r.NorthSouthText(),
			EastWestText:   r.EastWestText(),
			RelativeText:   r.RelativeText(),
			ArrowRotation:  heading.Normalize(r.Bearing + v.Rotation.Map),
		}
	}
	return v
}

// recentreDone clears the one-shot first-fix recentre request once a view
// carrying it has been delivered.
func (s *State) recentreDone() { s.recentre = false }
