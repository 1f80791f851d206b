package gps

// GNSS solution labels derived from the horizontal accuracy.
const (
	LabelFix    = "FIX"
	LabelFloat  = "FLOAT"
	LabelSingle = "SINGLE"
)

// Thresholds are the upper accuracy bounds (metres, inclusive) of the
// FIX and FLOAT labels.
type Thresholds struct {
	Fix   float64
	Float float64
}

// DefaultThresholds match RTK receivers: centimetre-level fixed solutions
// stay under 0.5 m, float solutions under 2 m.
var DefaultThresholds = Thresholds{Fix: 0.5, Float: 2.0}

// Label classifies an accuracy.
func (t Thresholds) Label(accuracy float64) string {
	switch {
	case accuracy <= t.Fix:
		return LabelFix
	case accuracy <= t.Float:
		return LabelFloat
	default:
		return LabelSingle
	}
}
