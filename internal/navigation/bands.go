package navigation

// Band classifies the headline distance for presentation emphasis only.
type Band string

const (
	BandArrived Band = "arrived"
	BandNear    Band = "near"
	BandFar     Band = "far"
)

// Bands holds the proximity thresholds in metres.
type Bands struct {
	Arrived float64
	Near    float64
}

// DefaultBands are the thresholds the survey crews work with: under 1 m
// counts as on station, under 5 m as close.
var DefaultBands = Bands{Arrived: 1, Near: 5}

// Classify returns the band of a distance.
func (b Bands) Classify(distance float64) Band {
	switch {
	case distance < b.Arrived:
		return BandArrived
	case distance < b.Near:
		return BandNear
	default:
		return BandFar
	}
}
