package gps

import (
	nmea "github.com/adrianmo/go-nmea"
)

// TypeGST is the GNSS pseudorange error statistics sentence.
const TypeGST = "GST"

// GST carries the 1-sigma position errors of the current solution.
type GST struct {
	nmea.BaseSentence
	Time           nmea.Time
	RMS            float64 // range residual RMS
	MajorError     float64 // error ellipse semi-major axis, metres
	MinorError     float64 // error ellipse semi-minor axis, metres
	Orientation    float64 // error ellipse orientation, degrees from true north
	LatitudeError  float64 // metres
	LongitudeError float64 // metres
	AltitudeError  float64 // metres
}

func newGST(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	p.AssertType(TypeGST)
	return GST{
		BaseSentence:   s,
		Time:           p.Time(0, "time"),
		RMS:            p.Float64(1, "range rms"),
		MajorError:     p.Float64(2, "semi-major error"),
		MinorError:     p.Float64(3, "semi-minor error"),
		Orientation:    p.Float64(4, "error orientation"),
		LatitudeError:  p.Float64(5, "latitude error"),
		LongitudeError: p.Float64(6, "longitude error"),
		AltitudeError:  p.Float64(7, "altitude error"),
	}, p.Err()
}

// sentenceParser is go-nmea with GST registered.
var sentenceParser = nmea.SentenceParser{
	CustomParsers: map[string]nmea.ParserFunc{
		TypeGST: newGST,
	},
}
