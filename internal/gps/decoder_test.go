package gps

import (
	"errors"
	"math"
	"testing"
	"time"
)

const (
	rmcWithCourse = "$GPRMC,123519.00,A,3500.0000,N,13900.0000,E,5.5,84.4,190326,,,A*69"
	rmcNoCourse   = "$GPRMC,123520.00,A,3500.0600,N,13900.0600,E,0.0,,190326,,,A*75"
	rmcVoid       = "$GPRMC,123521.00,V,3500.0000,N,13900.0000,E,0.0,,190326,,,N*6C"
	gstLine       = "$GNGST,123519.00,0.5,0.02,0.01,45.0,0.012,0.016,0.03*44"
	ggaRTK        = "$GPGGA,123519.00,3500.0000,N,13900.0000,E,4,12,0.8,10.0,M,39.0,M,1.0,0000*76"
	ggaSingle     = "$GPGGA,123519.00,3500.0000,N,13900.0000,E,1,08,1.2,10.0,M,39.0,M,,*5C"
)

func TestDecoder_RMCWithCourse(t *testing.T) {
	d := NewDecoder()
	fix, ok, err := d.Feed(rmcWithCourse)
	if err != nil || !ok {
		t.Fatalf("expected fix, got ok=%v err=%v", ok, err)
	}
	if math.Abs(fix.Latitude-35) > 1e-9 || math.Abs(fix.Longitude-139) > 1e-9 {
		t.Errorf("position = %v, %v", fix.Latitude, fix.Longitude)
	}
	course, ok := fix.Course()
	if !ok || course != 84.4 {
		t.Errorf("course = %v, %v", course, ok)
	}
	want := time.Date(2026, 3, 19, 12, 35, 19, 0, time.UTC)
	if !fix.Time().Equal(want) {
		t.Errorf("time = %v, want %v", fix.Time().UTC(), want)
	}
}

func TestDecoder_RMCEmptyCourseIsUnavailable(t *testing.T) {
	d := NewDecoder()
	fix, ok, err := d.Feed(rmcNoCourse)
	if err != nil || !ok {
		t.Fatalf("expected fix, got ok=%v err=%v", ok, err)
	}
	if _, ok := fix.Course(); ok {
		t.Errorf("course should be unavailable, got %v", *fix.CourseDeg)
	}
}

func TestDecoder_VoidRMC(t *testing.T) {
	d := NewDecoder()
	_, ok, err := d.Feed(rmcVoid)
	if ok {
		t.Fatal("void RMC produced a fix")
	}
	var se *SensorError
	if !errors.As(err, &se) || se.Kind != PositionUnavailable {
		t.Fatalf("expected PositionUnavailable, got %v", err)
	}
}

func TestDecoder_GSTAccuracyWins(t *testing.T) {
	d := NewDecoder()
	for _, line := range []string{gstLine, ggaRTK} {
		if _, ok, err := d.Feed(line); ok || err != nil {
			t.Fatalf("%s: ok=%v err=%v", line, ok, err)
		}
	}
	fix, ok, err := d.Feed(rmcWithCourse)
	if err != nil || !ok {
		t.Fatalf("expected fix, got ok=%v err=%v", ok, err)
	}
	if math.Abs(fix.Accuracy-0.02) > 1e-9 {
		t.Errorf("accuracy = %v, want 0.02", fix.Accuracy)
	}
	if fix.FixQuality != "4" {
		t.Errorf("fix quality = %q", fix.FixQuality)
	}
	if DefaultThresholds.Label(fix.Accuracy) != LabelFix {
		t.Errorf("label = %s", DefaultThresholds.Label(fix.Accuracy))
	}
}

func TestSentenceParser_GST(t *testing.T) {
	s, err := sentenceParser.Parse(gstLine)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	gst, ok := s.(GST)
	if !ok {
		t.Fatalf("sentence is %T, want GST", s)
	}
	if gst.TalkerID() != "GN" {
		t.Errorf("talker = %q", gst.TalkerID())
	}
	if gst.LatitudeError != 0.012 || gst.LongitudeError != 0.016 || gst.AltitudeError != 0.03 {
		t.Errorf("errors = %v/%v/%v", gst.LatitudeError, gst.LongitudeError, gst.AltitudeError)
	}
	if !gst.Time.Valid || gst.Time.Hour != 12 || gst.Time.Minute != 35 {
		t.Errorf("time = %+v", gst.Time)
	}

	if _, err := sentenceParser.Parse("$GNGST,123519.00,0.5,x,0.01,45.0,0.012,0.016,0.03*20"); err == nil {
		t.Error("expected an error for a non-numeric field")
	}
}

func TestDecoder_HDOPFallback(t *testing.T) {
	d := NewDecoder()
	if _, _, err := d.Feed(ggaSingle); err != nil {
		t.Fatal(err)
	}
	fix, _, err := d.Feed(rmcWithCourse)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(fix.Accuracy-6.0) > 1e-9 {
		t.Errorf("accuracy = %v, want 1.2*5", fix.Accuracy)
	}
}

func TestDecoder_IgnoresNoise(t *testing.T) {
	d := NewDecoder()
	for _, line := range []string{"", "   ", "garbage", "\x00\x01"} {
		if _, ok, err := d.Feed(line); ok || err != nil {
			t.Errorf("%q: ok=%v err=%v", line, ok, err)
		}
	}
	if _, _, err := d.Feed("$GPRMC,bad*00"); err == nil {
		t.Error("expected parse error for corrupt sentence")
	}
}

func TestThresholds_Label(t *testing.T) {
	tests := []struct {
		acc  float64
		want string
	}{
		{0, LabelFix},
		{0.5, LabelFix},
		{0.500001, LabelFloat},
		{2.0, LabelFloat},
		{2.000001, LabelSingle},
		{30, LabelSingle},
	}
	for _, tc := range tests {
		if got := DefaultThresholds.Label(tc.acc); got != tc.want {
			t.Errorf("Label(%v) = %s, want %s", tc.acc, got, tc.want)
		}
	}
}

func TestFix_Valid(t *testing.T) {
	course := 90.0
	nan, inf := math.NaN(), math.Inf(1)
	tests := []struct {
		name string
		fix  Fix
		want bool
	}{
		{"ok", Fix{Latitude: 35, Longitude: 139, Accuracy: 0.02, CourseDeg: &course}, true},
		{"no course", Fix{Latitude: 35, Longitude: 139}, true},
		{"lat out of range", Fix{Latitude: 90.5, Longitude: 139}, false},
		{"lon out of range", Fix{Latitude: 35, Longitude: -181}, false},
		{"nan lat", Fix{Latitude: nan, Longitude: 139}, false},
		{"negative accuracy", Fix{Latitude: 35, Longitude: 139, Accuracy: -1}, false},
		{"nan accuracy", Fix{Latitude: 35, Longitude: 139, Accuracy: nan}, false},
		{"inf accuracy", Fix{Latitude: 35, Longitude: 139, Accuracy: inf}, false},
		{"nan course", Fix{Latitude: 35, Longitude: 139, CourseDeg: &nan}, false},
		{"inf course", Fix{Latitude: 35, Longitude: 139, CourseDeg: &inf}, false},
	}
	for _, tc := range tests {
		if got := tc.fix.Valid(); got != tc.want {
			t.Errorf("%s: Valid() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestStatusFromError(t *testing.T) {
	now := time.UnixMilli(1000)
	tests := []struct {
		err  error
		want string
	}{
		{&SensorError{Kind: Timeout}, "timeout"},
		{&SensorError{Kind: PermissionDenied}, "permission_denied"},
		{ErrSensorUnavailable, StateUnavailable},
		{errors.New("boom"), "position_unavailable"},
	}
	for _, tc := range tests {
		st := StatusFromError(tc.err, now)
		if st.State != tc.want {
			t.Errorf("%v: state = %s, want %s", tc.err, st.State, tc.want)
		}
		if st.OK() {
			t.Errorf("%v: status reported OK", tc.err)
		}
	}
	if !StatusOK(now).OK() {
		t.Error("StatusOK not OK")
	}
}

func TestClassifyOpenError(t *testing.T) {
	if err := ClassifyOpenError(nil); err != nil {
		t.Fatalf("nil error classified as %v", err)
	}
	_, err := openMissing()
	if !errors.Is(ClassifyOpenError(err), ErrSensorUnavailable) {
		t.Errorf("missing device should be unavailable, got %v", ClassifyOpenError(err))
	}
}
