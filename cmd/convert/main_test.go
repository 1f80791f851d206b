package main

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func opts(zone int, toGeo bool, format, a, b string) Options {
	var o Options
	o.Zone = zone
	o.ToGeo = toGeo
	o.Format = format
	o.Args.First = a
	o.Args.Second = b
	return o
}

func TestRun_ZoneOriginIsZero(t *testing.T) {
	var sb strings.Builder
	if err := run(opts(9, false, "text", "36", "139.8333333333"), &sb); err != nil {
		t.Fatalf("run: %v", err)
	}
	fields := strings.Fields(sb.String())
	if len(fields) != 2 {
		t.Fatalf("output = %q", sb.String())
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.Abs(v) > 1e-3 {
			t.Errorf("origin coordinate = %q", f)
		}
	}
}

func TestRun_RoundTripJSON(t *testing.T) {
	var sb strings.Builder
	if err := run(opts(9, false, "json", "35.6812", "139.7671"), &sb); err != nil {
		t.Fatalf("to plane: %v", err)
	}
	var plane result
	if err := json.Unmarshal([]byte(sb.String()), &plane); err != nil {
		t.Fatalf("decode: %v", err)
	}

	sb.Reset()
	x := strings.TrimSpace(formatFloat(plane.X))
	y := strings.TrimSpace(formatFloat(plane.Y))
	if err := run(opts(9, true, "yaml", x, y), &sb); err != nil {
		t.Fatalf("to geo: %v", err)
	}
	var geo result
	if err := yaml.Unmarshal([]byte(sb.String()), &geo); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if d := geo.Lat - 35.6812; d > 1e-8 || d < -1e-8 {
		t.Errorf("lat = %v", geo.Lat)
	}
	if d := geo.Lon - 139.7671; d > 1e-8 || d < -1e-8 {
		t.Errorf("lon = %v", geo.Lon)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		o    Options
	}{
		{"missing args", opts(9, false, "text", "35", "")},
		{"bad number", opts(9, false, "text", "abc", "139")},
		{"bad zone", opts(20, false, "text", "35", "139")},
		{"bad zone to geo", opts(0, true, "text", "0", "0")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := run(tc.o, &strings.Builder{}); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRun_ListZones(t *testing.T) {
	var sb strings.Builder
	o := opts(9, false, "text", "", "")
	o.List = true
	if err := run(o, &sb); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 19 {
		t.Fatalf("listed %d zones, want 19", len(lines))
	}
	if !strings.Contains(lines[8], "第IX系") {
		t.Errorf("zone 9 line = %q", lines[8])
	}
}

func formatFloat(v float64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
