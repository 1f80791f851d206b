package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/relabs-tech/survey_navigator/internal/config"
	"github.com/relabs-tech/survey_navigator/internal/gps"
)

const (
	testRMC     = "$GPRMC,123519.00,A,3500.0000,N,13900.0000,E,5.5,84.4,190326,,,A*69\r\n"
	testRMCVoid = "$GPRMC,123521.00,V,3500.0000,N,13900.0000,E,0.0,,190326,,,N*6C\r\n"
)

type published struct {
	topic    string
	retained bool
	v        any
}

func newTestRelay(t *testing.T) (*gpsRelay, *[]published, *time.Time) {
	t.Helper()
	cfg := config.Defaults()
	var out []published
	relay := newGPSRelay(cfg, func(topic string, retained bool, v any) error {
		out = append(out, published{topic, retained, v})
		return nil
	})
	now := time.Date(2026, 3, 19, 12, 35, 19, 0, time.UTC)
	relay.now = func() time.Time { return now }
	return relay, &out, &now
}

func TestGPSRelay_PublishesFixAndStatusOnce(t *testing.T) {
	relay, out, _ := newTestRelay(t)
	cfg := config.Defaults()

	relay.handleLine(testRMC)
	relay.handleLine(testRMC)

	var fixes, statuses int
	for _, p := range *out {
		switch p.topic {
		case cfg.TopicGPS:
			fixes++
			if _, ok := p.v.(gps.Fix); !ok {
				t.Errorf("fix payload is %T", p.v)
			}
		case cfg.TopicGPSStatus:
			statuses++
			if st := p.v.(gps.Status); !st.OK() {
				t.Errorf("status = %+v, want ok", st)
			}
		}
		if !p.retained {
			t.Errorf("%s published without retain", p.topic)
		}
	}
	if fixes != 2 || statuses != 1 {
		t.Errorf("fixes=%d statuses=%d, want 2 and 1", fixes, statuses)
	}
}

func TestGPSRelay_VoidPositionReportsStatus(t *testing.T) {
	relay, out, _ := newTestRelay(t)

	relay.handleLine(testRMCVoid)
	if len(*out) != 1 {
		t.Fatalf("published %d messages, want 1", len(*out))
	}
	st := (*out)[0].v.(gps.Status)
	if st.State != string(gps.PositionUnavailable) {
		t.Errorf("state = %q", st.State)
	}

	relay.handleLine(testRMC)
	last := (*out)[len(*out)-1]
	if last.topic != config.Defaults().TopicGPS {
		t.Errorf("last topic = %q, want fix topic", last.topic)
	}
}

func TestGPSRelay_IgnoresNoise(t *testing.T) {
	relay, out, _ := newTestRelay(t)
	relay.handleLine("garbage\r\n")
	relay.handleLine("$GPRMC,bad*00\r\n")
	if len(*out) != 0 {
		t.Errorf("noise published %d messages", len(*out))
	}
}

func TestGPSRelay_WatchdogTimeout(t *testing.T) {
	relay, out, now := newTestRelay(t)

	relay.handleLine(testRMC)
	n := len(*out)

	*now = now.Add(5 * time.Second)
	relay.checkTimeout(10 * time.Second)
	if len(*out) != n {
		t.Fatal("timeout reported before the limit")
	}

	*now = now.Add(6 * time.Second)
	relay.checkTimeout(10 * time.Second)
	if len(*out) != n+1 {
		t.Fatalf("published %d messages, want %d", len(*out), n+1)
	}
	if st := (*out)[n].v.(gps.Status); st.State != string(gps.Timeout) {
		t.Errorf("state = %q, want timeout", st.State)
	}

	// Repeated checks keep the same state and stay quiet.
	relay.checkTimeout(10 * time.Second)
	if len(*out) != n+1 {
		t.Error("timeout status republished")
	}
}

func TestGPSRelay_RunStopsAtEOF(t *testing.T) {
	relay, out, _ := newTestRelay(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	src := strings.NewReader(testRMC + testRMC)
	if err := relay.run(ctx, src, 0); err != nil {
		t.Fatalf("run: %v", err)
	}
	var fixes int
	for _, p := range *out {
		if _, ok := p.v.(gps.Fix); ok {
			fixes++
		}
	}
	if fixes != 2 {
		t.Errorf("fixes = %d, want 2", fixes)
	}
}

func TestGPSRelay_WatchdogWaitsForFirstCheck(t *testing.T) {
	relay, out, now := newTestRelay(t)
	relay.checkTimeout(time.Second)
	*now = now.Add(500 * time.Millisecond)
	relay.checkTimeout(time.Second)
	if len(*out) != 0 {
		t.Fatal("timeout reported before the limit elapsed")
	}
	*now = now.Add(time.Second)
	relay.checkTimeout(time.Second)
	if len(*out) != 1 {
		t.Fatalf("published %d messages, want 1", len(*out))
	}
}
