package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/relabs-tech/survey_navigator/internal/config"
	"github.com/relabs-tech/survey_navigator/internal/gps"
	"github.com/relabs-tech/survey_navigator/internal/survey"
)

// consolePrinter formats the MQTT traffic one line per message.
type consolePrinter struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *consolePrinter) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

func (p *consolePrinter) fix(f gps.Fix) {
	course := "   ---"
	if c, ok := f.Course(); ok {
		course = fmt.Sprintf("%6.1f", c)
	}
	p.printf("[FIX]    LAT=%12.8f  LON=%13.8f  ACC=%7.3f  COG=%s  Q=%s\n",
		f.Latitude, f.Longitude, f.Accuracy, course, f.FixQuality)
}

func (p *consolePrinter) status(st gps.Status) {
	if st.Message != "" {
		p.printf("[STATUS] %s (%s)\n", st.State, st.Message)
		return
	}
	p.printf("[STATUS] %s\n", st.State)
}

func (p *consolePrinter) view(v survey.View) {
	if v.Guidance == nil {
		if v.Position == nil {
			p.printf("[VIEW]   mode=%s zone=%d no position\n", v.Mode, v.Zone)
			return
		}
		p.printf("[VIEW]   mode=%s zone=%d X=%s Y=%s HDG=%5.1f\n",
			v.Mode, v.Zone, planeText(v.Position.X), planeText(v.Position.Y), v.EffectiveHeading)
		return
	}
	g := v.Guidance
	p.printf("[GUIDE]  %s  %s  %s  BRG=%5.1f %s  %s  (%s)\n",
		g.DistanceText, g.NorthSouthText, g.EastWestText,
		g.Bearing, g.Cardinal, g.RelativeText, g.Band)
}

// RunConsoleMQTT prints fixes, sensor status and navigator views from
// the broker until ctx is cancelled.
func RunConsoleMQTT(ctx context.Context) error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	p := &consolePrinter{out: os.Stdout}

	if err := subscribeJSON(client, cfg.TopicGPS, p.fix); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicGPSStatus, p.status); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicGuidance, p.view); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}
