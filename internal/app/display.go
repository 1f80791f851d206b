package app

import (
	"context"
	"fmt"
	"image"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/survey_navigator/internal/config"
	"github.com/relabs-tech/survey_navigator/internal/gps"
	"github.com/relabs-tech/survey_navigator/internal/navigation"
	"github.com/relabs-tech/survey_navigator/internal/survey"
)

const (
	displayWidth  = 128
	displayHeight = 64
	lineHeight    = 13
)

// displayData holds the latest navigator view. Until the first view
// arrives a sensor status alone is shown.
type displayData struct {
	mu     sync.RWMutex
	zone   int
	view   survey.View
	have   bool
	status gps.Status
}

func (d *displayData) setView(v survey.View) {
	d.mu.Lock()
	d.view = v
	d.have = true
	d.mu.Unlock()
}

func (d *displayData) setStatus(st gps.Status) {
	d.mu.Lock()
	d.status = st
	d.mu.Unlock()
}

func (d *displayData) get() (survey.View, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.have {
		return d.view, true
	}
	if d.status.State != "" {
		return survey.View{Zone: d.zone, GPSStatus: d.status}, true
	}
	return survey.View{}, false
}

// displayLines lays out one view for the 128x64 panel. The built-in font
// is ASCII only, so directions use English abbreviations.
func displayLines(v survey.View, have bool) []string {
	if !have {
		return []string{"Survey Nav", "Waiting..."}
	}
	if v.Position == nil {
		state := v.GPSStatus.State
		if state == "" {
			state = "no fix"
		}
		return []string{fmt.Sprintf("Zone %d", v.Zone), "GPS:", state}
	}

	p := v.Position
	quality := fmt.Sprintf("%.2fm %s", p.Accuracy, p.Quality)
	if !v.GPSStatus.OK() && v.GPSStatus.State != "" {
		quality = "GPS " + v.GPSStatus.State
	}

	if v.Mode == survey.ModeNavigate && v.Guidance != nil {
		g := v.Guidance
		side := "STBD"
		if g.Side == navigation.Port {
			side = "PORT"
		}
		return []string{
			fmt.Sprintf("%.2fm %s", g.Distance, strings.ToUpper(string(g.Band))),
			fmt.Sprintf("BRG %03.0f %s", g.Bearing, navigation.CardinalASCII(g.Bearing)),
			fmt.Sprintf("%s %d", side, g.RelativeMagnitude),
			quality,
		}
	}

	return []string{
		"X " + planeText(p.X),
		"Y " + planeText(p.Y),
		quality,
		fmt.Sprintf("Z%d HDG %03.0f", v.Zone, v.EffectiveHeading),
	}
}

func planeText(c *float64) string {
	if c == nil {
		return "--"
	}
	return fmt.Sprintf("%.3f", *c)
}

// renderLines draws up to four text lines into a panel-sized bitmap.
func renderLines(lines []string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		y := lineHeight * (i + 1)
		if y > displayHeight {
			break
		}
		drawer.Dot = fixed.P(0, y)
		drawer.DrawString(line)
	}
	return img
}

func showSplash(dev *ssd1306.Dev) error {
	img := renderLines([]string{"", " Survey Nav", " Looking for", " sats"})
	return dev.Draw(dev.Bounds(), img, image.Point{})
}

// RunDisplay shows the navigator output on an SSD1306 OLED. The panel is
// fed from the guidance topic, so it works with any navigator on the
// broker.
func RunDisplay(ctx context.Context) error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Info().Str("bus", bus.String()).Msg("display initialized")

	if err := showSplash(dev); err != nil {
		log.Warn().Err(err).Msg("display splash error")
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	data := &displayData{zone: cfg.DefaultZone}
	if err := subscribeJSON(client, cfg.TopicGuidance, data.setView); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicGPSStatus, data.setStatus); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.DisplayInterval())
	defer ticker.Stop()

	log.Info().Dur("interval", cfg.DisplayInterval()).Msg("display: starting update loop")

	var last []string
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			lines := displayLines(data.get())
			if slices.Equal(lines, last) {
				continue
			}
			if err := dev.Draw(dev.Bounds(), renderLines(lines), image.Point{}); err != nil {
				log.Warn().Err(err).Msg("display update error")
				continue
			}
			last = lines
		}
	}
}

