package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/survey_navigator/internal/config"
	"github.com/relabs-tech/survey_navigator/internal/gps"
)

type publishFunc func(topic string, retained bool, v any) error

// gpsRelay turns NMEA lines into fix and status messages. Status is only
// published when it changes.
type gpsRelay struct {
	dec         *gps.Decoder
	publish     publishFunc
	topicFix    string
	topicStatus string
	now         func() time.Time

	lastFix   time.Time
	lastState string
}

func newGPSRelay(cfg *config.Config, publish publishFunc) *gpsRelay {
	return &gpsRelay{
		dec:         gps.NewDecoder(),
		publish:     publish,
		topicFix:    cfg.TopicGPS,
		topicStatus: cfg.TopicGPSStatus,
		now:         time.Now,
	}
}

func (r *gpsRelay) handleLine(line string) {
	fix, ok, err := r.dec.Feed(line)
	if err != nil {
		var se *gps.SensorError
		if errors.As(err, &se) {
			r.setStatus(gps.StatusFromError(err, r.now()))
			return
		}
		log.Debug().Err(err).Str("line", line).Msg("NMEA parse error")
		return
	}
	if !ok {
		return
	}

	r.lastFix = r.now()
	r.setStatus(gps.StatusOK(r.lastFix))
	if err := r.publish(r.topicFix, true, fix); err != nil {
		log.Warn().Err(err).Msg("GPS publish error")
		return
	}
	log.Debug().
		Float64("lat", fix.Latitude).
		Float64("lon", fix.Longitude).
		Float64("acc", fix.Accuracy).
		Msg("published GPS fix")
}

// checkTimeout reports a timeout once no fix has arrived for limit.
func (r *gpsRelay) checkTimeout(limit time.Duration) {
	if limit <= 0 {
		return
	}
	now := r.now()
	if r.lastFix.IsZero() {
		// The first check starts the clock.
		r.lastFix = now
		return
	}
	if now.Sub(r.lastFix) < limit {
		return
	}
	err := &gps.SensorError{Kind: gps.Timeout, Err: fmt.Errorf("no fix for %s", limit)}
	r.setStatus(gps.StatusFromError(err, now))
}

func (r *gpsRelay) setStatus(st gps.Status) {
	if st.State == r.lastState {
		return
	}
	r.lastState = st.State
	if err := r.publish(r.topicStatus, true, st); err != nil {
		log.Warn().Err(err).Msg("GPS status publish error")
		return
	}
	if st.OK() {
		log.Info().Msg("GPS delivering fixes")
	} else {
		log.Warn().Str("state", st.State).Str("message", st.Message).Msg("GPS degraded")
	}
}

// run reads lines until the reader fails or ctx ends, checking the
// watchdog every second.
func (r *gpsRelay) run(ctx context.Context, src io.Reader, watchdog time.Duration) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(src)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				readErr <- err
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line := <-lines:
			r.handleLine(line)
		case <-tick.C:
			r.checkTimeout(watchdog)
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("GPS read: %w", err)
		}
	}
}

// RunGPSProducer opens the GPS serial port, decodes NMEA sentences and
// publishes fixes and sensor status as JSON to MQTT.
func RunGPSProducer(ctx context.Context) error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDGPS)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	relay := newGPSRelay(cfg, func(topic string, retained bool, v any) error {
		return publishJSON(client, topic, retained, v)
	})

	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPSSerialPort,
		BaudRate:              uint(cfg.GPSBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		err = gps.ClassifyOpenError(err)
		relay.setStatus(gps.StatusFromError(err, time.Now()))
		return fmt.Errorf("open GPS port %s: %w", cfg.GPSSerialPort, err)
	}
	defer port.Close()
	log.Info().Str("port", cfg.GPSSerialPort).Int("baud", cfg.GPSBaudRate).Msg("GPS serial port opened")

	return relay.run(ctx, port, cfg.GPSWatchdog())
}
