package survey

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/survey_navigator/internal/metrics"
)

type viewReq struct {
	reply chan View
}

type guidanceReq struct {
	reply chan guidanceReply
}

type guidanceReply struct {
	view View
	err  error
}

type subscribeReq struct {
	ch chan View
}

// Engine owns a State and serialises every change to it through one
// goroutine (Run). Producers Submit events; readers take snapshots or
// subscribe to the views published on each frame tick.
type Engine struct {
	settings Settings

	eventCh     chan Event
	viewReqCh   chan viewReq
	guidanceCh  chan guidanceReq
	subscribeCh chan subscribeReq
	unsubCh     chan chan View
	done        chan struct{}

	frameInterval      time.Duration
	diagnosticInterval time.Duration
	now                func() time.Time
}

type Config struct {
	Settings Settings

	// FrameInterval is the render tick. Defaults to 100ms.
	FrameInterval time.Duration
	// DiagnosticInterval throttles the diagnostic log line. Defaults to 1s.
	DiagnosticInterval time.Duration
}

func New(cfg Config) *Engine {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = 100 * time.Millisecond
	}
	if cfg.DiagnosticInterval <= 0 {
		cfg.DiagnosticInterval = time.Second
	}
	if cfg.Settings == (Settings{}) {
		cfg.Settings = DefaultSettings
	}
	return &Engine{
		settings:           cfg.Settings,
		eventCh:            make(chan Event, 256),
		viewReqCh:          make(chan viewReq, 32),
		guidanceCh:         make(chan guidanceReq, 32),
		subscribeCh:        make(chan subscribeReq),
		unsubCh:            make(chan chan View, 32),
		done:               make(chan struct{}),
		frameInterval:      cfg.FrameInterval,
		diagnosticInterval: cfg.DiagnosticInterval,
		now:                time.Now,
	}
}

// Submit queues an event without blocking. When the queue is full the
// event is dropped and false is returned; the next sensor delivery
// supersedes it anyway.
func (e *Engine) Submit(ev Event) bool {
	select {
	case e.eventCh <- ev:
		return true
	default:
		metrics.EventsDroppedTotal.Inc()
		return false
	}
}

// Snapshot returns the current view.
func (e *Engine) Snapshot(ctx context.Context) (View, error) {
	req := viewReq{reply: make(chan View, 1)}
	select {
	case e.viewReqCh <- req:
	case <-ctx.Done():
		return View{}, ctx.Err()
	}

	select {
	case v := <-req.reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

// Guidance returns the current view after checking that both a position
// and a target are present, so callers can tell why guidance is missing.
func (e *Engine) Guidance(ctx context.Context) (View, error) {
	req := guidanceReq{reply: make(chan guidanceReply, 1)}
	select {
	case e.guidanceCh <- req:
	case <-ctx.Done():
		return View{}, ctx.Err()
	}

	select {
	case r := <-req.reply:
		return r.view, r.err
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

// Subscribe registers for views. The current view is delivered first;
// afterwards one view per frame in which something changed. Slow
// subscribers miss frames rather than stall the loop.
func (e *Engine) Subscribe(ctx context.Context) (<-chan View, func()) {
	ch := make(chan View, 32)

	select {
	case e.subscribeCh <- subscribeReq{ch: ch}:
	case <-ctx.Done():
		close(ch)
		return ch, func() {}
	case <-e.done:
		close(ch)
		return ch, func() {}
	}

	// Run closes every subscriber on exit, so an unsubscribe arriving
	// after that has nothing left to do.
	unsub := func() {
		select {
		case e.unsubCh <- ch:
		case <-e.done:
		}
	}
	return ch, unsub
}

// Run is the engine loop. It returns when ctx is cancelled, closing every
// subscriber channel. Run must be called at most once per Engine.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	state := NewState(e.settings)
	subs := map[chan View]struct{}{}

	var last View
	published := false
	var lastDiag time.Time

	publish := func(v View) {
		for ch := range subs {
			select {
			case ch <- v:
			default:
				// slow subscriber -> drop frame
			}
		}
		metrics.ViewsPublishedTotal.Inc()
	}

	tick := time.NewTicker(e.frameInterval)
	defer tick.Stop()

	log.Info().
		Dur("frame_interval", e.frameInterval).
		Int("zone", state.Zone()).
		Msg("survey engine started")

	for {
		select {
		case <-ctx.Done():
			for ch := range subs {
				close(ch)
			}
			metrics.Subscribers.Set(0)
			log.Info().Msg("survey engine stopped")
			return nil

		case req := <-e.subscribeCh:
			subs[req.ch] = struct{}{}
			metrics.Subscribers.Set(float64(len(subs)))
			req.ch <- state.View()

		case ch := <-e.unsubCh:
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
				metrics.Subscribers.Set(float64(len(subs)))
			}

		case req := <-e.viewReqCh:
			req.reply <- state.View()

		case req := <-e.guidanceCh:
			_, err := state.ComputeGuidance()
			req.reply <- guidanceReply{view: state.View(), err: err}

		case ev := <-e.eventCh:
			e.apply(state, ev)

		case <-tick.C:
			v := state.View()
			if !published || !reflect.DeepEqual(v, last) {
				publish(v)
				last = v
				published = true
				if v.Recentre && len(subs) > 0 {
					state.recentreDone()
				}
			}

			now := e.now()
			if now.Sub(lastDiag) >= e.diagnosticInterval {
				lastDiag = now
				logDiagnostic(v)
			}
		}
	}
}

func (e *Engine) apply(state *State, ev Event) {
	if err := ev.apply(state, e.now()); err != nil {
		name := fmt.Sprintf("%T", ev)
		metrics.EventErrorsTotal.WithLabelValues(name).Inc()
		log.Warn().Err(err).Str("event", name).Msg("event rejected")
		return
	}

	switch ev := ev.(type) {
	case FixEvent:
		metrics.FixesTotal.Inc()
		metrics.FixAccuracy.Set(ev.Fix.Accuracy)
	case HeadingEvent:
		if _, ok := ev.Sample.RawHeading(); ok {
			metrics.HeadingSamplesTotal.WithLabelValues("applied").Inc()
		} else {
			metrics.HeadingSamplesTotal.WithLabelValues("skipped").Inc()
		}
	case SensorStatusEvent:
		if !ev.Status.OK() {
			metrics.SensorErrorsTotal.WithLabelValues(ev.Status.State).Inc()
			log.Warn().Str("state", ev.Status.State).Str("message", ev.Status.Message).Msg("gps sensor degraded")
		}
	}

	if g, ok := state.Guidance(); ok {
		metrics.GuidanceDistance.Set(g.Distance)
	}
}

func logDiagnostic(v View) {
	ev := log.Debug().
		Str("mode", string(v.Mode)).
		Str("orientation", string(v.Orientation)).
		Bool("follow", v.Follow).
		Float64("heading", v.Heading).
		Float64("effective_heading", v.EffectiveHeading).
		Float64("map_rotation", v.Rotation.Map).
		Float64("marker_rotation", v.Rotation.Marker).
		Str("pan", string(v.Pan.Kind)).
		Str("gps", v.GPSStatus.State)
	if v.Position != nil {
		ev = ev.Float64("lat", v.Position.Lat).
			Float64("lon", v.Position.Lon).
			Float64("acc", v.Position.Accuracy)
	}
	if v.Guidance != nil {
		ev = ev.Str("distance", v.Guidance.DistanceText).
			Str("relative", v.Guidance.RelativeText)
	}
	ev.Msg("diagnostic")
}
