package metrics

import "github.com/prometheus/client_golang/prometheus"

// Engine and sensor metrics.
var (
	FixesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fixes_total",
		Help:      "Position fixes applied to the navigator state",
	})

	HeadingSamplesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heading_samples_total",
			Help:      "Compass samples received",
		},
		[]string{"result"}, // "applied" / "skipped"
	)

	EventsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Events dropped because the engine queue was full",
	})

	EventErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_errors_total",
			Help:      "Events rejected by the engine",
		},
		[]string{"event"},
	)

	ViewsPublishedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "views_published_total",
		Help:      "View models pushed to subscribers",
	})

	Subscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "subscribers",
		Help:      "Connected view subscribers",
	})

	GuidanceDistance = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "guidance_distance_meters",
		Help:      "Distance to the active target",
	})

	FixAccuracy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fix_accuracy_meters",
		Help:      "Horizontal accuracy of the last fix",
	})

	SensorErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_errors_total",
			Help:      "GNSS sensor errors by kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		FixesTotal,
		HeadingSamplesTotal,
		EventsDroppedTotal,
		EventErrorsTotal,
		ViewsPublishedTotal,
		Subscribers,
		GuidanceDistance,
		FixAccuracy,
		SensorErrorsTotal,
	)
}
