package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mescon/Composelab/internal/domain"
	"github.com/mescon/Composelab/internal/eventbus"
	"github.com/mescon/Composelab/internal/logger"
	"github.com/mescon/Composelab/internal/widgets"
)

// ViewSource supplies the live widget state read by the gauges at scrape time.
type ViewSource interface {
	View() widgets.BoardView
}

// MetricsService exposes Prometheus metrics derived from widget events.
type MetricsService struct {
	eventBus *eventbus.EventBus
	registry *prometheus.Registry

	// Counters
	counterIncrements    prometheus.Counter
	counterResets        prometheus.Counter
	stopwatchTransitions *prometheus.CounterVec
	stopwatchTicks       prometheus.Counter
	colorToggles         *prometheus.CounterVec
	scheduledResets      prometheus.Counter

	// Gauges, evaluated on scrape
	counterValue     prometheus.GaugeFunc
	stopwatchRunning prometheus.GaugeFunc
	stopwatchElapsed prometheus.GaugeFunc
}

// NewMetricsService creates the metrics and registers them on a private
// registry, plus the Go runtime and process collectors. Gauges read src on
// every scrape.
func NewMetricsService(eb *eventbus.EventBus, src ViewSource) *MetricsService {
	m := &MetricsService{
		eventBus: eb,
		registry: prometheus.NewRegistry(),

		counterIncrements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "composelab_counter_increments_total",
			Help: "Total number of counter increments",
		}),
		counterResets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "composelab_counter_resets_total",
			Help: "Total number of counter resets",
		}),
		stopwatchTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "composelab_stopwatch_transitions_total",
				Help: "Total number of stopwatch state transitions",
			},
			[]string{"transition"}, // start, stop, reset
		),
		stopwatchTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "composelab_stopwatch_ticks_total",
			Help: "Total number of applied stopwatch ticks",
		}),
		colorToggles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "composelab_color_toggles_total",
				Help: "Total number of color toggles by resulting color",
			},
			[]string{"color"},
		),
		scheduledResets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "composelab_scheduled_resets_total",
			Help: "Total number of board resets run by the scheduler",
		}),

		counterValue: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "composelab_counter_value",
			Help: "Current counter value",
		}, func() float64 {
			return float64(src.View().Counter.Count)
		}),
		stopwatchRunning: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "composelab_stopwatch_running",
			Help: "1 while the stopwatch is running, 0 otherwise",
		}, func() float64 {
			if src.View().Stopwatch.Running {
				return 1
			}
			return 0
		}),
		stopwatchElapsed: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "composelab_stopwatch_elapsed_seconds",
			Help: "Elapsed seconds shown on the stopwatch",
		}, func() float64 {
			return float64(src.View().Stopwatch.ElapsedSeconds)
		}),
	}

	m.registry.MustRegister(
		m.counterIncrements,
		m.counterResets,
		m.stopwatchTransitions,
		m.stopwatchTicks,
		m.colorToggles,
		m.scheduledResets,
		m.counterValue,
		m.stopwatchRunning,
		m.stopwatchElapsed,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return m
}

// Start subscribes to widget events.
func (m *MetricsService) Start() {
	m.eventBus.Subscribe(domain.CounterIncremented, m.handleCounterIncremented)
	m.eventBus.Subscribe(domain.CounterReset, m.handleCounterReset)
	m.eventBus.Subscribe(domain.StopwatchStarted, m.handleStopwatchTransition("start"))
	m.eventBus.Subscribe(domain.StopwatchStopped, m.handleStopwatchTransition("stop"))
	m.eventBus.Subscribe(domain.StopwatchReset, m.handleStopwatchTransition("reset"))
	m.eventBus.Subscribe(domain.StopwatchTicked, m.handleStopwatchTicked)
	m.eventBus.Subscribe(domain.ColorToggled, m.handleColorToggled)
	m.eventBus.Subscribe(domain.ScheduledReset, m.handleScheduledReset)

	logger.Infof("Metrics service started")
}

// Handler returns the HTTP handler for the /metrics endpoint
func (m *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// Event handlers

func (m *MetricsService) handleCounterIncremented(domain.Event) {
	m.counterIncrements.Inc()
}

func (m *MetricsService) handleCounterReset(domain.Event) {
	m.counterResets.Inc()
}

func (m *MetricsService) handleStopwatchTransition(transition string) func(domain.Event) {
	return func(domain.Event) {
		m.stopwatchTransitions.WithLabelValues(transition).Inc()
	}
}

func (m *MetricsService) handleStopwatchTicked(domain.Event) {
	m.stopwatchTicks.Inc()
}

func (m *MetricsService) handleColorToggled(event domain.Event) {
	m.colorToggles.WithLabelValues(event.GetStringOr("color", "unknown")).Inc()
}

func (m *MetricsService) handleScheduledReset(domain.Event) {
	m.scheduledResets.Inc()
}
