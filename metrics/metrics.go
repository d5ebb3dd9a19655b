package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Measure starts a timer and returns the func that records it.
func Measure(m prometheus.Observer) func() {
	start := time.Now()
	return func() {
		m.Observe(time.Since(start).Seconds())
	}
}

var (
	EventsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "perchbot_events_total",
		Help: "The total number of IRC events handled, by command",
	}, []string{"event"})

	PluginFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "perchbot_plugin_failures_total",
		Help: "The total number of plugin handlers that returned an error or panicked",
	}, []string{"plugin"})

	CommandsRun = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "perchbot_commands_total",
		Help: "The total number of commands run, by outcome",
	}, []string{"command", "outcome"})

	CommandsDenied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "perchbot_commands_denied_total",
		Help: "The total number of commands refused for lack of permission",
	})

	CommandsFlooded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "perchbot_commands_flooded_total",
		Help: "The total number of commands dropped by the flood gate",
	})

	DurCommand = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "perchbot_command_duration_seconds",
		Help: "The time to run a command",
	})

	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "perchbot_permission_resolutions_total",
		Help: "The total number of permission resolutions, by outcome",
	}, []string{"outcome"})

	DurResolve = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "perchbot_permission_resolve_seconds",
		Help: "The time to resolve a permission level",
	})

	JobsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "perchbot_jobs_active",
		Help: "The number of long-running jobs in progress",
	})

	JobsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "perchbot_jobs_busy_total",
		Help: "The total number of long-running jobs rejected because one was already running",
	})

	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "perchbot_messages_sent_total",
		Help: "The total number of messages sent by the bot",
	})
)
