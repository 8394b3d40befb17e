package app

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/facilitator"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/mixer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"strconv"
)

const metricsNamespace = "beat"

type metrics struct {
	registry *prometheus.Registry

	CommandsTotal *prometheus.CounterVec
}

func newMetrics(f *facilitator.Facilitator, m *mixer.Mixer) *metrics {
	registry := prometheus.NewRegistry()

	commandsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "commands_total",
			Help:      "Total number of host commands received over HTTP",
		},
		[]string{"command", "status"},
	)

	registry.MustRegister(
		commandsTotal,
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "item_elapsed_minutes",
				Help:      "Minutes the current agenda item is running",
			},
			func() float64 { return f.Snapshot().ElapsedMinutes },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "meeting_overtime_minutes",
				Help:      "Cumulative overtime of all completed agenda items",
			},
			func() float64 { return f.Snapshot().MeetingOvertime },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "meeting_current_item",
				Help:      "Index of the current agenda item, -1 if there is none",
			},
			func() float64 {
				s := f.Snapshot()
				if _, ok := s.CurrentState(); !ok {
					return -1
				}
				return float64(s.CurrentItemIndex)
			},
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "mixer_sources",
				Help:      "Number of attached audio sources",
			},
			func() float64 { return float64(len(m.Sources())) },
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "mixer_dropped_frames_total",
				Help:      "Mixed frames dropped because nobody consumed them in time",
			},
			func() float64 { return float64(m.Dropped()) },
		),
	)

	return &metrics{
		registry:      registry,
		CommandsTotal: commandsTotal,
	}
}

func (this *metrics) command(command string, status int) {
	this.CommandsTotal.WithLabelValues(command, strconv.Itoa(status)).Inc()
}

func (this *metrics) Handler() http.Handler {
	return promhttp.HandlerFor(this.registry, promhttp.HandlerOpts{})
}
