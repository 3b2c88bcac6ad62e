package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MetricLoadsTotal counts presentation loads by result code.
	MetricLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pptxpalette_loads_total",
		Help: "Total presentation loads by result",
	}, []string{"result"})

	// MetricBuildsTotal counts output builds by result code.
	MetricBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pptxpalette_builds_total",
		Help: "Total output builds by result",
	}, []string{"result"})

	// MetricColorEditsTotal counts slot edits accepted from color controls and scripts.
	MetricColorEditsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pptxpalette_color_edits_total",
		Help: "Total color slot edits",
	})

	// MetricSessionsActive tracks live browser sessions.
	MetricSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pptxpalette_sessions_active",
		Help: "Current browser sessions",
	})
)

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return mapError(err).Code
}
