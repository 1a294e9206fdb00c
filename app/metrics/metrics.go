// Package metrics exposes Prometheus collectors for the resolve pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RendersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagegen_renders_total",
		Help: "Total number of post render attempts.",
	})

	RenderFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagegen_render_failures_total",
		Help: "Total number of failed post renders.",
	})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagegen_cache_hits_total",
		Help: "Total number of page requests served from the resolve cache.",
	})

	PagesBuilt = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pagegen_pages_built",
		Help: "Number of pages produced by the last build.",
	})

	LastBuildDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pagegen_last_build_duration_seconds",
		Help: "Wall-clock duration of the last build.",
	})
)
