// Package metrics exposes Prometheus metrics for the rendering services.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type BuildInfo struct {
	Version   string
	Revision  string
	Branch    string
	BuildDate string
}

type Config struct {
	Enabled bool
	Addr    string
	Path    string
	Build   BuildInfo
}

type Provider struct {
	reg       *prometheus.Registry
	buildInfo *prometheus.GaugeVec

	JobsSubmitted   prometheus.Counter
	JobsRendered    *prometheus.CounterVec
	RenderDuration  prometheus.Histogram
	IndexFitFailed  prometheus.Counter
	IndexEntryCount prometheus.Histogram
}

func Init(cfg Config) *Provider {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	build := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build info for this binary (value is always 1).",
		},
		[]string{"version", "revision", "branch", "build_date"},
	)
	reg.MustRegister(build)
	v := cfg.Build
	if v.Version == "" {
		v.Version = "dev"
	}
	build.WithLabelValues(v.Version, v.Revision, v.Branch, v.BuildDate).Set(1)

	p := &Provider{reg: reg, buildInfo: build}

	p.JobsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ocitysmap_jobs_submitted_total",
		Help: "Render jobs accepted over the API.",
	})
	p.JobsRendered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ocitysmap_jobs_rendered_total",
		Help: "Render jobs finished by the worker, by outcome.",
	}, []string{"status"})
	p.RenderDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ocitysmap_render_duration_seconds",
		Help:    "Wall time spent rendering one job.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
	p.IndexFitFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ocitysmap_index_fit_failures_total",
		Help: "Street indexes that did not fit their reserved area.",
	})
	p.IndexEntryCount = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ocitysmap_index_entries",
		Help:    "Entries per rendered street index.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 14),
	})
	reg.MustRegister(p.JobsSubmitted, p.JobsRendered, p.RenderDuration, p.IndexFitFailed, p.IndexEntryCount)

	return p
}

func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

func (p *Provider) Register(cs ...prometheus.Collector) {
	for _, c := range cs {
		p.reg.MustRegister(c)
	}
}

func (p *Provider) Registerer() prometheus.Registerer { return p.reg }
