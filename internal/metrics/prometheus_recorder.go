package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	loadDuration       *prom.HistogramVec
	loadResults        *prom.CounterVec
	validationFailures *prom.CounterVec
	plugins            prom.Gauge
	socialLinks        prom.Gauge
}

// NewPrometheusRecorder constructs the recorder and registers its collectors with reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		loadDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "siteconfig",
			Name:      "load_duration_seconds",
			Help:      "Duration of configuration loads including validation",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"source"}),
		loadResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "siteconfig",
			Name:      "load_results_total",
			Help:      "Configuration loads by source and result",
		}, []string{"source", "result"}),
		validationFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "siteconfig",
			Name:      "validation_failures_total",
			Help:      "Validation failures by offending field",
		}, []string{"field"}),
		plugins: prom.NewGauge(prom.GaugeOpts{
			Namespace: "siteconfig",
			Name:      "plugins",
			Help:      "Number of plugins in the last valid configuration",
		}),
		socialLinks: prom.NewGauge(prom.GaugeOpts{
			Namespace: "siteconfig",
			Name:      "social_links",
			Help:      "Number of social links in the last valid configuration",
		}),
	}
	reg.MustRegister(pr.loadDuration, pr.loadResults, pr.validationFailures, pr.plugins, pr.socialLinks)
	return pr
}

func (p *PrometheusRecorder) ObserveLoad(source string, d time.Duration, result ResultLabel) {
	p.loadDuration.WithLabelValues(source).Observe(d.Seconds())
	p.loadResults.WithLabelValues(source, string(result)).Inc()
}

func (p *PrometheusRecorder) IncValidationFailure(field string) {
	p.validationFailures.WithLabelValues(FieldLabel(field)).Inc()
}

func (p *PrometheusRecorder) SetPlugins(n int)     { p.plugins.Set(float64(n)) }
func (p *PrometheusRecorder) SetSocialLinks(n int) { p.socialLinks.Set(float64(n)) }
