package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "runbuild"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once                sync.Once
	decisions           *prom.CounterVec
	materializeDuration *prom.HistogramVec
	materializeResults  *prom.CounterVec
	filesWritten        *prom.CounterVec
	buildDuration       prom.Histogram
	buildOutcome        *prom.CounterVec
	buildConcurrency    prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.decisions = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "gate_decisions_total",
			Help:      "Incremental build gate verdicts by reason",
		}, []string{"verdict", "reason"})
		pr.materializeDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "materialize_duration_seconds",
			Help:      "Duration of runnable output materialization",
			Buckets:   prom.DefBuckets,
		}, []string{"kind"})
		pr.materializeResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "materialize_results_total",
			Help:      "Materialization results by framework kind and outcome",
		}, []string{"kind", "result"})
		pr.filesWritten = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "materialize_files_written_total",
			Help:      "Files written into runnable output trees",
		}, []string{"kind"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total project build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Project build outcomes by final status",
		}, []string{"outcome"})
		pr.buildConcurrency = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "build_concurrency",
			Help:      "Worker count of the last multi-project build",
		})
		reg.MustRegister(pr.decisions, pr.materializeDuration, pr.materializeResults,
			pr.filesWritten, pr.buildDuration, pr.buildOutcome, pr.buildConcurrency)
	})
	return pr
}

func (p *PrometheusRecorder) IncDecision(verdict, reason string) {
	if p == nil || p.decisions == nil {
		return
	}
	p.decisions.WithLabelValues(verdict, reason).Inc()
}

func (p *PrometheusRecorder) ObserveMaterializeDuration(kind string, d time.Duration) {
	if p == nil || p.materializeDuration == nil {
		return
	}
	p.materializeDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncMaterializeResult(kind string, result ResultLabel) {
	if p == nil || p.materializeResults == nil {
		return
	}
	p.materializeResults.WithLabelValues(kind, string(result)).Inc()
}

func (p *PrometheusRecorder) AddFilesWritten(kind string, n int) {
	if p == nil || p.filesWritten == nil || n <= 0 {
		return
	}
	p.filesWritten.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetBuildConcurrency(n int) {
	if p == nil || p.buildConcurrency == nil {
		return
	}
	p.buildConcurrency.Set(float64(n))
}
