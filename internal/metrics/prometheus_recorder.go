package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "apidocbuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	stageDuration    *prom.HistogramVec
	buildDuration    prom.Histogram
	stageResults     *prom.CounterVec
	buildOutcome     *prom.CounterVec
	parsedFiles      *prom.CounterVec
	parseFailures    *prom.CounterVec
	dropped          *prom.CounterVec
	emittedDocuments *prom.CounterVec
	parseConcurrency prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.parsedFiles = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "parsed_files_total",
			Help:      "Source files parsed per product",
		}, []string{"product"})
		pr.parseFailures = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "parse_failures_total",
			Help:      "Source files that failed to parse and were skipped",
		}, []string{"product"})
		pr.dropped = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "filtered_definitions_total",
			Help:      "Definitions removed by each filter",
		}, []string{"product", "filter"})
		pr.emittedDocuments = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "emitted_documents_total",
			Help:      "Markdown documents written per product",
		}, []string{"product"})
		pr.parseConcurrency = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "parse_concurrency",
			Help:      "Parser concurrency limit of the last build",
		})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
			pr.parsedFiles, pr.parseFailures, pr.dropped, pr.emittedDocuments, pr.parseConcurrency)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}
func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}
func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddParsedFiles(product string, n int) {
	if p == nil || p.parsedFiles == nil {
		return
	}
	p.parsedFiles.WithLabelValues(product).Add(float64(n))
}

func (p *PrometheusRecorder) IncParseFailure(product string) {
	if p == nil || p.parseFailures == nil {
		return
	}
	p.parseFailures.WithLabelValues(product).Inc()
}

func (p *PrometheusRecorder) AddDropped(product, filter string, n int) {
	if p == nil || p.dropped == nil {
		return
	}
	p.dropped.WithLabelValues(product, filter).Add(float64(n))
}

func (p *PrometheusRecorder) AddEmittedDocuments(product string, n int) {
	if p == nil || p.emittedDocuments == nil {
		return
	}
	p.emittedDocuments.WithLabelValues(product).Add(float64(n))
}

func (p *PrometheusRecorder) SetParseConcurrency(n int) {
	if p == nil || p.parseConcurrency == nil {
		return
	}
	p.parseConcurrency.Set(float64(n))
}
