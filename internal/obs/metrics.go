// Package obs provides the per-collection stage-latency histograms and
// candidate counters C7/C9/C10 emit, adapted from the teacher's
// internal/rag/obs.OtelMetrics adapter.
package obs

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics is the counter/histogram sink every component accepts instead of
// reaching for a global meter.
type Metrics interface {
	IncCounter(name string, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}

// Metric names emitted by the ingestion and query paths.
const (
	MetricDocumentsIndexed  = "aedocs.documents.indexed"
	MetricDocumentsFailed   = "aedocs.documents.failed"
	MetricChunksWritten     = "aedocs.chunks.written"
	MetricIngestStageLatency = "aedocs.ingest.stage_latency_ms"
	MetricQueryCandidates   = "aedocs.query.candidates"
	MetricQueryStageLatency = "aedocs.query.stage_latency_ms"
	MetricRerankFloorDrops  = "aedocs.rerank.floor_drops"
)

// Otel is a thin adapter over OpenTelemetry metrics.
type Otel struct {
	meter metric.Meter

	mu         sync.RWMutex
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
}

// NewOtel constructs an Otel sink using the global MeterProvider under the
// given instrumentation name (spec.md ambient observability, SPEC_FULL.md
// "Per-collection stage latency histograms and candidate counters").
func NewOtel(instrumentationName string) *Otel {
	return &Otel{
		meter:      otel.Meter(instrumentationName),
		counters:   make(map[string]metric.Int64Counter),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

func (o *Otel) IncCounter(name string, labels map[string]string) {
	if o == nil {
		return
	}
	c, ok := o.getCounter(name)
	if !ok {
		return
	}
	c.Add(context.Background(), 1, metric.WithAttributes(toAttrs(labels)...))
}

func (o *Otel) ObserveHistogram(name string, value float64, labels map[string]string) {
	if o == nil {
		return
	}
	h, ok := o.getHistogram(name)
	if !ok {
		return
	}
	h.Record(context.Background(), value, metric.WithAttributes(toAttrs(labels)...))
}

func (o *Otel) getCounter(name string) (metric.Int64Counter, bool) {
	o.mu.RLock()
	c, ok := o.counters[name]
	o.mu.RUnlock()
	if ok {
		return c, true
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if c, ok = o.counters[name]; ok {
		return c, true
	}
	ctr, err := o.meter.Int64Counter(name)
	if err != nil {
		return ctr, false
	}
	o.counters[name] = ctr
	return ctr, true
}

func (o *Otel) getHistogram(name string) (metric.Float64Histogram, bool) {
	o.mu.RLock()
	h, ok := o.histograms[name]
	o.mu.RUnlock()
	if ok {
		return h, true
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if h, ok = o.histograms[name]; ok {
		return h, true
	}
	hist, err := o.meter.Float64Histogram(name)
	if err != nil {
		return hist, false
	}
	o.histograms[name] = hist
	return hist, true
}

func toAttrs(labels map[string]string) []attribute.KeyValue {
	if len(labels) == 0 {
		return nil
	}
	out := make([]attribute.KeyValue, 0, len(labels))
	for k, v := range labels {
		out = append(out, attribute.String(k, v))
	}
	return out
}

// Noop discards every metric; the safe default for components constructed
// without an explicit sink.
type Noop struct{}

func (Noop) IncCounter(string, map[string]string)            {}
func (Noop) ObserveHistogram(string, float64, map[string]string) {}

var _ Metrics = Noop{}
var _ Metrics = (*Otel)(nil)

// Recording is an in-memory Metrics sink for tests.
type Recording struct {
	mu       sync.Mutex
	Counters map[string]int
	Hists    map[string][]float64
}

// NewRecording builds an empty Recording sink.
func NewRecording() *Recording {
	return &Recording{Counters: map[string]int{}, Hists: map[string][]float64{}}
}

func (r *Recording) IncCounter(name string, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counters[name]++
}

func (r *Recording) ObserveHistogram(name string, value float64, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Hists[name] = append(r.Hists[name], value)
}

var _ Metrics = (*Recording)(nil)
