// Package metrics records validation outcomes as Prometheus metrics.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reoring/skema"
	js "github.com/reoring/skema/jsonschema"
)

// Recorder owns the validation metric vectors. A nil *Recorder records
// nothing.
type Recorder struct {
	outcomes *prometheus.CounterVec
	issues   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder creates the metric vectors under namespace and registers them
// with reg. A nil reg uses prometheus.DefaultRegisterer.
func NewRecorder(reg prometheus.Registerer, namespace string) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "outcomes_total",
				Help:      "Validations by schema and result.",
			},
			[]string{"schema", "result"},
		),
		issues: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "issues_total",
				Help:      "Reported issues by schema and code.",
			},
			[]string{"schema", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "duration_seconds",
				Help:      "Validation duration in seconds.",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"schema"},
		),
	}
	for _, c := range []prometheus.Collector{r.outcomes, r.issues, r.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Result labels.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Observe records one validation of schema. Nested candidate issues are not
// counted; only the top-level codes are.
func (r *Recorder) Observe(schema string, iss skema.Issues, elapsed time.Duration) {
	if r == nil {
		return
	}
	result := ResultValid
	if len(iss) > 0 {
		result = ResultInvalid
	}
	r.outcomes.WithLabelValues(schema, result).Inc()
	for _, it := range iss {
		r.issues.WithLabelValues(schema, it.Code).Inc()
	}
	r.duration.WithLabelValues(schema).Observe(elapsed.Seconds())
}

// ObserveError records a parse that failed for a reason other than issues,
// e.g. a bind error.
func (r *Recorder) ObserveError(schema string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.outcomes.WithLabelValues(schema, ResultError).Inc()
	r.duration.WithLabelValues(schema).Observe(elapsed.Seconds())
}

// Instrument wraps s so that every Validate and Parse call is recorded under
// name.
func Instrument[T any](r *Recorder, name string, s skema.Schema[T]) skema.Schema[T] {
	return instrumented[T]{r: r, name: name, s: s}
}

type instrumented[T any] struct {
	r    *Recorder
	name string
	s    skema.Schema[T]
}

func (i instrumented[T]) Validate(ctx context.Context, v any) skema.Outcome {
	start := time.Now()
	o := i.s.Validate(ctx, v)
	i.r.Observe(i.name, o.Issues, time.Since(start))
	return o
}

func (i instrumented[T]) Parse(ctx context.Context, v any) (T, error) {
	start := time.Now()
	out, err := i.s.Parse(ctx, v)
	i.record(err, time.Since(start))
	return out, err
}

func (i instrumented[T]) ParseWithMeta(ctx context.Context, v any) (skema.Decoded[T], error) {
	start := time.Now()
	out, err := i.s.ParseWithMeta(ctx, v)
	i.record(err, time.Since(start))
	return out, err
}

func (i instrumented[T]) JSONSchema() (*js.Schema, error) { return i.s.JSONSchema() }

func (i instrumented[T]) record(err error, elapsed time.Duration) {
	if err == nil {
		i.r.Observe(i.name, nil, elapsed)
		return
	}
	if iss, ok := skema.AsIssues(err); ok {
		i.r.Observe(i.name, iss, elapsed)
		return
	}
	i.r.ObserveError(i.name, elapsed)
}
