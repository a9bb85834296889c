// Package metrics exports run metrics to monitoring systems: Prometheus
// (textfile collector or Pushgateway) and Datadog.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/core/runner"
	"github.com/abdul-hamid-achik/authprobe/packages/latency"
)

// Aggregate is the metric view of one suite run.
type Aggregate struct {
	BaseURL     string
	Total       int
	Passed      int
	Failed      int
	Skipped     int
	SuccessRate float64
	Duration    time.Duration
	Latency     latency.Summary
	StatusCodes map[int]int
	Checks      []CheckMetric
	Timestamp   time.Time
}

// CheckMetric is one executed check. StatusCode is 0 when no response
// arrived.
type CheckMetric struct {
	Name       string
	Passed     bool
	StatusCode int
	Duration   time.Duration
}

// FromRunResult aggregates a finished run.
func FromRunResult(result *runner.RunResult, at time.Time) *Aggregate {
	sum := result.Summary
	a := &Aggregate{
		BaseURL:     result.Session.BaseURL,
		Total:       sum.Total,
		Passed:      sum.Passed,
		Failed:      sum.Failed,
		Skipped:     sum.Skipped,
		SuccessRate: sum.SuccessRate,
		Duration:    result.Duration,
		Latency:     sum.Latency,
		StatusCodes: make(map[int]int),
		Timestamp:   at,
	}
	for _, r := range result.Session.Results() {
		if r.StatusCode > 0 {
			a.StatusCodes[r.StatusCode]++
		}
		a.Checks = append(a.Checks, CheckMetric{
			Name:       r.Name,
			Passed:     r.Passed,
			StatusCode: r.StatusCode,
			Duration:   r.Duration,
		})
	}
	return a
}

// Exporter is the interface for metrics exporters
type Exporter interface {
	// Export sends the run metrics to the target destination
	Export(ctx context.Context, a *Aggregate) error

	// Name returns the name of the exporter
	Name() string
}

// Collector fans a run out to several exporters.
type Collector struct {
	exporters []Exporter
}

// NewCollector creates a new metrics collector
func NewCollector(exporters ...Exporter) *Collector {
	return &Collector{exporters: exporters}
}

func (c *Collector) Add(e Exporter) {
	c.exporters = append(c.exporters, e)
}

func (c *Collector) Len() int {
	return len(c.exporters)
}

// Export runs every exporter and joins their errors.
func (c *Collector) Export(ctx context.Context, a *Aggregate) error {
	var errs []error
	for _, exp := range c.exporters {
		if err := exp.Export(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", exp.Name(), err))
		}
	}
	return errors.Join(errs...)
}
