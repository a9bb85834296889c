package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const defaultJob = "authprobe"

// PrometheusExporter writes run metrics to a node_exporter textfile and/or
// pushes them to a Pushgateway.
type PrometheusExporter struct {
	textfile    string
	pushgateway string
	job         string
	client      *http.Client
}

// PrometheusOption is a functional option for PrometheusExporter
type PrometheusOption func(*PrometheusExporter)

// WithTextfile writes metrics to path in the text exposition format.
func WithTextfile(path string) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.textfile = path
	}
}

// WithPushgateway pushes metrics to the Pushgateway at url.
func WithPushgateway(url string) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.pushgateway = url
	}
}

// WithJob sets the Pushgateway job label.
func WithJob(job string) PrometheusOption {
	return func(p *PrometheusExporter) {
		if job != "" {
			p.job = job
		}
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter
func NewPrometheusExporter(opts ...PrometheusOption) *PrometheusExporter {
	p := &PrometheusExporter{
		job:    defaultJob,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PrometheusExporter) Name() string {
	return "prometheus"
}

// Export writes the textfile and pushes to the gateway, whichever are set.
func (p *PrometheusExporter) Export(ctx context.Context, a *Aggregate) error {
	if p.textfile == "" && p.pushgateway == "" {
		return errors.New("no textfile or pushgateway configured")
	}

	reg := Registry(a)

	if p.textfile != "" {
		if err := prometheus.WriteToTextfile(p.textfile, reg); err != nil {
			return err
		}
	}
	if p.pushgateway != "" {
		return push.New(p.pushgateway, p.job).
			Gatherer(reg).
			Client(p.client).
			PushContext(ctx)
	}
	return nil
}

// Registry builds a fresh registry holding the gauges of one run.
func Registry(a *Aggregate) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	checks := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "authprobe_checks",
		Help: "Checks in the last run by result.",
	}, []string{"result"})
	checks.WithLabelValues("passed").Set(float64(a.Passed))
	checks.WithLabelValues("failed").Set(float64(a.Failed))
	checks.WithLabelValues("skipped").Set(float64(a.Skipped))

	successRate := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "authprobe_success_rate_percent",
		Help: "Share of executed checks that passed.",
	})
	successRate.Set(a.SuccessRate)

	runDuration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "authprobe_run_duration_seconds",
		Help: "Wall time of the last run.",
	})
	runDuration.Set(a.Duration.Seconds())

	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "authprobe_last_run_timestamp_seconds",
		Help: "Unix time the last run started.",
	})
	lastRun.Set(float64(a.Timestamp.Unix()))

	requestLatency := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "authprobe_request_duration_seconds",
		Help: "Request latency quantiles of the last run.",
	}, []string{"quantile"})
	if a.Latency.Count > 0 {
		requestLatency.WithLabelValues("0.5").Set(a.Latency.P50.Seconds())
		requestLatency.WithLabelValues("0.95").Set(a.Latency.P95.Seconds())
		requestLatency.WithLabelValues("0.99").Set(a.Latency.P99.Seconds())
		requestLatency.WithLabelValues("1").Set(a.Latency.Max.Seconds())
	}

	responses := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "authprobe_responses",
		Help: "Responses in the last run by HTTP status.",
	}, []string{"status"})
	for code, n := range a.StatusCodes {
		responses.WithLabelValues(strconv.Itoa(code)).Set(float64(n))
	}

	checkPassed := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "authprobe_check_passed",
		Help: "1 when the check passed in the last run, else 0.",
	}, []string{"check"})
	checkDuration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "authprobe_check_duration_seconds",
		Help: "Duration of each check in the last run.",
	}, []string{"check"})
	for _, c := range a.Checks {
		v := 0.0
		if c.Passed {
			v = 1
		}
		checkPassed.WithLabelValues(c.Name).Set(v)
		checkDuration.WithLabelValues(c.Name).Set(c.Duration.Seconds())
	}

	reg.MustRegister(checks, successRate, runDuration, lastRun, requestLatency, responses, checkPassed, checkDuration)
	return reg
}
