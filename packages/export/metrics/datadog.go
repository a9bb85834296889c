package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"
)

// DataDogExporter submits run metrics to the Datadog series API
type DataDogExporter struct {
	apiKey   string
	site     string // e.g., "datadoghq.com", "datadoghq.eu"
	endpoint string
	tags     []string
	prefix   string
	client   *http.Client
}

// DataDogOption is a functional option for DataDogExporter
type DataDogOption func(*DataDogExporter)

// WithDataDogAPIKey sets the Datadog API key
func WithDataDogAPIKey(apiKey string) DataDogOption {
	return func(d *DataDogExporter) {
		d.apiKey = apiKey
	}
}

// WithDataDogSite sets the Datadog site (e.g., "datadoghq.com", "datadoghq.eu")
func WithDataDogSite(site string) DataDogOption {
	return func(d *DataDogExporter) {
		if site != "" {
			d.site = site
		}
	}
}

// WithDataDogEndpoint overrides the series URL derived from the site.
func WithDataDogEndpoint(url string) DataDogOption {
	return func(d *DataDogExporter) {
		d.endpoint = url
	}
}

// WithDataDogTags sets additional tags for all metrics
func WithDataDogTags(tags []string) DataDogOption {
	return func(d *DataDogExporter) {
		d.tags = tags
	}
}

// NewDataDogExporter creates a new Datadog metrics exporter. The API key
// falls back to DD_API_KEY.
func NewDataDogExporter(opts ...DataDogOption) *DataDogExporter {
	d := &DataDogExporter{
		site:   "datadoghq.com",
		prefix: "authprobe",
		client: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.apiKey == "" {
		d.apiKey = os.Getenv("DD_API_KEY")
	}
	if d.endpoint == "" {
		d.endpoint = fmt.Sprintf("https://api.%s/api/v1/series", d.site)
	}

	return d
}

func (d *DataDogExporter) Name() string {
	return "datadog"
}

type datadogMetric struct {
	Metric string   `json:"metric"`
	Type   string   `json:"type"`
	Points [][]any  `json:"points"`
	Tags   []string `json:"tags,omitempty"`
}

type datadogPayload struct {
	Series []datadogMetric `json:"series"`
}

// Export submits the run as one batch of series
func (d *DataDogExporter) Export(ctx context.Context, a *Aggregate) error {
	if d.apiKey == "" {
		return errors.New("Datadog API key not configured")
	}

	now := float64(a.Timestamp.Unix())
	var series []datadogMetric
	add := func(name, kind string, value float64, extra ...string) {
		series = append(series, datadogMetric{
			Metric: d.prefix + "." + name,
			Type:   kind,
			Points: [][]any{{now, value}},
			Tags:   append(extra, d.tags...),
		})
	}

	add("checks.passed", "gauge", float64(a.Passed))
	add("checks.failed", "gauge", float64(a.Failed))
	add("checks.skipped", "gauge", float64(a.Skipped))
	add("success_rate", "gauge", a.SuccessRate)
	add("run.duration", "gauge", float64(a.Duration.Milliseconds()))

	if a.Latency.Count > 0 {
		add("latency.p50", "gauge", float64(a.Latency.P50.Milliseconds()))
		add("latency.p95", "gauge", float64(a.Latency.P95.Milliseconds()))
		add("latency.p99", "gauge", float64(a.Latency.P99.Milliseconds()))
		add("latency.max", "gauge", float64(a.Latency.Max.Milliseconds()))
	}

	codes := make([]int, 0, len(a.StatusCodes))
	for code := range a.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		add("responses", "count", float64(a.StatusCodes[code]), fmt.Sprintf("status:%d", code))
	}

	for _, c := range a.Checks {
		result := "result:passed"
		if !c.Passed {
			result = "result:failed"
		}
		add("check.duration", "gauge", float64(c.Duration.Milliseconds()), "check:"+c.Name, result)
	}

	return d.send(ctx, series)
}

func (d *DataDogExporter) send(ctx context.Context, series []datadogMetric) error {
	jsonData, err := json.Marshal(datadogPayload{Series: series})
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("DD-API-KEY", d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send metrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("Datadog API returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
