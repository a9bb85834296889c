package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/core/runner"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	BaseURL  string       `json:"baseUrl"`
	Summary  JSONSummary  `json:"summary"`
	Latency  *JSONLatency `json:"latency,omitempty"`
	Tests    []JSONTest   `json:"tests"`
	Duration float64      `json:"duration"`
	Time     string       `json:"time"`
}

// JSONSummary represents the test summary
type JSONSummary struct {
	Total       int     `json:"total"`
	Passed      int     `json:"passed"`
	Failed      int     `json:"failed"`
	Skipped     int     `json:"skipped"`
	SuccessRate float64 `json:"successRate"`
}

// JSONLatency holds percentiles in milliseconds
type JSONLatency struct {
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
	P50  float64 `json:"p50"`
	P95  float64 `json:"p95"`
	P99  float64 `json:"p99"`
	Max  float64 `json:"max"`
}

// JSONTest represents a single check
type JSONTest struct {
	Name           string  `json:"name"`
	Passed         bool    `json:"passed"`
	Skipped        bool    `json:"skipped,omitempty"`
	SkipReason     string  `json:"skipReason,omitempty"`
	Message        string  `json:"message,omitempty"`
	Duration       float64 `json:"duration"`
	Error          string  `json:"error,omitempty"`
	Method         string  `json:"method,omitempty"`
	URL            string  `json:"url,omitempty"`
	StatusCode     int     `json:"statusCode,omitempty"`
	ExpectedStatus int     `json:"expectedStatus,omitempty"`
	RequestID      string  `json:"requestId,omitempty"`
	Response       any     `json:"response,omitempty"`
}

// JSONFormatter formats suite results as JSON
type JSONFormatter struct {
	writer  io.Writer
	output  JSONOutput
	results []JSONTest
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		results: make([]JSONTest, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	for _, c := range checks(result) {
		test := JSONTest{
			Name:       c.name,
			Passed:     c.passed(),
			Skipped:    c.skipped,
			SkipReason: c.skipReason,
			Duration:   ms(c.duration()),
		}

		if r := c.result; r != nil {
			test.Message = r.Message
			test.Method = r.Method
			test.URL = r.URL
			test.StatusCode = r.StatusCode
			test.ExpectedStatus = r.ExpectedStatus
			test.RequestID = r.RequestID
			if r.Err != nil {
				test.Error = r.Err.Error()
			}
			if r.ResponseBody != nil {
				test.Response = r.ResponseBody
			}
		}

		f.results = append(f.results, test)
	}

	s := result.Summary
	f.output.BaseURL = result.Session.BaseURL
	f.output.Summary = JSONSummary{
		Total:       s.Total,
		Passed:      s.Passed,
		Failed:      s.Failed,
		Skipped:     s.Skipped,
		SuccessRate: s.SuccessRate,
	}
	if s.Latency.Count > 0 {
		f.output.Latency = &JSONLatency{
			Min:  ms(s.Latency.Min),
			Mean: ms(s.Latency.Mean),
			P50:  ms(s.Latency.P50),
			P95:  ms(s.Latency.P95),
			P99:  ms(s.Latency.P99),
			Max:  ms(s.Latency.Max),
		}
	}
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are included in individual test results
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	out := f.output
	out.Tests = f.results
	out.Duration = ms(totalDuration)
	out.Time = time.Now().Format(time.RFC3339)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
