package output

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/core/runner"
)

// HTMLOutput represents the complete HTML output structure
type HTMLOutput struct {
	Version        string
	BaseURL        string
	Summary        HTMLSummary
	Tests          []HTMLTest
	Duration       float64
	Time           string
	PassedPercent  float64
	FailedPercent  float64
	SkippedPercent float64
}

// HTMLSummary represents the test summary for HTML output
type HTMLSummary struct {
	Total       int
	Passed      int
	Failed      int
	Skipped     int
	SuccessRate float64
}

// HTMLTest represents a single check for HTML output
type HTMLTest struct {
	Name           string
	Passed         bool
	Skipped        bool
	SkipReason     string
	Message        string
	Duration       float64
	Error          string
	StatusClass    string
	Method         string
	URL            string
	StatusCode     int
	ExpectedStatus int
	Response       string
}

// HTMLFormatter formats suite results as HTML
type HTMLFormatter struct {
	writer  io.Writer
	results []HTMLTest
	summary HTMLSummary
	baseURL string
	version string
}

// HTMLOption is a functional option for HTMLFormatter
type HTMLOption func(*HTMLFormatter)

// NewHTMLFormatter creates a new HTML formatter
func NewHTMLFormatter(opts ...HTMLOption) *HTMLFormatter {
	f := &HTMLFormatter{
		writer:  os.Stdout,
		results: make([]HTMLTest, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// HTMLWithWriter sets the output writer
func HTMLWithWriter(w io.Writer) HTMLOption {
	return func(f *HTMLFormatter) {
		f.writer = w
	}
}

// FormatResult accumulates a suite result
func (f *HTMLFormatter) FormatResult(result *runner.RunResult) {
	for _, c := range checks(result) {
		test := HTMLTest{
			Name:       c.name,
			Passed:     c.passed(),
			Skipped:    c.skipped,
			SkipReason: c.skipReason,
			Duration:   float64(c.duration().Milliseconds()),
		}

		// Set status class for CSS
		switch {
		case c.skipped:
			test.StatusClass = "skipped"
		case test.Passed:
			test.StatusClass = "passed"
		default:
			test.StatusClass = "failed"
		}

		if r := c.result; r != nil {
			test.Message = r.Message
			test.Method = r.Method
			test.URL = r.URL
			test.StatusCode = r.StatusCode
			test.ExpectedStatus = r.ExpectedStatus
			if r.Err != nil {
				test.Error = r.Err.Error()
			}
			if r.ResponseBody != nil {
				test.Response = r.ResponseBody.Indented()
			}
		}

		f.results = append(f.results, test)
	}

	s := result.Summary
	f.baseURL = result.Session.BaseURL
	f.summary = HTMLSummary{
		Total:       s.Total,
		Passed:      s.Passed,
		Failed:      s.Failed,
		Skipped:     s.Skipped,
		SuccessRate: s.SuccessRate,
	}
}

// FormatError handles errors (no-op for HTML, errors are in test results)
func (f *HTMLFormatter) FormatError(err error) {
	// Errors are included in individual test results
}

// FormatHeader captures the version for the HTML report
func (f *HTMLFormatter) FormatHeader(version string) {
	f.version = version
}

// Flush writes the accumulated HTML output
func (f *HTMLFormatter) Flush(totalDuration time.Duration) error {
	rows := len(f.results)
	var passedPct, failedPct, skippedPct float64
	if rows > 0 {
		passedPct = float64(f.summary.Passed) / float64(rows) * 100
		failedPct = float64(f.summary.Failed) / float64(rows) * 100
		skippedPct = float64(f.summary.Skipped) / float64(rows) * 100
	}

	output := HTMLOutput{
		Version:        f.version,
		BaseURL:        f.baseURL,
		Summary:        f.summary,
		Tests:          f.results,
		Duration:       float64(totalDuration.Milliseconds()),
		Time:           time.Now().Format("2006-01-02 15:04:05"),
		PassedPercent:  passedPct,
		FailedPercent:  failedPct,
		SkippedPercent: skippedPct,
	}

	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}

	return tmpl.Execute(f.writer, output)
}
