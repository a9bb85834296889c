package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/authprobe/packages/core/runner"
	"github.com/abdul-hamid-achik/authprobe/packages/core/session"
	"github.com/abdul-hamid-achik/authprobe/packages/http"
	"github.com/fatih/color"
)

const ruleWidth = 60

// ConsoleFormatter prints live progress as a runner.Listener and the final
// summary through FormatResult.
type ConsoleFormatter struct {
	writer    io.Writer
	errWriter io.Writer
	verbose   bool
	quiet     bool
	noColor   bool
}

var _ runner.Listener = (*ConsoleFormatter)(nil)

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer:    os.Stdout,
		errWriter: os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

// WithErrWriter sets where warnings go.
func WithErrWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.errWriter = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

// WithQuiet suppresses progress output. The summary is still printed.
func WithQuiet(q bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.quiet = q
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) SuiteStarted(baseURL string) {
	if f.quiet {
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s\n", bold("🚀 Starting Tracker Pro Backend API Tests"))
	fmt.Fprintf(f.writer, "Base URL: %s\n", baseURL)
	fmt.Fprintln(f.writer, strings.Repeat("=", ruleWidth))
}

func (f *ConsoleFormatter) RequestStarted(name, method, url string, payload any) {
	if f.quiet {
		return
	}
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(f.writer, "\n%s\n", cyan(fmt.Sprintf("🔍 Testing %s...", name)))
	fmt.Fprintf(f.writer, "   URL: %s\n", url)
	fmt.Fprintf(f.writer, "   Method: %s\n", method)
	if payload != nil {
		fmt.Fprintf(f.writer, "   Data: %s\n", runner.PrettyPayload(payload))
	}
}

func (f *ConsoleFormatter) ResponseReceived(resp *http.Response, body *http.Body) {
	if f.quiet {
		return
	}
	fmt.Fprintf(f.writer, "   Response Status: %d\n", resp.StatusCode)
	if f.verbose && resp.RequestID != "" {
		fmt.Fprintf(f.writer, "   Request ID: %s (%dms)\n", resp.RequestID, resp.DurationMs())
	}
	if body.IsParsed() {
		fmt.Fprintf(f.writer, "   Response: %s\n", body.Indented())
	} else {
		fmt.Fprintf(f.writer, "   Raw Response: %s\n", body.Text())
	}
}

func (f *ConsoleFormatter) RequestFailed(err error) {
	if f.quiet {
		return
	}
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "   %s Request failed: %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) ResultRecorded(r *session.TestResult) {
	if f.quiet {
		return
	}
	if r.Passed {
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(f.writer, "%s\n", green(fmt.Sprintf("✅ %s: PASSED - %s", r.Name, r.Message)))
		return
	}
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s\n", red(fmt.Sprintf("❌ %s: FAILED - %s", r.Name, r.Message)))
}

func (f *ConsoleFormatter) ScenarioSkipped(name, reason string) {
	if f.quiet {
		return
	}
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(f.writer, "%s\n", yellow("⚠️  "+reason))
}

// Note prints progress notes. Notes starting with "warning:" go to the error
// writer even in quiet mode.
func (f *ConsoleFormatter) Note(msg string) {
	if strings.HasPrefix(msg, "warning:") {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(f.errWriter, "%s\n", yellow(msg))
		return
	}
	if f.quiet {
		return
	}
	fmt.Fprintf(f.writer, "   ✅ %s\n", msg)
}

// FormatResult prints the end-of-run summary.
func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	f.FormatSummary(result.Summary)
}

func (f *ConsoleFormatter) FormatSummary(s runner.Summary) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(f.writer, "\n%s\n", rule)
	fmt.Fprintf(f.writer, "%s\n", bold("📊 TEST SUMMARY"))
	fmt.Fprintln(f.writer, rule)
	fmt.Fprintf(f.writer, "Total Tests: %d\n", s.Total)
	fmt.Fprintf(f.writer, "Passed: %s\n", green(s.Passed))
	fmt.Fprintf(f.writer, "Failed: %s\n", red(s.Failed))
	if s.Skipped > 0 {
		fmt.Fprintf(f.writer, "Skipped: %s\n", yellow(s.Skipped))
	}
	fmt.Fprintf(f.writer, "Success Rate: %.1f%%\n", s.SuccessRate)

	if f.verbose && s.Latency.Count > 0 {
		fmt.Fprintf(f.writer, "Latency: p50=%dms p95=%dms p99=%dms max=%dms\n",
			s.Latency.P50.Milliseconds(), s.Latency.P95.Milliseconds(),
			s.Latency.P99.Milliseconds(), s.Latency.Max.Milliseconds())
		fmt.Fprintf(f.writer, "Time: %dms\n", s.Duration.Milliseconds())
	}

	if len(s.Failures) > 0 {
		fmt.Fprintf(f.writer, "\n%s\n", red("❌ FAILED TESTS:"))
		for _, r := range s.Failures {
			fmt.Fprintf(f.writer, "   • %s: %s\n", r.Name, r.Message)
		}
	}

	fmt.Fprintf(f.writer, "\n%s\n", rule)
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.errWriter, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	if f.quiet {
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("🔧 authprobe"), version)
}
