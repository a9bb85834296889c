package runner

import (
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/core/session"
	"github.com/abdul-hamid-achik/authprobe/packages/latency"
)

// Summary is the end-of-run tally.
type Summary struct {
	Total       int
	Passed      int
	Failed      int
	Skipped     int
	SuccessRate float64
	Failures    []*session.TestResult
	Duration    time.Duration
	Latency     latency.Summary
}

// OK reports whether every executed check passed.
func (s Summary) OK() bool {
	return s.Passed == s.Total
}

func Summarize(s *session.Session, skipped int, duration time.Duration) Summary {
	var durations []time.Duration
	for _, r := range s.Results() {
		if r.Err == nil {
			durations = append(durations, r.Duration)
		}
	}

	return Summary{
		Total:       s.TestsRun(),
		Passed:      s.TestsPassed(),
		Failed:      s.TestsFailed(),
		Skipped:     skipped,
		SuccessRate: s.SuccessRate(),
		Failures:    s.Failures(),
		Duration:    duration,
		Latency:     latency.Summarize(durations),
	}
}
