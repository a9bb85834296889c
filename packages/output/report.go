package output

import (
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/core/runner"
	"github.com/abdul-hamid-achik/authprobe/packages/core/session"
)

// check is one row in a report: an executed result or a skipped scenario.
type check struct {
	result     *session.TestResult
	name       string
	skipped    bool
	skipReason string
}

func (c check) passed() bool {
	return c.result != nil && c.result.Passed
}

func (c check) duration() time.Duration {
	if c.result == nil {
		return 0
	}
	return c.result.Duration
}

// checks lists executed results followed by skipped scenarios.
func checks(result *runner.RunResult) []check {
	results := result.Session.Results()
	out := make([]check, 0, len(results)+len(result.Skipped))
	for _, r := range results {
		out = append(out, check{result: r, name: r.Name})
	}
	for _, s := range result.Skipped {
		out = append(out, check{name: s.Name, skipped: true, skipReason: s.Reason})
	}
	return out
}
