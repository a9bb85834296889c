// Package runner executes an ordered suite of checks against the auth service.
//
// It provides functionality for:
//   - Issuing one HTTP request per check and comparing its status code
//   - Attaching the session's bearer token to later requests
//   - Skipping scenarios whose preconditions are not met
//   - Optional readiness polling, request pacing and envelope validation
//   - Summarizing totals, success rate and latency percentiles
//
// Execution is strictly sequential: a check never starts before the previous
// one has returned or timed out, and a failure never aborts the run.
package runner
