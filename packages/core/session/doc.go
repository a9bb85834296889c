// Package session holds the run-wide state shared by every check in a suite:
// the target base URL, the current bearer token, the last registered user and
// the ordered list of recorded results.
//
// Counters are derived from the result list, so the number of checks run
// always equals the number of recorded results.
package session
