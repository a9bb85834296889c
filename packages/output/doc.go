// Package output provides formatters for displaying suite results.
//
// Supported output formats:
//   - Console: colored live progress and a summary table
//   - JSON: machine-readable JSON output
//   - JUnit: JUnit XML format for CI integration
//   - TAP: Test Anything Protocol format
//   - HTML: standalone report page
//
// The console formatter also implements runner.Listener so progress is
// printed while checks run. The other formats accumulate results and write
// them on Flush.
package output
