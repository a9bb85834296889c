// Package http provides the HTTP client used to exercise the auth service.
//
// It wraps the standard library's http package with additional features:
//   - Configurable timeouts, redirects, proxy and TLS verification
//   - Per-request X-Request-ID correlation headers
//   - Response bodies classified once as a JSON object or raw text
package http
