// Package builtin provides the functions available inside {{...}} placeholders
// in authprobe configuration values.
//
// Available functions:
//   - uuid(): random UUID v4, handy for correlation headers
//   - now(): current UTC time in RFC 3339
//   - timestamp(): current Unix timestamp
//   - date(layout): current UTC date, "2006-01-02" by default
//   - random(min, max): random integer in range
//   - randomDigits(n): n random decimal digits
//   - randomString(n): n random alphanumerics
//   - base64(value): base64 of value
//   - env(name, fallback): environment variable or fallback
package builtin
