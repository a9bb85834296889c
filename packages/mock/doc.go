// Package mock provides an in-memory Tracker Pro authentication service.
//
// It serves the same routes under /api/auth as the real backend:
//   - health, register, login
//   - validate-token and profile (bearer protected)
//   - check-email and forgot-password
//
// Passwords are bcrypt hashed, registrations are validated with
// go-playground/validator and tokens are HMAC signed. State lives only for the
// lifetime of the Server, which makes it suitable for local runs and tests.
package mock
