// Package scenario defines the Tracker Pro authentication suite: the ordered
// checks for health, registration, login, token validation, utility lookups
// and the protected profile endpoint.
//
// Scenarios that depend on an earlier registration or login declare it as a
// precondition and are skipped when that state is missing.
package scenario
