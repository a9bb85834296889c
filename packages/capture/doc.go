// Package capture extracts values from auth service responses.
//
// It reads the {success, message, data} envelope with gjson paths so that
// tokens and user identity returned by registration and login can be carried
// into later checks.
package capture
