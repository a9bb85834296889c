// Package assertions decides whether an auth service response passes a check.
//
// Supported assertions:
//   - Status code equality, with a human-readable outcome message
//   - Optional JSON Schema validation of the {success, message, data} envelope
package assertions
