// Package cmd implements the authprobe CLI commands using Cobra.
//
// Available commands:
//   - run: Execute the auth check suite against a Tracker Pro backend
//   - list: Display the checks in execution order
//   - validate: Load and validate the configuration without running
//   - mock: Serve an in-memory Tracker Pro auth service
//   - history: Show recorded runs from the history database
//   - init: Write a starter authprobe.yaml
//   - version: Show authprobe version information
//
// Settings are layered as defaults, config file, AUTHPROBE_* environment
// variables and finally explicit flags.
package cmd
