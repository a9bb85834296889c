// Package config handles configuration loading and management for authprobe.
//
// It provides functionality for:
//   - Loading authprobe.yaml, .authprobe.yaml or authprobe.json
//   - Default configuration values
//   - AUTHPROBE_* environment overrides
//   - {{...}} placeholder resolution and validation
package config
