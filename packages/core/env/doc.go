// Package env handles .env files, process environment overrides and
// placeholder resolution for authprobe configuration values.
//
// It provides functionality for:
//   - Loading .env files, optionally exporting them to the process
//   - Collecting AUTHPROBE_* style overrides from the environment
//   - Resolving {{name}}, {{$ENV_VAR}} and {{func(args)}} placeholders
package env
