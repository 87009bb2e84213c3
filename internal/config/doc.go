// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. It exposes the default page size and
// padding, request limits, and server timeouts to the rest of the application.
package config
