// Package config loads and validates YAML configuration.
//
// Config files support ${VAR} environment variable expansion so secrets
// (API key, database password) can stay out of the file itself.
package config
