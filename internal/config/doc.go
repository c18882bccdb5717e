// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable
// interpolation. After parsing, QUOTEFEED_* environment variables override
// individual fields, e.g. QUOTEFEED_DATABASE_PASSWORD or QUOTEFEED_WORKERS.
package config
