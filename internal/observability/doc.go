// Package observability builds the zap loggers used by the dashboard and
// tags them with per-request fields.
package observability
