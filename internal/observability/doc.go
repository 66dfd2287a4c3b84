// Package observability provides structured logging and Prometheus metrics
// for the API.
//
// Metrics cover HTTP traffic, authorization gate outcomes, rate limiter
// decisions, signing key refreshes and user provisioning.
package observability
