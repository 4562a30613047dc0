// Package internal holds the booking portal's server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware and routing
// - domain: business rules per aggregate (djs, events, contracts, ...)
// - storage: repository interfaces and the Postgres implementation
// - jobs, realtime: River workers and the change feed
// - auth, access, audit, config, metrics, telemetry, jsonld, mcp: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
