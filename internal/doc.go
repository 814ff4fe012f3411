// Package internal documents the gala server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, problem documents, and routing
// - domain: gala content model and the cached snapshot service
// - search: the suggestion filter engine
// - session: sign-in state and the role lookup race
// - storage: Postgres repositories and migrations
// - mcp: the assistant-facing tool surface
// - auth, audit, config, metrics, telemetry, sanitize, validation: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
