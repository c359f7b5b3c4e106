// Package tools holds the tool registry and the gateway's tool handlers.
//
// # Registry
//
// The registry maps tool names to descriptors and handlers. It is populated
// once at startup, sealed, and read-only thereafter; List returns descriptors
// in registration order so the tools/list catalogue is stable across calls.
// Resolving against an unsealed registry is a programming error and panics.
//
// # Handlers
//
// Each handler is a stateless sequence of calls against an external
// collaborator (the advertising platform or the cron scheduling service),
// constructed from the calling session's credentials. Handlers receive
// arguments that have already been validated against the tool's input schema.
package tools
