// Package platform provides the HTTP client for the advertising platform API.
//
// # Overview
//
// The client is constructed per session from that session's credentials and
// passed explicitly to whoever needs it. There is no package-level state and
// no implicit SDK initialization; every call is a plain HTTP round trip with
// the session's access token attached.
//
// # Credentials
//
// A Credentials value carries the platform app id, app secret, and a user
// access token. Credentials are opaque to the rest of the gateway and are
// never logged.
//
// # Errors
//
// API-level failures are returned as *APIError. Authentication failures
// (expired or revoked tokens, bad app secret) additionally match
// ErrUnauthorized via errors.Is, so callers can distinguish "fix your
// credentials" from "the platform is unhappy".
package platform
