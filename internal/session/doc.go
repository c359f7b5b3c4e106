// Package session manages authenticated sessions and their credentials.
//
// # Overview
//
// A session binds an opaque id to one caller's advertising-platform
// credentials and an optional selected ad account. Sessions are created by
// Manager.Create after a single round-trip credential check against the
// platform, live in memory only, and are destroyed explicitly. A session is
// never visible to lookups before its credentials have been accepted.
//
// # Concurrency
//
// The session map is guarded by an RWMutex so lookups from many transport
// handlers proceed concurrently; each session guards its own mutable fields
// (selected account, last access time) with a per-session mutex, so updating
// one session never serializes access to the others.
//
// # Capacity
//
// Manager.Create enforces a hard cap on concurrently held sessions. The cap
// is checked before the credential round trip (cheap rejection first) and
// re-checked at insert time.
package session
