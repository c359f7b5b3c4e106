// Package ratelimit provides per-key admission control for the gateway.
//
// Each key (normally a client address) gets an independent token bucket
// sized so that at most MaxRequests consumptions succeed within any Window.
// Rejections carry a retry-after hint so transports can set Retry-After.
// The limiter is optional middleware; when installed it runs before any
// session lookup or dispatch work.
package ratelimit
