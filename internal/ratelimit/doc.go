// Package ratelimit implements the admission gate that protects the
// generation endpoints: a per-identity sliding-window request log.
//
// Each identity owns a window guarded by its own mutex, so concurrent
// decisions for one identity are serialized while different identities
// proceed independently. The identity map itself is locked only to look up,
// insert or delete a window. A background sweep (Run) periodically prunes
// every window and drops identities whose window became empty, which bounds
// memory for short-lived clients.
package ratelimit
