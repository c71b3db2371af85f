// Package cache provides an expiring JSON cache over a [store.KV] backend.
//
// Each entry is stored under a namespaced key (default prefix
// "github_cache_") as a JSON object {"data", "timestamp", "expiresIn"}, where
// timestamp is the write time in epoch milliseconds and expiresIn the
// validity window in milliseconds. Entries are checked lazily: any read that
// finds an entry expired or unreadable removes it and reports a miss.
// [Store.Cleanup] sweeps the whole namespace and is meant to be called once
// by the hosting application at startup.
//
// The cache never surfaces backend errors to callers. Write, read and delete
// failures are logged and treated as misses or no-ops.
package cache
