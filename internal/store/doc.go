// Package store defines the key/value backend used by the expiring cache.
//
// A [KV] is a flat namespace of string keys holding opaque byte values. The
// cache layer owns the value format and expiry; backends only persist bytes
// and enumerate keys by prefix. Four backends are provided: an in-process map
// ([Memory]), one JSON file per key ([File]), Redis ([Redis]) and a SQLite
// table ([SQLite]). Use [Open] to build one from configuration.
package store
