// Package kv stores opaque values by key in the device SQLite database.
// The local cache keeps one JSON document per entity kind here.
package kv
