// Package localcache keeps the device copy of each entity kind as a single
// JSON array stored under the kind's slot in the kv repository.
//
// A slot that is missing, NULL or not a JSON array reads as empty. Every
// write replaces the whole array.
package localcache
