// Package orchestrator is the dual-mode persistence and sync engine.
//
// An Orchestrator owns one entity kind. While Anonymous it reads and writes
// the local cache; while Authenticated it reads and writes the remote store
// of the signed-in owner and keeps a read-through copy in memory. Sign-in
// moves the local collection into the remote store, sign-out snapshots the
// in-memory view back into the local cache.
//
// Engine ties the three kinds to an identity.Gate, and Sweeper purges
// expired trash in the background.
//
// Every Orchestrator method is serialized by an internal mutex, so mutations
// issued during a sign-in or sign-out wait for the transition to finish.
package orchestrator
