// Package models defines the synchronizable record types shared by the
// notekeeper client and server.
//
// # Overview
//
// Three kinds are synchronized: Note, Book and MemoryItem. Each embeds Meta,
// which carries the lifecycle fields (favorite, archived, trash state,
// timestamps) and the synced flag. The package is pure data plus validation
// and performs no I/O.
//
// # Transitions
//
//   - Create assigns a local id, equal created/updated timestamps and default
//     lifecycle flags.
//   - ApplyUpdate merges a Patch (JSON field names) into a copy, refreshes
//     updatedAt and clears synced. Patches touching id or createdAt are rejected.
//   - MarkSynced flips synced after a confirmed remote write.
//
// # Identifiers
//
// Locally minted ids carry the "local-" prefix; ids minted by the remote store
// are bare UUIDs. IsLocalID tells them apart.
package models
