// Package cli provides the interactive notekeeper command-line client.
//
// It wires configuration, the device database, the remote store client and
// the sync engine behind a small REPL. Without a session every command works
// against the local cache; logging in migrates local data to the account,
// logging out leaves a snapshot of the account on the device.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
