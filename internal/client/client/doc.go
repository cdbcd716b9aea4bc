// Package client contains the device side of the remote store.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see Client and RecordClient) for the
//     notekeeper backend: Register/GetSalt/Login, Ping and per-kind record
//     CRUD scoped by owner.
//  2. A concrete gRPC implementation (see GRPCClient) that manages a
//     connection, injects the current access token via an interceptor and
//     maps gRPC status codes to sentinel errors.
//  3. RemoteStore, the typed Remote Store Adapter for one entity kind and
//     one owner, used by the sync orchestrator.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Transport conditions are exposed as sentinel errors that callers match
// with errors.Is: ErrUnavailable, ErrUnauthorized and common.ErrorNotFound.
package client
