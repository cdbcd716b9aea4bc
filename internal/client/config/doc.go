// Package config loads runtime configuration for the notekeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "database_file": "notekeeper.db",
//	  "observe_interval": "3s",
//	  "trash_retention": "720h",
//	  "sweep_interval": "1h",
//	  "log_file": "notekeeper.log"
//	}
package config
