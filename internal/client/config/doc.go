// Package config loads runtime configuration for the GophSocial CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/-config or the CONFIG variable.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the REST server
//	-s string   path of the local session database
//	-t int      request timeout (seconds)
//	-i int      online status check interval (seconds)
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "session_db_path": "session.db",
//	  "request_timeout": "15s",
//	  "online_check_interval": "5s"
//	}
package config
