// Package memory provides in-memory implementations of driven ports.
//
// SessionStore is the production home of the vault PIN, which must never
// reach disk. KVStore backs the summary cache when persistence is disabled.
// ConfigStore serves tests and the --no-config mode.
package memory
