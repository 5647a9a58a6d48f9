// Package file provides file and terminal implementations of driven ports.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.searchbox/config.toml, with an
//     fsnotify watcher for live reload
//   - TerminalPrompter: masked vault PIN entry on the controlling terminal
package file
