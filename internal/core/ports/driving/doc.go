// Package driving lists what the terminal UI, the CLI commands, the web
// viewer and the MCP server may ask of the core. The services package
// implements every interface here.
package driving
