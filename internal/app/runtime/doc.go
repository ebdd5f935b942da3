// Package runtime owns the process lifecycle: it builds the backends and the
// HTTP server from settings, runs the startup hook and shuts everything down.
package runtime
