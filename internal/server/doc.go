// Package server runs the HTTP transport and shuts it down gracefully when
// the run context is cancelled.
package server
