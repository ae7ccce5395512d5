// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"callbook/internal/gitver"
	"callbook/internal/store"
)

// Services bundles the collaborators the handlers need.
type Services struct {
	// Store is the embedded customer record store.
	Store *store.Store
	// Git versions the data directory. Optional; nil disables commits.
	Git *gitver.Repo
}

// Config carries handler-level configuration.
type Config struct {
	// Version is the build version reported by the health endpoint.
	Version string
	// GoVersion is the Go toolchain version of the build.
	GoVersion string
	// MaxRequestBodyBytes limits request body sizes. 0 means unlimited.
	MaxRequestBodyBytes int64
}
