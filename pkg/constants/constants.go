// Package constants provides shared constants used throughout the placement
// codebase. This includes timeouts, limits, file permissions, and other
// configuration values that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the PMS backend
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// ShutdownTimeout bounds graceful shutdown of the mock backend server
	ShutdownTimeout = 5 * time.Second
)

// File permission constants
const (
	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// MaxConcurrentRequests caps parallel requirement fetches while loading a drive
	MaxConcurrentRequests = 8

	// MaxResponseBytes caps how much of a backend response body is read
	MaxResponseBytes = 8 << 20

	// MaxRequestBytes caps request bodies accepted by the mock backend
	MaxRequestBytes = 1 << 20

	// ChannelBufferSize is the default buffer size for event channels
	ChannelBufferSize = 256
)


// Server constants for the mock PMS backend
const (
	// DefaultServerHost is the default bind host
	DefaultServerHost = "localhost"

	// DefaultServerPort is the default bind port
	DefaultServerPort = 8000

	// ServerReadTimeout bounds reading a request
	ServerReadTimeout = 10 * time.Second

	// ServerWriteTimeout bounds writing a response
	ServerWriteTimeout = 10 * time.Second

	// ServerIdleTimeout bounds idle keep-alive connections
	ServerIdleTimeout = 120 * time.Second
)
