// Package appcontext provides the shared application context interface
// used by all commands. Commands accept this interface rather than the
// concrete App so they can be tested against an in-memory backend.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/placement"
)

// Interface defines the application context that commands need.
type Interface interface {
	// Client returns the placement client, creating it lazily if needed.
	Client() (placement.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// ServerAddress returns the host and port the mock backend binds to.
	ServerAddress() (host string, port int)

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
