package server

import (
	"fmt"
	"time"

	"github.com/agentstation/placement/pkg/constants"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// CORS settings
	CORSEnabled bool
	CORSOrigins []string

	// Authentication settings. When AuthEnabled, every route except
	// /health requires "Authorization: Bearer <APIKey>".
	AuthEnabled bool
	APIKey      string

	// HTTP timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:         constants.DefaultServerHost,
		Port:         constants.DefaultServerPort,
		CORSEnabled:  false,
		CORSOrigins:  []string{},
		AuthEnabled:  false,
		ReadTimeout:  constants.ServerReadTimeout,
		WriteTimeout: constants.ServerWriteTimeout,
		IdleTimeout:  constants.ServerIdleTimeout,
	}
}

// Addr returns the host:port the server listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
