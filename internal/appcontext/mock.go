package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/placement"
	"github.com/agentstation/placement/pkg/constants"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	ClientFunc       func() (placement.Client, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	Host             string
	Port             int
	VersionFunc      func() string
}

// Client returns a client using the mock function or nil.
func (m *Mock) Client() (placement.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc()
	}
	return nil, nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// ServerAddress returns Host and Port, falling back to the defaults.
func (m *Mock) ServerAddress() (string, int) {
	host, port := m.Host, m.Port
	if host == "" {
		host = constants.DefaultServerHost
	}
	if port == 0 {
		port = constants.DefaultServerPort
	}
	return host, port
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
