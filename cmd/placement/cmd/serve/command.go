// Package serve provides the command that runs the in-memory PMS backend.
package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/placement/internal/appcontext"
	"github.com/agentstation/placement/internal/server"
	"github.com/agentstation/placement/pkg/backend/memory"
	"github.com/agentstation/placement/pkg/constants"
	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/errors"
)

// Seed is the roster file accepted by --seed.
type Seed struct {
	Students     []drives.Student     `yaml:"students"`
	Performances []drives.Performance `yaml:"performances"`
}

// NewCommand creates the serve command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	host, port := app.ServerAddress()

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "management",
		Short:   "Run an in-memory PMS backend for development",
		Long: `Serve runs a PMS backend that keeps drives, companies, jobs and
requirements in memory. It speaks the same REST API as the real backend and
streams change events over WebSocket (/events/ws) and Server-Sent Events
(/events/stream).

The student roster is read from the --seed file, a YAML document with
"students" and "performances" lists.`,
		Example: `  placement serve
  placement serve --port 9000 --seed roster.yaml
  placement serve --auth --api-key secret --cors-origins https://pms.example`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd, app)
		},
	}

	cmd.Flags().Int("port", port, "Server port")
	cmd.Flags().String("host", host, "Bind address")
	cmd.Flags().String("seed", "", "YAML file with the student roster")

	cmd.Flags().Bool("cors", false, "Enable CORS for all origins")
	cmd.Flags().StringSlice("cors-origins", []string{}, "Allowed CORS origins (comma-separated)")

	cmd.Flags().Bool("auth", false, "Require a bearer API key")
	cmd.Flags().String("api-key", "", "API key clients must present when --auth is set")

	cmd.Flags().Duration("read-timeout", constants.ServerReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", constants.ServerWriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", constants.ServerIdleTimeout, "HTTP idle timeout")

	return cmd
}

func runServer(cmd *cobra.Command, app appcontext.Interface) error {
	cfg := parseConfig(cmd)
	logger := app.Logger()

	mem := memory.New()
	if path := mustGetString(cmd, "seed"); path != "" {
		seed, err := LoadSeed(path)
		if err != nil {
			return err
		}
		mem.SeedStudents(seed.Students, seed.Performances)
		logger.Info().
			Str("file", path).
			Int("students", len(seed.Students)).
			Int("performances", len(seed.Performances)).
			Msg("Roster seeded")
	}

	logger.Info().
		Int("port", cfg.Port).
		Str("host", cfg.Host).
		Bool("cors", cfg.CORSEnabled).
		Bool("auth", cfg.AuthEnabled).
		Msg("Starting mock backend")

	srv, err := server.New(mem, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Start()

	return startWithGracefulShutdown(cmd, srv.HTTPServer(), srv, logger)
}

// LoadSeed reads a roster file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("seed", "reading "+path, err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return &seed, nil
}

func parseConfig(cmd *cobra.Command) server.Config {
	cfg := server.DefaultConfig()
	cfg.Host = mustGetString(cmd, "host")
	cfg.Port = mustGetInt(cmd, "port")
	cfg.CORSEnabled = mustGetBool(cmd, "cors")
	cfg.CORSOrigins = mustGetStringSlice(cmd, "cors-origins")
	cfg.AuthEnabled = mustGetBool(cmd, "auth")
	cfg.APIKey = mustGetString(cmd, "api-key")
	cfg.ReadTimeout = mustGetDuration(cmd, "read-timeout")
	cfg.WriteTimeout = mustGetDuration(cmd, "write-timeout")
	cfg.IdleTimeout = mustGetDuration(cmd, "idle-timeout")
	if len(cfg.CORSOrigins) > 0 {
		cfg.CORSEnabled = true
	}
	return cfg
}

// startWithGracefulShutdown serves until the command context is cancelled,
// then drains connections and stops the background services.
func startWithGracefulShutdown(cmd *cobra.Command, httpServer *http.Server, srv *server.Server, logger *zerolog.Logger) error {
	serverErr := make(chan error, 1)

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		fmt.Fprintf(cmd.OutOrStdout(), "Mock backend listening on %s\n", httpServer.Addr)
		fmt.Fprintln(cmd.OutOrStdout(), "   Press Ctrl+C to stop")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return err
	case <-cmd.Context().Done():
		logger.Info().Msg("Shutdown signal received via context")

		// The parent context is already cancelled.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Background services shutdown had issues")
		}

		logger.Info().Msg("Server stopped gracefully")
		fmt.Fprintln(cmd.OutOrStdout(), "Mock backend stopped")
		return nil
	}
}

// mustGetInt retrieves an integer flag value or panics if the flag doesn't exist.
func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

func mustGetStringSlice(cmd *cobra.Command, name string) []string {
	val, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

func mustGetDuration(cmd *cobra.Command, name string) time.Duration {
	val, err := cmd.Flags().GetDuration(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}
