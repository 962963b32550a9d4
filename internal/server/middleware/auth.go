package middleware

import (
	"crypto/subtle"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/placement/internal/server/response"
)

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Enabled     bool
	APIKey      string
	PublicPaths []string
}

// DefaultAuthConfig returns a disabled configuration with the health check
// public.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Enabled:     false,
		PublicPaths: []string{"/health"},
	}
}

// Auth rejects requests without the configured Bearer token.
func Auth(config AuthConfig, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled || slices.Contains(config.PublicPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			key := bearerToken(r)
			if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(config.APIKey)) != 1 {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Bool("key_provided", key != "").
					Msg("Authentication failed")
				response.Unauthorized(w, "Could not validate credentials")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken returns the token of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
