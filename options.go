package placement

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/placement/internal/transport"
	"github.com/agentstation/placement/pkg/backend"
	"github.com/agentstation/placement/pkg/constants"
	"github.com/agentstation/placement/pkg/errors"
	"github.com/agentstation/placement/pkg/logging"
)

// Option is a function that configures a Client instance.
type Option func(*options) error

// options holds the client configuration.
type options struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zerolog.Logger
	api        backend.API
}

// defaults returns the default configuration.
func defaults() *options {
	return &options{
		timeout: constants.DefaultHTTPTimeout,
		logger:  logging.Default(),
	}
}

// apply applies the given options in order.
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// transportOptions converts the configuration into transport options.
func (o *options) transportOptions() []transport.Option {
	var opts []transport.Option
	if o.httpClient != nil {
		opts = append(opts, transport.WithHTTPClient(o.httpClient))
	} else {
		opts = append(opts, transport.WithTimeout(o.timeout))
	}
	if o.apiKey != "" {
		opts = append(opts, transport.WithAPIKey(&transport.BearerAuth{}, o.apiKey))
	}
	return opts
}

// WithBaseURL sets the PMS backend URL.
func WithBaseURL(url string) Option {
	return func(o *options) error {
		url = strings.TrimSpace(url)
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return errors.NewConfigError("client", "base URL must start with http:// or https://", nil)
		}
		o.baseURL = url
		return nil
	}
}

// WithAPIKey sends key as a Bearer token on every request.
func WithAPIKey(key string) Option {
	return func(o *options) error {
		o.apiKey = key
		return nil
	}
}

// WithHTTPClient replaces the HTTP client used for backend calls. Its own
// timeout is kept.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) error {
		o.httpClient = hc
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.NewValidationError("timeout", d, "must not be negative")
		}
		o.timeout = d
		return nil
	}
}

// WithLogger sets the logger handed to every session.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger != nil {
			o.logger = logger
		}
		return nil
	}
}

// WithAPI uses api instead of an HTTP backend. Base URL, key and HTTP
// options are then ignored.
func WithAPI(api backend.API) Option {
	return func(o *options) error {
		o.api = api
		return nil
	}
}
