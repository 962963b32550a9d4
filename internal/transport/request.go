package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/agentstation/placement/pkg/constants"
	"github.com/agentstation/placement/pkg/errors"
	"github.com/agentstation/placement/pkg/logging"
)

// errorBody covers the error envelopes the backend produces: FastAPI's
// {"detail": "..."} or {"detail": [{"msg": ...}]} and a plain
// {"message": "..."}.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type validationDetail struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// DecodeResponse decodes a JSON response into target. Non-2xx responses
// become *errors.APIError carrying the status and the backend's message.
func DecodeResponse(resp *http.Response, endpoint string, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseBytes))
	if err != nil {
		method := ""
		if resp.Request != nil {
			method = resp.Request.Method
		}
		return errors.NewNetworkError(method, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.NewAPIError(endpoint, resp.StatusCode, ErrorMessage(body, resp.Status))
	}

	if target == nil || len(body) == 0 || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", endpoint, err)
	}

	return nil
}

// ErrorMessage extracts a human-readable message from an error body,
// falling back to the raw body and then to fallback.
func ErrorMessage(body []byte, fallback string) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if len(eb.Detail) > 0 {
			var s string
			if json.Unmarshal(eb.Detail, &s) == nil && s != "" {
				return s
			}
			var details []validationDetail
			if json.Unmarshal(eb.Detail, &details) == nil && len(details) > 0 {
				msgs := make([]string, 0, len(details))
				for _, d := range details {
					msgs = append(msgs, d.Msg)
				}
				return strings.Join(msgs, "; ")
			}
		}
		if eb.Message != "" {
			return eb.Message
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fallback
}
