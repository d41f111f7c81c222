package httpclient

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// BearerTransport implements http.RoundTripper and adds token
// authentication and a request id to outgoing requests.
type BearerTransport struct {
	Token     string
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// NewBearerTransport creates a new BearerTransport with the given token and
// optional underlying transport. If transport is nil, http.DefaultTransport
// will be used.
func NewBearerTransport(token string, transport http.RoundTripper, logger *slog.Logger) *BearerTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &BearerTransport{
		Token:     token,
		Transport: transport,
		Logger:    logger,
	}
}

// RoundTrip implements the http.RoundTripper interface. The request is
// cloned before headers are added, as the interface requires.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Token == "" {
		return nil, errors.New("bearer token cannot be empty")
	}
	if t.Transport == nil {
		return nil, errors.New("transport cannot be nil")
	}

	req = req.Clone(req.Context())
	reqBody := ""
	if req.Body != nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err == nil {
			reqBody = string(bodyBytes)
			req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes)) // Reset the body
		}
	}

	requestID := req.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
		req.Header.Set("X-Request-ID", requestID)
	}
	req.Header.Set("Authorization", "Bearer "+t.Token)

	t.Logger.Debug("outgoing request",
		"request_id", requestID,
		"method", req.Method,
		"url", req.URL.String(),
		"body", reqBody)

	resp, err := t.Transport.RoundTrip(req)

	if err == nil && resp != nil {
		respBody := ""
		if resp.Body != nil {
			bodyBytes, err := io.ReadAll(resp.Body)
			if err == nil {
				respBody = string(bodyBytes)
				resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes)) // Reset the body
			}
		}

		t.Logger.Debug("incoming response",
			"request_id", requestID,
			"status", resp.Status,
			"body", respBody)
	}

	return resp, err
}
