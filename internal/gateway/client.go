// Package gateway performs the REST calls of the thesis review backend. Every
// exported operation makes exactly one round trip and never returns an error:
// failures are shown to the user through a Notifier, logged, and turned into a
// false, nil or empty result.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/SAP-F-2025/thesis-review-portal/internal/models"
	"github.com/SAP-F-2025/thesis-review-portal/internal/session"
)

// Notifier is the user-facing error channel.
type Notifier interface {
	Notify(message string)
}

// Client talks to one backend. BaseURL is the backend origin; every endpoint
// lives under its /api prefix.
type Client struct {
	apiURL string
	http   *http.Client
	logger *slog.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiURL: strings.TrimRight(baseURL, "/") + "/api",
		http:   httpClient,
		logger: logger,
	}
}

// APIURL returns the base endpoint including the /api prefix.
func (c *Client) APIURL() string {
	return c.apiURL
}

// DownloadURL builds the link of an uploaded thesis document.
func (c *Client) DownloadURL(filePath string) string {
	return c.apiURL + "/uploads/" + url.PathEscape(filePath)
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	sess        *session.Session
}

func jsonRequest(method, path string, payload interface{}, sess *session.Session) (request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("encode %s body: %w", path, err)
	}
	return request{
		method:      method,
		path:        path,
		body:        bytes.NewReader(data),
		contentType: "application/json",
		sess:        sess,
	}, nil
}

// do sends req and decodes a 2xx body into out when out is non-nil. Non-2xx
// responses become *BackendError; everything else wraps ErrTransport.
func (c *Client) do(ctx context.Context, op string, req request, out interface{}) error {
	target := c.apiURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		if closer, ok := req.body.(io.Closer); ok {
			_ = closer.Close()
		}
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.sess != nil {
		// Sent even when empty; the backend decides what an absent token means.
		httpReq.Header.Set("Authorization", "Bearer "+req.sess.Token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return transportError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody models.ErrorResponse
		if err := json.Unmarshal(data, &errBody); err != nil {
			return transportError(op, fmt.Errorf("status %d with undecodable body: %w", resp.StatusCode, err))
		}
		return &BackendError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		if !json.Valid(data) {
			return transportError(op, fmt.Errorf("status %d with non-JSON body", resp.StatusCode))
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return transportError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// fail reports err on both channels.
func (c *Client) fail(ctx context.Context, n Notifier, op string, err error, backendFallback, transportFallback string) {
	c.logger.ErrorContext(ctx, "Backend request failed",
		"operation", op,
		"error", err)
	if n != nil {
		n.Notify(userMessage(err, backendFallback, transportFallback))
	}
}
