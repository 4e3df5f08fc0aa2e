package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ucrm.com.tr/sdk/session"
)

// DefaultTimeout bounds every request issued through the SDK clients.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is read for diagnostics.
const maxErrorBody = 1 << 20

// Client is the tenant-host API client. The base URL for every request is
// the organisation token's HostUrl claim; without a session it falls back to
// the statically configured default. The underlying HTTP client is
// registered with the session manager, so credentials and the body
// transformation are applied by the interceptor, not here.
type Client struct {
	mgr        *session.Manager
	httpClient *http.Client
	fallback   string
	log        *logrus.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithFallbackURL sets the base URL used when no organisation token resolves
// a tenant host.
func WithFallbackURL(url string) ClientOption {
	return func(c *Client) { c.fallback = url }
}

// WithClientLogger sets the logger.
func WithClientLogger(log *logrus.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient substitutes the underlying HTTP client. It is registered
// with the session manager on construction.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates a tenant-host client registered with the session manager.
func NewClient(mgr *session.Manager, opts ...ClientOption) *Client {
	c := &Client{
		mgr: mgr,
		log: logrus.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = mgr.CreateClient(DefaultTimeout)
	} else {
		mgr.RegisterClient(c.httpClient)
	}
	return c
}

// BaseURL returns the base URL the next request would target.
func (c *Client) BaseURL() string {
	if host := c.mgr.HostURL(); host != "" {
		return host
	}
	return c.fallback
}

// Get issues a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do issues a request against the resolved tenant host and normalises every
// failure into *Error. A 401 clears the session before the error returns.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	url := joinURL(c.BaseURL(), path)

	req, err := newJSONRequest(ctx, method, url, body)
	if err != nil {
		return newError(MsgGenericError, 0, "", url, method, nil, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.normalizeTransportError(err, url, method)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 400 {
		c.log.WithFields(logrus.Fields{
			"method": method,
			"url":    url,
			"status": resp.StatusCode,
		}).Debug("request completed")
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return newError(MsgGenericError, resp.StatusCode, resp.Status, url, method, nil,
				fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}

	return c.normalizeResponseError(resp, url, method)
}

func (c *Client) normalizeTransportError(err error, url, method string) *Error {
	if errors.Is(err, session.ErrTokenExpired) {
		// the interceptor already cleared the session
		return newError(MsgUnauthorized, 0, "", url, method, nil, err)
	}
	apiErr := newError(MsgNetworkUnreachable, 0, "", url, method, nil, err)
	c.log.WithError(err).WithFields(logrus.Fields{
		"method":  method,
		"url":     url,
		"errorId": apiErr.ErrorID,
	}).Error("request failed before a response was received")
	return apiErr
}

func (c *Client) normalizeResponseError(resp *http.Response, url, method string) *Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var envelope *Envelope
	var parsed Envelope
	if json.Unmarshal(raw, &parsed) == nil {
		envelope = &parsed
	}

	var data any
	if len(raw) > 0 {
		if json.Unmarshal(raw, &data) != nil {
			data = string(raw)
		}
	}

	message := messageForStatus(resp.StatusCode, envelope)
	apiErr := newError(message, resp.StatusCode, resp.Status, url, method, data, nil)

	c.log.WithFields(logrus.Fields{
		"method":  method,
		"url":     url,
		"status":  resp.StatusCode,
		"errorId": apiErr.ErrorID,
	}).Error("request rejected by backend")

	if resp.StatusCode == http.StatusUnauthorized {
		c.mgr.ExpireSession("backend returned 401")
	}

	return apiErr
}

// newJSONRequest builds a request with a JSON body and the standard headers.
func newJSONRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
