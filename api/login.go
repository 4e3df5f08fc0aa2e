package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// DefaultLoginURL is the fixed login-service address. Unlike resource
// traffic it never follows the per-organisation host.
const DefaultLoginURL = "https://login.ucrm.com.tr"

// LoginClient talks to the central login service. Its endpoints are
// unauthenticated, so the client is deliberately not registered with the
// session manager, and its errors use the narrower LoginError shape.
type LoginClient struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
}

// LoginClientOption configures a LoginClient.
type LoginClientOption func(*LoginClient)

// WithLoginURL overrides the login-service base URL.
func WithLoginURL(url string) LoginClientOption {
	return func(c *LoginClient) { c.baseURL = url }
}

// WithLoginLogger sets the logger.
func WithLoginLogger(log *logrus.Logger) LoginClientOption {
	return func(c *LoginClient) { c.log = log }
}

// NewLoginClient creates the login-service client.
func NewLoginClient(opts ...LoginClientOption) *LoginClient {
	c := &LoginClient{
		baseURL:    DefaultLoginURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        logrus.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured login-service address.
func (c *LoginClient) BaseURL() string {
	return c.baseURL
}

// Post issues a POST against the login service and decodes the response
// envelope. Failures resolve to *LoginError.
func (c *LoginClient) Post(ctx context.Context, path string, body any) (*Envelope, error) {
	url := joinURL(c.baseURL, path)

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, &LoginError{Message: MsgLoginFailed, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, &LoginError{Message: MsgLoginFailed, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("url", url).Error("login request failed")
		return nil, &LoginError{Message: MsgNetworkUnreachable, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var envelope Envelope
	envelopeOK := json.Unmarshal(raw, &envelope) == nil

	if resp.StatusCode >= 400 || (envelopeOK && !envelope.Success) {
		message := MsgLoginFailed
		if envelopeOK && !envelope.Success && envelope.Message != "" {
			message = envelope.Message
		}
		c.log.WithFields(logrus.Fields{
			"url":    url,
			"status": resp.StatusCode,
		}).Error("login rejected")
		return nil, &LoginError{
			Message:    message,
			Status:     resp.StatusCode,
			StatusText: resp.Status,
		}
	}

	if !envelopeOK {
		return nil, &LoginError{
			Message:    MsgLoginFailed,
			Status:     resp.StatusCode,
			StatusText: resp.Status,
		}
	}

	c.log.WithFields(logrus.Fields{
		"url":    url,
		"status": resp.StatusCode,
	}).Debug("login request completed")
	return &envelope, nil
}
