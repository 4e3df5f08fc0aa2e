package session

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"ucrm.com.tr/sdk/transform"
)

// ErrTokenExpired is returned for a request whose user token exists but is no
// longer valid. The request never reaches the network; the session has
// already been cleared when the caller sees this error.
var ErrTokenExpired = &SessionError{Type: "TOKEN_EXPIRED", Message: "Oturum süresi dolmuş"}

// SessionError is a typed error raised by the session pipeline.
type SessionError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *SessionError) Error() string {
	return "[" + e.Type + "] " + e.Message
}

// Outbound header names.
const (
	HeaderAuthorization = "Authorization"
	HeaderUserID        = "X-User-ID"
	HeaderMemberID      = "X-Member-ID"
)

// exemptPathMarkers lists the unauthenticated endpoints. Requests to them get
// no credentials and skip expiry short-circuiting and body transformation.
var exemptPathMarkers = []string{
	"/auth/login",
	"/auth/register",
	"/auth/forgot-password",
}

// IsExemptPath reports whether the path belongs to an unauthenticated
// endpoint.
func IsExemptPath(path string) bool {
	for _, marker := range exemptPathMarkers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}

// sessionTransport is the per-client interceptor. It holds the manager
// itself, not a snapshot, so every request observes the session state at the
// moment it is issued.
type sessionTransport struct {
	mgr  *Manager
	base http.RoundTripper
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if IsExemptPath(req.URL.Path) {
		return t.base.RoundTrip(req)
	}

	accessToken := t.mgr.AccessToken()
	outgoing := req.Clone(req.Context())

	switch {
	case accessToken != "" && t.mgr.IsTokenValid(accessToken):
		outgoing.Header.Set(HeaderAuthorization, "Bearer "+accessToken)
		if info := t.mgr.UserInfo(); info != nil {
			if info.UserID != "" {
				outgoing.Header.Set(HeaderUserID, info.UserID)
			}
			if info.MemberID != "" {
				outgoing.Header.Set(HeaderMemberID, info.MemberID)
			}
		}
		t.mgr.log.WithFields(logrus.Fields{
			"method": req.Method,
			"url":    req.URL.String(),
		}).Debug("authorization attached")

	case accessToken != "":
		// present but expired: clear the session and fail before the
		// request reaches the network
		t.mgr.ExpireSession("access token expired")
		return nil, ErrTokenExpired
	}

	if err := t.transformBody(outgoing); err != nil {
		// a failed transformation never blocks the request
		t.mgr.log.WithError(err).WithFields(logrus.Fields{
			"method": req.Method,
			"url":    req.URL.String(),
		}).Error("body transformation failed, sending original payload")
	}

	return t.base.RoundTrip(outgoing)
}

// transformBody applies the Turkish uppercase transformation to the payload
// of mutating requests. Read and delete requests pass through untouched.
func (t *sessionTransport) transformBody(req *http.Request) error {
	switch req.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return nil
	}
	if req.Body == nil {
		return nil
	}

	original, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return err
	}

	transformed, err := transform.Body(original)
	if err != nil {
		transformed = original
	}

	req.Body = io.NopCloser(bytes.NewReader(transformed))
	req.ContentLength = int64(len(transformed))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(transformed)), nil
	}
	return err
}
