package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"ucrm.com.tr/sdk/session"
	"ucrm.com.tr/sdk/token"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-test-secret"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func sessionWithTokens(t *testing.T, hostURL string, expiresAt time.Time, opts ...session.Option) *session.Manager {
	t.Helper()
	opts = append([]session.Option{session.WithLogger(quietLogger())}, opts...)
	mgr := session.NewManager(session.NewMemStore(), opts...)

	mainToken := signToken(t, token.MainClaims{
		MemberName:   "Örnek Bilişim",
		HostURL:      hostURL,
		MemberNumber: "1042",
		MemberID:     "member-77",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	accessToken := signToken(t, token.AccessClaims{
		FullName: "Ayşe Yılmaz",
		UserID:   "user-13",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	if err := mgr.SetTokens(mainToken, accessToken, nil); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	return mgr
}

func emptySession(t *testing.T) *session.Manager {
	t.Helper()
	return session.NewManager(session.NewMemStore(), session.WithLogger(quietLogger()))
}

func TestClientBaseURL(t *testing.T) {
	mgr := emptySession(t)
	client := NewClient(mgr, WithFallbackURL("https://fallback.ucrm.com.tr"), WithClientLogger(quietLogger()))
	if got := client.BaseURL(); got != "https://fallback.ucrm.com.tr" {
		t.Errorf("BaseURL() without session = %q; want the fallback", got)
	}

	mgr = sessionWithTokens(t, "https://tenant.ucrm.com.tr", time.Now().Add(time.Hour))
	client = NewClient(mgr, WithFallbackURL("https://fallback.ucrm.com.tr"), WithClientLogger(quietLogger()))
	if got := client.BaseURL(); got != "https://tenant.ucrm.com.tr" {
		t.Errorf("BaseURL() with session = %q; want the tenant host", got)
	}
}

func TestClientDecodesSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got == "" {
			t.Error("request carried no Authorization header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":7,"firmaAdi":"ÖRNEK"}`))
	}))
	defer server.Close()

	mgr := sessionWithTokens(t, server.URL, time.Now().Add(time.Hour))
	client := NewClient(mgr, WithClientLogger(quietLogger()))

	var out struct {
		ID       int    `json:"id"`
		FirmaAdi string `json:"firmaAdi"`
	}
	if err := client.Get(context.Background(), "/orders/7", &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out.ID != 7 || out.FirmaAdi != "ÖRNEK" {
		t.Errorf("decoded %+v", out)
	}
}

func TestClientStatusMessages(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		message string
	}{
		{400, `{"success":false,"message":"E-posta adresi geçersiz"}`, "E-posta adresi geçersiz"},
		{400, `not json`, MsgBadRequest},
		{403, ``, MsgForbidden},
		{404, ``, MsgNotFound},
		{500, ``, MsgServerError},
		{502, ``, MsgServiceUnavailable},
		{503, ``, MsgServiceUnavailable},
		{504, ``, MsgServiceUnavailable},
		{418, ``, MsgGenericError},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(tt.body))
		}))

		mgr := sessionWithTokens(t, server.URL, time.Now().Add(time.Hour))
		client := NewClient(mgr, WithClientLogger(quietLogger()))

		err := client.Get(context.Background(), "/orders", nil)
		server.Close()
		if err == nil {
			t.Errorf("status %d: no error returned", tt.status)
			continue
		}
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Errorf("status %d: error type %T; want *Error", tt.status, err)
			continue
		}
		if apiErr.Message != tt.message {
			t.Errorf("status %d: message %q; want %q", tt.status, apiErr.Message, tt.message)
		}
		if apiErr.Status != tt.status {
			t.Errorf("status %d: Status field = %d", tt.status, apiErr.Status)
		}
		if apiErr.ErrorID == "" {
			t.Errorf("status %d: missing ErrorID", tt.status)
		}
	}
}

func TestClientUnauthorizedClearsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	var expiredReason string
	mgr := sessionWithTokens(t, server.URL, time.Now().Add(time.Hour),
		session.WithExpiryHandler(func(reason string) { expiredReason = reason }))
	client := NewClient(mgr, WithClientLogger(quietLogger()))

	err := client.Get(context.Background(), "/orders", nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T; want *Error", err)
	}
	if apiErr.Message != MsgUnauthorized {
		t.Errorf("message = %q; want %q", apiErr.Message, MsgUnauthorized)
	}
	if mgr.AccessToken() != "" {
		t.Error("session survived a 401")
	}
	if expiredReason == "" {
		t.Error("expiry handler was not fired")
	}
}

func TestClientExpiredTokenShortCircuits(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	current := time.Now()
	mgr := sessionWithTokens(t, server.URL, current.Add(time.Minute),
		session.WithClock(func() time.Time { return current }))
	client := NewClient(mgr, WithClientLogger(quietLogger()))

	current = current.Add(2 * time.Minute)

	err := client.Get(context.Background(), "/orders", nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T; want *Error", err)
	}
	if apiErr.Message != MsgUnauthorized {
		t.Errorf("message = %q; want %q", apiErr.Message, MsgUnauthorized)
	}
	if requests != 0 {
		t.Error("expired request reached the server")
	}
}

func TestClientNetworkFailure(t *testing.T) {
	mgr := emptySession(t)
	client := NewClient(mgr,
		WithFallbackURL("http://127.0.0.1:1"), // nothing listens here
		WithClientLogger(quietLogger()),
	)

	err := client.Get(context.Background(), "/orders", nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T; want *Error", err)
	}
	if apiErr.Message != MsgNetworkUnreachable {
		t.Errorf("message = %q; want %q", apiErr.Message, MsgNetworkUnreachable)
	}
	if apiErr.Status != 0 {
		t.Errorf("Status = %d; want 0 for transport failures", apiErr.Status)
	}
}

func TestClientPostTransformsBody(t *testing.T) {
	var received []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
	}))
	defer server.Close()

	mgr := sessionWithTokens(t, server.URL, time.Now().Add(time.Hour))
	client := NewClient(mgr, WithClientLogger(quietLogger()))

	payload := map[string]string{"firmaAdi": "istanbul ticaret", "email": "info@ornek.com"}
	if err := client.Post(context.Background(), "/orders", payload, nil); err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	body := string(received)
	if !strings.Contains(body, "İSTANBUL TİCARET") {
		t.Errorf("payload was not uppercased: %s", body)
	}
	if !strings.Contains(body, "info@ornek.com") {
		t.Errorf("excluded field was transformed: %s", body)
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://host", "/orders", "https://host/orders"},
		{"https://host/", "/orders", "https://host/orders"},
		{"https://host/", "orders", "https://host/orders"},
		{"https://host", "orders", "https://host/orders"},
	}
	for _, tt := range tests {
		if got := joinURL(tt.base, tt.path); got != tt.want {
			t.Errorf("joinURL(%q, %q) = %q; want %q", tt.base, tt.path, got, tt.want)
		}
	}
}
