package session

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type capturedRequest struct {
	authorization string
	userID        string
	memberID      string
	body          []byte
}

func newCaptureServer(t *testing.T) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = append(captured, capturedRequest{
			authorization: r.Header.Get(HeaderAuthorization),
			userID:        r.Header.Get(HeaderUserID),
			memberID:      r.Header.Get(HeaderMemberID),
			body:          body,
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, &captured
}

func TestIsExemptPath(t *testing.T) {
	exempt := []string{"/auth/login", "/api/v2/auth/login", "/auth/register", "/auth/forgot-password"}
	for _, path := range exempt {
		if !IsExemptPath(path) {
			t.Errorf("IsExemptPath(%q) = false; want true", path)
		}
	}
	for _, path := range []string{"/orders", "/auth/profile", "/"} {
		if IsExemptPath(path) {
			t.Errorf("IsExemptPath(%q) = true; want false", path)
		}
	}
}

func TestInterceptorAttachesCredentials(t *testing.T) {
	server, captured := newCaptureServer(t)
	mgr := newTestManager(t)
	expiry := time.Now().Add(time.Hour)
	accessToken := accessTokenFor(t, expiry)
	if err := mgr.SetTokens(mainTokenFor(t, expiry), accessToken, nil); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}

	client := mgr.CreateClient(0)
	resp, err := client.Get(server.URL + "/orders")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	got := (*captured)[0]
	if got.authorization != "Bearer "+accessToken {
		t.Errorf("Authorization = %q; want the bearer token", got.authorization)
	}
	if got.userID != "user-13" {
		t.Errorf("X-User-ID = %q; want user-13", got.userID)
	}
	if got.memberID != "member-77" {
		t.Errorf("X-Member-ID = %q; want member-77", got.memberID)
	}
}

func TestInterceptorAfterClearSendsNoCredentials(t *testing.T) {
	server, captured := newCaptureServer(t)
	mgr := newTestManager(t)
	expiry := time.Now().Add(time.Hour)
	if err := mgr.SetTokens(mainTokenFor(t, expiry), accessTokenFor(t, expiry), nil); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	client := mgr.CreateClient(0)

	mgr.ClearTokens()

	resp, err := client.Get(server.URL + "/orders")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	got := (*captured)[0]
	if got.authorization != "" || got.userID != "" || got.memberID != "" {
		t.Errorf("request after ClearTokens still carried credentials: %+v", got)
	}
}

func TestInterceptorExpiredTokenShortCircuits(t *testing.T) {
	server, captured := newCaptureServer(t)

	current := time.Now()
	clock := func() time.Time { return current }
	var expiredReason string
	mgr := newTestManager(t,
		WithClock(clock),
		WithExpiryHandler(func(reason string) { expiredReason = reason }),
	)

	if err := mgr.SetTokens(
		mainTokenFor(t, current.Add(time.Minute)),
		accessTokenFor(t, current.Add(time.Minute)),
		nil,
	); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	client := mgr.CreateClient(0)

	current = current.Add(2 * time.Minute)

	_, err := client.Get(server.URL + "/orders")
	if err == nil {
		t.Fatal("request with expired token succeeded")
	}
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("error = %v; want ErrTokenExpired", err)
	}
	if len(*captured) != 0 {
		t.Error("expired request reached the network")
	}
	if expiredReason == "" {
		t.Error("expiry handler was not fired")
	}
	if mgr.AccessToken() != "" {
		t.Error("session was not cleared on expiry")
	}
}

func TestInterceptorExemptPathSkipsEverything(t *testing.T) {
	server, captured := newCaptureServer(t)
	mgr := newTestManager(t)
	expiry := time.Now().Add(time.Hour)
	if err := mgr.SetTokens(mainTokenFor(t, expiry), accessTokenFor(t, expiry), nil); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	client := mgr.CreateClient(0)

	body := bytes.NewBufferString(`{"firmaAdi":"örnek"}`)
	resp, err := client.Post(server.URL+"/auth/login", "application/json", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	got := (*captured)[0]
	if got.authorization != "" {
		t.Errorf("exempt request carried Authorization %q", got.authorization)
	}
	if string(got.body) != `{"firmaAdi":"örnek"}` {
		t.Errorf("exempt request body was transformed: %s", got.body)
	}
}

func TestInterceptorTransformsMutatingBodies(t *testing.T) {
	server, captured := newCaptureServer(t)
	mgr := newTestManager(t)
	expiry := time.Now().Add(time.Hour)
	if err := mgr.SetTokens(mainTokenFor(t, expiry), accessTokenFor(t, expiry), nil); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	client := mgr.CreateClient(0)

	body := bytes.NewBufferString(`{"firmaAdi":"istanbul ticaret","email":"info@ornek.com"}`)
	resp, err := client.Post(server.URL+"/orders", "application/json", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	got := string((*captured)[0].body)
	if !bytes.Contains([]byte(got), []byte("İSTANBUL TİCARET")) {
		t.Errorf("body was not uppercased: %s", got)
	}
	if !bytes.Contains([]byte(got), []byte("info@ornek.com")) {
		t.Errorf("excluded email field was transformed: %s", got)
	}
}

func TestInterceptorLeavesNonJSONBodies(t *testing.T) {
	server, captured := newCaptureServer(t)
	mgr := newTestManager(t)
	client := mgr.CreateClient(0)

	body := bytes.NewBufferString("plain text payload")
	resp, err := client.Post(server.URL+"/orders", "text/plain", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if got := string((*captured)[0].body); got != "plain text payload" {
		t.Errorf("non-JSON body changed in transit: %q", got)
	}
}

func TestInterceptorSkipsGetBodies(t *testing.T) {
	server, captured := newCaptureServer(t)
	mgr := newTestManager(t)
	client := mgr.CreateClient(0)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/orders",
		bytes.NewBufferString(`{"firmaAdi":"istanbul"}`))
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if got := string((*captured)[0].body); got != `{"firmaAdi":"istanbul"}` {
		t.Errorf("GET body changed in transit: %q", got)
	}
}
