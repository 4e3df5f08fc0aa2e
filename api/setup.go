package api

import (
	"net/http"

	"ucrm.com.tr/sdk/session"
)

// Setup installs the session interceptor on the ambient default HTTP client.
// Code that uses http.DefaultClient directly then carries the same
// credentials and body transformation as clients created through the SDK.
// Run once at process start, after the session manager exists.
func Setup(mgr *session.Manager) {
	mgr.RegisterClient(http.DefaultClient)
}
