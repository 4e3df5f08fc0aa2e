package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"ucrm.com.tr/sdk/token"
)

// ExpiryHandler is invoked after the session has been cleared because a token
// expired or the backend rejected the credentials. It is the navigation hook:
// an application typically sends the user back to its login entry point here.
type ExpiryHandler func(reason string)

// Manager owns the token pair, the derived user info and the set of
// registered network clients. Create one per composition root; applications
// that want a process-wide instance use the global accessors in global.go.
type Manager struct {
	mu      sync.Mutex
	store   Store
	log     *logrus.Logger
	now     func() time.Time
	expiry  ExpiryHandler
	user    *token.UserInfo
	clients map[*http.Client]struct{}

	// fallback backend host for requests when no organisation token is
	// present (the HostUrl claim wins whenever it resolves)
	defaultHostURL string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to logrus.New().
func WithLogger(log *logrus.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithExpiryHandler sets the callback fired after an expiry-triggered clear.
func WithExpiryHandler(handler ExpiryHandler) Option {
	return func(m *Manager) { m.expiry = handler }
}

// WithDefaultHost sets the fallback backend base URL.
func WithDefaultHost(url string) Option {
	return func(m *Manager) { m.defaultHostURL = url }
}

// NewManager creates a session manager over the given durable store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		log:     logrus.New(),
		now:     time.Now,
		clients: make(map[*http.Client]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.mu.Lock()
	m.recomputeUserInfoLocked()
	m.mu.Unlock()
	return m
}

// SetTokens writes the token pair and the role set to durable storage,
// recomputes the user info and resynchronises every registered client. All
// three writes are attempted even when one fails; the first failure is
// returned after recomputation so no observer sees a partially-applied state.
func (m *Manager) SetTokens(mainToken, accessToken string, roles []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if roles == nil {
		roles = []int{}
	}
	encodedRoles, err := json.Marshal(roles)
	if err != nil {
		return fmt.Errorf("failed to encode roles: %w", err)
	}

	var firstErr error
	for _, write := range []struct {
		key   string
		value string
	}{
		{KeyMainToken, mainToken},
		{KeyAccessToken, accessToken},
		{KeyUserRoles, string(encodedRoles)},
	} {
		if err := m.store.Set(write.key, write.value); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to store %s: %w", write.key, err)
		}
	}

	m.recomputeUserInfoLocked()
	m.resyncClientsLocked()

	m.log.WithFields(logrus.Fields{
		"roles":   len(roles),
		"clients": len(m.clients),
	}).Debug("session tokens updated")

	return firstErr
}

// RefreshTokens is the same operation as SetTokens; the backend issues a
// fresh pair and the session replaces the old one wholesale.
func (m *Manager) RefreshTokens(mainToken, accessToken string, roles []int) error {
	return m.SetTokens(mainToken, accessToken, roles)
}

// ClearTokens removes the token pair and role set from durable storage, drops
// the user info and resynchronises every registered client so subsequent
// requests carry no credentials.
func (m *Manager) ClearTokens() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearTokensLocked()
}

func (m *Manager) clearTokensLocked() {
	for _, key := range []string{KeyMainToken, KeyAccessToken, KeyUserRoles} {
		if err := m.store.Delete(key); err != nil {
			m.log.WithError(err).WithField("key", key).Warn("failed to remove session key")
		}
	}
	m.user = nil
	m.resyncClientsLocked()
	m.log.Debug("session tokens cleared")
}

// ExpireSession clears the session and fires the expiry handler. Called from
// the request pipeline when a token turned out to be expired or the backend
// answered 401.
func (m *Manager) ExpireSession(reason string) {
	m.mu.Lock()
	m.clearTokensLocked()
	handler := m.expiry
	m.mu.Unlock()

	m.log.WithField("reason", reason).Warn("session expired")
	if handler != nil {
		handler(reason)
	}
}

// MainToken returns the stored organisation token, empty when absent.
func (m *Manager) MainToken() string {
	value, err := m.store.Get(KeyMainToken)
	if err != nil {
		m.log.WithError(err).Warn("failed to read main token")
		return ""
	}
	return value
}

// AccessToken returns the stored user token, empty when absent.
func (m *Manager) AccessToken() string {
	value, err := m.store.Get(KeyAccessToken)
	if err != nil {
		m.log.WithError(err).Warn("failed to read access token")
		return ""
	}
	return value
}

// Roles returns the persisted role set; empty when absent or unreadable.
func (m *Manager) Roles() []int {
	raw, err := m.store.Get(KeyUserRoles)
	if err != nil || raw == "" {
		return nil
	}
	var roles []int
	if err := json.Unmarshal([]byte(raw), &roles); err != nil {
		m.log.WithError(err).Warn("failed to decode stored roles")
		return nil
	}
	return roles
}

// IsTokenValid reports whether the given token decodes and is strictly
// unexpired at the current instant.
func (m *Manager) IsTokenValid(tokenString string) bool {
	return token.Valid(tokenString, m.now())
}

// IsMainTokenValid reports whether the stored organisation token is valid.
func (m *Manager) IsMainTokenValid() bool {
	return m.IsTokenValid(m.MainToken())
}

// IsAccessTokenValid reports whether the stored user token is valid.
func (m *Manager) IsAccessTokenValid() bool {
	return m.IsTokenValid(m.AccessToken())
}

// AreTokensValid reports whether both tokens are currently valid.
func (m *Manager) AreTokensValid() bool {
	return m.IsMainTokenValid() && m.IsAccessTokenValid()
}

// UserInfo returns the aggregate user info. The cached value is reused while
// both tokens are valid; otherwise it is recomputed from storage. Nil when
// either token is missing, undecodable or expired.
func (m *Manager) UserInfo() *token.UserInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil || !m.user.IsTokensValid || !m.areTokensValidLocked() {
		m.recomputeUserInfoLocked()
	}
	if m.user == nil || !m.user.IsTokensValid {
		return nil
	}
	info := *m.user
	return &info
}

func (m *Manager) areTokensValidLocked() bool {
	now := m.now()
	main, _ := m.store.Get(KeyMainToken)
	access, _ := m.store.Get(KeyAccessToken)
	return token.Valid(main, now) && token.Valid(access, now)
}

// recomputeUserInfoLocked rebuilds the aggregate from storage. The aggregate
// exists only when both tokens are present and decodable; IsTokensValid
// additionally requires both to be unexpired.
func (m *Manager) recomputeUserInfoLocked() {
	mainString, _ := m.store.Get(KeyMainToken)
	accessString, _ := m.store.Get(KeyAccessToken)
	if mainString == "" || accessString == "" {
		m.user = nil
		return
	}

	mainClaims, err := token.DecodeMain(mainString)
	if err != nil {
		m.log.WithError(err).Debug("failed to decode main token")
		m.user = nil
		return
	}
	accessClaims, err := token.DecodeAccess(accessString)
	if err != nil {
		m.log.WithError(err).Debug("failed to decode access token")
		m.user = nil
		return
	}

	now := m.now()
	m.user = &token.UserInfo{
		FullName:      accessClaims.FullName,
		UserID:        accessClaims.UserID,
		MemberName:    mainClaims.MemberName,
		HostURL:       mainClaims.HostURL,
		MemberNumber:  mainClaims.MemberNumber,
		MemberID:      mainClaims.MemberID,
		LicenseInfo:   token.ParseLicenses(mainClaims.LicenceCodes),
		IsTokensValid: token.Valid(mainString, now) && token.Valid(accessString, now),
	}
}

// HasRole reports membership of the role id in the persisted role set.
func (m *Manager) HasRole(roleID int) bool {
	for _, role := range m.Roles() {
		if role == roleID {
			return true
		}
	}
	return false
}

// HasLicense reports whether the session holds the exact licence code.
// False, never an error, when there is no valid session.
func (m *Manager) HasLicense(code string) bool {
	info := m.UserInfo()
	return info != nil && info.LicenseInfo.HasLicense(code)
}

// HasLicensePrefix reports whether any licence code starts with prefix.
func (m *Manager) HasLicensePrefix(prefix string) bool {
	info := m.UserInfo()
	return info != nil && info.LicenseInfo.HasLicensePrefix(prefix)
}

// HasExtraPackage reports the CRMMIK entitlement.
func (m *Manager) HasExtraPackage() bool {
	info := m.UserInfo()
	return info != nil && info.LicenseInfo.HasExtraPackage
}

// HasStandardPackage reports the CRMKUL entitlement.
func (m *Manager) HasStandardPackage() bool {
	info := m.UserInfo()
	return info != nil && info.LicenseInfo.HasStandardPackage
}

// HostURL returns the tenant backend base URL from the organisation token,
// falling back to the configured default when no session is active.
func (m *Manager) HostURL() string {
	if info := m.UserInfo(); info != nil && info.HostURL != "" {
		return info.HostURL
	}
	return m.defaultHostURL
}

// FullName returns the authenticated user's display name, empty without a
// valid session.
func (m *Manager) FullName() string {
	if info := m.UserInfo(); info != nil {
		return info.FullName
	}
	return ""
}

// MemberName returns the organisation display name.
func (m *Manager) MemberName() string {
	if info := m.UserInfo(); info != nil {
		return info.MemberName
	}
	return ""
}

// MemberNumber returns the organisation number.
func (m *Manager) MemberNumber() string {
	if info := m.UserInfo(); info != nil {
		return info.MemberNumber
	}
	return ""
}

// UserID returns the user identifier claim.
func (m *Manager) UserID() string {
	if info := m.UserInfo(); info != nil {
		return info.UserID
	}
	return ""
}

// MemberID returns the organisation identifier claim.
func (m *Manager) MemberID() string {
	if info := m.UserInfo(); info != nil {
		return info.MemberID
	}
	return ""
}

// RegisterClient adds the client to the registry and installs the session
// interceptor on it. Registering an already-registered client reinstalls the
// interceptor without stacking a second one.
func (m *Manager) RegisterClient(client *http.Client) {
	if client == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client] = struct{}{}
	m.installInterceptorLocked(client)
	m.log.WithField("clients", len(m.clients)).Debug("registered http client")
}

// UnregisterClient removes the client from the registry. Its interceptor
// stays in place but keeps reading the live session state.
func (m *Manager) UnregisterClient(client *http.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, client)
	m.log.WithField("clients", len(m.clients)).Debug("unregistered http client")
}

// RegisteredClientCount reports the registry size.
func (m *Manager) RegisteredClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// CreateClient constructs a new HTTP client, registers it and installs the
// interceptor. The zero timeout means no client-side limit.
func (m *Manager) CreateClient(timeout time.Duration) *http.Client {
	client := &http.Client{Timeout: timeout}
	m.RegisterClient(client)
	return client
}

// Rehydrate re-reads the session from storage and resynchronises every
// registered client. Called when the backing store changed externally.
func (m *Manager) Rehydrate() {
	if fileStore, ok := m.store.(*FileStore); ok {
		if err := fileStore.Reload(); err != nil {
			m.log.WithError(err).Warn("failed to reload session file")
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recomputeUserInfoLocked()
	m.resyncClientsLocked()
	m.log.Debug("session rehydrated from storage")
}

// resyncClientsLocked reinstalls the interceptor on every registered client.
// The loop is bounded and completes before the mutating call returns.
func (m *Manager) resyncClientsLocked() {
	for client := range m.clients {
		m.installInterceptorLocked(client)
	}
}

// installInterceptorLocked wraps the client's transport. Any previously
// installed session transport is unwrapped first, so reinstalling can never
// inject headers twice.
func (m *Manager) installInterceptorLocked(client *http.Client) {
	base := client.Transport
	if existing, ok := base.(*sessionTransport); ok {
		base = existing.base
	}
	if base == nil {
		base = http.DefaultTransport
	}
	client.Transport = &sessionTransport{mgr: m, base: base}
}
