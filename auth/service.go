package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"ucrm.com.tr/sdk/api"
	"ucrm.com.tr/sdk/session"
)

// Login-flow endpoints on the login service. They match the interceptor's
// exempt paths, so requests through session-registered clients would pass
// as well, but the login client never carries credentials in the first
// place.
const (
	loginPath          = "/auth/login"
	registerPath       = "/auth/register"
	forgotPasswordPath = "/auth/forgot-password"
)

// Service drives the login flow against the central login service and the
// session manager.
type Service struct {
	mgr      *session.Manager
	login    *api.LoginClient
	validate *validator.Validate
	log      *logrus.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLoginClient substitutes the login-service client.
func WithLoginClient(login *api.LoginClient) ServiceOption {
	return func(s *Service) { s.login = login }
}

// WithServiceLogger sets the logger.
func WithServiceLogger(log *logrus.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// NewService creates the login-flow service bound to a session manager.
func NewService(mgr *session.Manager, opts ...ServiceOption) *Service {
	s := &Service{
		mgr:      mgr,
		validate: validator.New(),
		log:      logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.login == nil {
		s.login = api.NewLoginClient()
	}
	return s
}

// Login exchanges credentials for the token pair and installs it in the
// session manager. Validation failures never leave the process.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid login request: %w", err)
	}

	envelope, err := s.login.Post(ctx, loginPath, req)
	if err != nil {
		return nil, err
	}

	var data loginData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, &api.LoginError{Message: api.MsgLoginFailed, Err: fmt.Errorf("failed to decode login payload: %w", err)}
	}
	if data.MainToken == "" || data.AccessToken == "" {
		return nil, &api.LoginError{Message: api.MsgLoginFailed, Err: fmt.Errorf("login payload is missing tokens")}
	}

	if err := s.mgr.SetTokens(data.MainToken, data.AccessToken, data.UserRoles); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"member": s.mgr.MemberName(),
		"user":   s.mgr.UserID(),
	}).Info("login succeeded")

	return &LoginResult{
		FullName:     s.mgr.FullName(),
		MemberName:   s.mgr.MemberName(),
		MemberNumber: s.mgr.MemberNumber(),
		HostURL:      s.mgr.HostURL(),
		Roles:        s.mgr.Roles(),
	}, nil
}

// Logout drops the local session. The tokens are self-contained, so there
// is no server-side call to make.
func (s *Service) Logout() {
	s.mgr.ClearTokens()
	s.log.Info("logged out")
}

// RefreshTokens replaces the stored pair with freshly issued tokens, for
// callers that obtain them out of band.
func (s *Service) RefreshTokens(mainToken, accessToken string, roles []int) error {
	return s.mgr.RefreshTokens(mainToken, accessToken, roles)
}

// Register creates a new account. The caller still has to log in
// afterwards; registration does not issue tokens.
func (s *Service) Register(ctx context.Context, req RegisterRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid register request: %w", err)
	}
	if _, err := s.login.Post(ctx, registerPath, req); err != nil {
		return err
	}
	s.log.WithField("email", req.Email).Info("registration submitted")
	return nil
}

// ForgotPassword starts a password reset for the given address.
func (s *Service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid forgot-password request: %w", err)
	}
	if _, err := s.login.Post(ctx, forgotPasswordPath, req); err != nil {
		return err
	}
	return nil
}
