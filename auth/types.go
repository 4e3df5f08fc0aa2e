// Package auth implements the client-side login flow: credential
// validation, the exchange against the login service and handing the
// resulting token pair to the session manager.
package auth

// LoginRequest carries the credentials sent to the login service.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest carries a new-account registration.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	MemberName  string `json:"memberName" validate:"required"`
	FullName    string `json:"fullName" validate:"required"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// ForgotPasswordRequest asks the login service to start a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// loginData is the payload inside a successful login envelope.
type loginData struct {
	MainToken   string `json:"mainToken"`
	AccessToken string `json:"accessToken"`
	UserRoles   []int  `json:"userRoles"`
}

// LoginResult reports what a successful login established.
type LoginResult struct {
	FullName     string
	MemberName   string
	MemberNumber string
	HostURL      string
	Roles        []int
}
