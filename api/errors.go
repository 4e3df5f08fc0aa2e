// Package api provides the HTTP clients of the SDK: the tenant-host client
// used for all resource traffic and the dedicated login client. Every
// transport or HTTP-level failure is normalised into a structured error; the
// raw transport error never reaches callers.
package api

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// User-facing messages, keyed by failure class. The backend's own message is
// preferred for validation rejections that follow the standard envelope.
const (
	MsgGenericError       = "Bir hata oluştu"
	MsgBadRequest         = "Geçersiz istek"
	MsgUnauthorized       = "Oturum süresi dolmuş"
	MsgForbidden          = "Bu işlem için yetkiniz bulunmuyor"
	MsgNotFound           = "İstenen kaynak bulunamadı"
	MsgServerError        = "Sunucu hatası oluştu"
	MsgServiceUnavailable = "Sunucu geçici olarak kullanılamıyor"
	MsgNetworkUnreachable = "Sunucuya bağlanılamadı"
	MsgLoginFailed        = "Giriş yapılırken bir hata oluştu"
)

// Error is the normalised shape every failed request resolves to. ErrorID is
// a correlation id that also appears in the log line for the failure.
type Error struct {
	ErrorID    string `json:"errorId"`
	Message    string `json:"message"`
	Status     int    `json:"status,omitempty"`
	StatusText string `json:"statusText,omitempty"`
	URL        string `json:"url,omitempty"`
	Method     string `json:"method,omitempty"`
	Data       any    `json:"data,omitempty"`
	Err        error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s - %d: %s", e.Method, e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(message string, status int, statusText, url, method string, data any, cause error) *Error {
	return &Error{
		ErrorID:    uuid.NewString(),
		Message:    message,
		Status:     status,
		StatusText: statusText,
		URL:        url,
		Method:     method,
		Data:       data,
		Err:        cause,
	}
}

// LoginError is the narrower error shape of the login client; login-flow
// callers only need the message and status.
type LoginError struct {
	Message    string `json:"message"`
	Status     int    `json:"status,omitempty"`
	StatusText string `json:"statusText,omitempty"`
	Err        error  `json:"-"`
}

func (e *LoginError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("login failed (%d): %s", e.Status, e.Message)
	}
	return "login failed: " + e.Message
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// Envelope is the backend's standard response wrapper.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// messageForStatus maps an HTTP status to the user-facing message, preferring
// the backend's envelope message for validation rejections.
func messageForStatus(status int, envelope *Envelope) string {
	switch status {
	case 400:
		if envelope != nil && !envelope.Success && envelope.Message != "" {
			return envelope.Message
		}
		return MsgBadRequest
	case 401:
		return MsgUnauthorized
	case 403:
		return MsgForbidden
	case 404:
		return MsgNotFound
	case 500:
		return MsgServerError
	case 502, 503, 504:
		return MsgServiceUnavailable
	default:
		if envelope != nil && !envelope.Success && envelope.Message != "" {
			return envelope.Message
		}
		return MsgGenericError
	}
}
