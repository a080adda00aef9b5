// internal/domain/session.go
package domain

import (
	"errors"
	"time"
)

// Session is the explicit caller identity attached to a request. It is
// created when the identity provider asserts a login, carried by an opaque
// bearer token, and invalidated on logout. There is no ambient global
// current-user state anywhere in the service.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// StartSessionRequest carries an identity already asserted by the external
// identity provider; this service only materializes the session object.
type StartSessionRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

func (r *StartSessionRequest) Validate() error {
	if r.UserID == "" {
		return errors.New("user_id is required")
	}
	if r.Username == "" {
		return errors.New("username is required")
	}
	return nil
}
