package core

import (
	"fmt"
	"time"

	"github.com/muurk/onvifctl/internal/soap"
)

// Session is the connection context shared by a module's requests. It is
// immutable once built.
type Session struct {
	clockDifference time.Duration
	address         soap.ServiceAddress
	username        string
	password        string
}

// NewSession builds a session. clockDifference is device time minus local
// time. An empty username yields unauthenticated requests.
func NewSession(clockDifference time.Duration, address soap.ServiceAddress, username, password string) (*Session, error) {
	if address.IsZero() {
		return nil, soap.NewInvalidArgument("NewSession", "address", "is missing")
	}
	if username == "" && password != "" {
		return nil, soap.NewInvalidArgument("NewSession", "username", "is empty but a password was given")
	}
	return &Session{
		clockDifference: clockDifference,
		address:         address,
		username:        username,
		password:        password,
	}, nil
}

// ClockDifference returns device time minus local time
func (s *Session) ClockDifference() time.Duration { return s.clockDifference }

// Address returns the device endpoint
func (s *Session) Address() soap.ServiceAddress { return s.address }

// Username returns the WS-Security user, or ""
func (s *Session) Username() string { return s.username }

// Password returns the plaintext password. Never log it.
func (s *Session) Password() string { return s.password }

// Authenticated reports whether requests carry a UsernameToken
func (s *Session) Authenticated() bool { return s.username != "" }

// Redacted describes the session without its password
func (s *Session) Redacted() string {
	user := "<none>"
	if s.username != "" {
		user = s.username
	}
	return fmt.Sprintf("%s user=%s clock_difference=%s", s.address, user, s.clockDifference)
}

// String implements fmt.Stringer so that %v never prints the password
func (s *Session) String() string { return s.Redacted() }
