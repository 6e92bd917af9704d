package soap

import (
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // SHA-1 is mandated by the WS-Security UsernameToken profile
	"encoding/base64"
	"fmt"
	"time"
)

const (
	// NonceSize is the number of random bytes in a UsernameToken nonce
	NonceSize = 16

	// CreatedLayout is the timestamp layout used for the Created element
	CreatedLayout = "2006-01-02T15:04:05.000Z"

	// PasswordDigestType is the Type attribute of the Password element
	PasswordDigestType = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-username-token-profile-1.0#PasswordDigest"

	// Base64EncodingType is the EncodingType attribute of the Nonce element
	Base64EncodingType = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-soap-message-security-1.0#Base64Binary"

	// WSSENamespace is the WS-Security extension namespace
	WSSENamespace = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"

	// WSUNamespace is the WS-Security utility namespace
	WSUNamespace = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-utility-1.0.xsd"
)

// Overridden in tests.
var (
	timeNow    = time.Now
	randReader = rand.Read
)

// UsernameToken holds the values of one WS-Security UsernameToken header.
// A token is valid for a single request.
type UsernameToken struct {
	Username string
	Nonce    string // base64 of the raw nonce bytes
	Created  string
	Digest   string
}

// NewUsernameToken builds a fresh token for username/password. The Created
// timestamp is the local time shifted by clockDifference so that it matches
// the device's clock.
func NewUsernameToken(username, password string, clockDifference time.Duration) (*UsernameToken, error) {
	nonce := make([]byte, NonceSize)
	if _, err := randReader(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	created := timeNow().Add(clockDifference).UTC().Format(CreatedLayout)

	return &UsernameToken{
		Username: username,
		Nonce:    base64.StdEncoding.EncodeToString(nonce),
		Created:  created,
		Digest:   PasswordDigest(nonce, created, password),
	}, nil
}

// PasswordDigest returns Base64(SHA1(nonce + created + password)).
func PasswordDigest(nonce []byte, created, password string) string {
	h := sha1.New() //nolint:gosec
	h.Write(nonce)
	h.Write([]byte(created))
	h.Write([]byte(password))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
