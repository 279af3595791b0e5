// Package auth implements credential checking and bearer-token issuance for
// the single configured operator account.
package auth

import (
	"crypto/subtle"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"nestegg/internal/config"
	"nestegg/internal/core"
)

const bearerPrefix = "Bearer "

// Authenticator validates login credentials against configuration and
// validates presented tokens on each request.
type Authenticator struct {
	codec        TokenCodec
	username     string
	password     string
	passwordHash string
	now          func() time.Time
}

func New(cfg *config.Config) *Authenticator {
	var codec TokenCodec
	switch cfg.TokenMode {
	case config.TokenModeLegacy:
		codec = NewLegacyCodec(cfg.AuthUsername)
	default:
		codec = NewHMACCodec(cfg.AuthSecret, cfg.TokenTTL)
	}
	return &Authenticator{
		codec:        codec,
		username:     cfg.AuthUsername,
		password:     cfg.AuthPassword,
		passwordHash: cfg.AuthPasswordHash,
		now:          time.Now,
	}
}

// Login compares the submitted credentials against configuration and issues a
// token on match. Both fields are always checked so the rejection never
// reveals which one was wrong.
func (a *Authenticator) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1

	var passOK bool
	if a.passwordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	}

	if !userOK || !passOK {
		return "", core.ErrUnauthenticated
	}
	return a.codec.Encode(a.username, a.now())
}

// Authorize extracts the bearer token from a raw Authorization header value
// and decodes it. A missing header, wrong scheme or invalid token all map to
// core.ErrUnauthenticated.
func (a *Authenticator) Authorize(header string) (*Principal, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, core.ErrUnauthenticated
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if raw == "" {
		return nil, core.ErrUnauthenticated
	}
	return a.codec.Decode(raw, a.now())
}
