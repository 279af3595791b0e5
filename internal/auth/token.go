package auth

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"nestegg/internal/core"
)

// Principal is the identity carried by a validated token.
type Principal struct {
	Username  string
	ExpiresAt time.Time // zero for legacy tokens, which never expire
}

// TokenCodec encodes and decodes bearer tokens. Decode must fail closed:
// every malformed, tampered or expired token maps to core.ErrUnauthenticated
// and nothing from an unverified payload is ever returned.
type TokenCodec interface {
	Encode(username string, now time.Time) (string, error)
	Decode(token string, now time.Time) (*Principal, error)
}

// HMACCodec issues HS256-signed JWTs with an expiry claim.
type HMACCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewHMACCodec(secret string, ttl time.Duration) *HMACCodec {
	return &HMACCodec{secret: []byte(secret), ttl: ttl}
}

func (c *HMACCodec) Encode(username string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (c *HMACCodec) Decode(raw string, now time.Time) (*Principal, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		// The signature is verified against this key before any claim is
		// trusted; rejecting non-HMAC algorithms closes the alg-swap hole.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, core.ErrUnauthenticated
	}
	// exp exactly equal to now counts as expired.
	if claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return nil, core.ErrUnauthenticated
	}
	if claims.Subject == "" {
		return nil, core.ErrUnauthenticated
	}
	return &Principal{Username: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// LegacyCodec reproduces the unsigned token format of old deployments:
// base64(username:issuedUnix). There is no signature and no expiry check, so
// anyone who learns the configured username can mint a valid token. This is a
// documented known-weak compatibility mode, not a pattern to copy; the HMAC
// codec is the default.
type LegacyCodec struct {
	username string
}

func NewLegacyCodec(username string) *LegacyCodec {
	return &LegacyCodec{username: username}
}

func (c *LegacyCodec) Encode(username string, now time.Time) (string, error) {
	payload := username + ":" + strconv.FormatInt(now.Unix(), 10)
	return base64.RawURLEncoding.EncodeToString([]byte(payload)), nil
}

func (c *LegacyCodec) Decode(raw string, _ time.Time) (*Principal, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, core.ErrUnauthenticated
	}
	username, issued, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return nil, core.ErrUnauthenticated
	}
	if _, err := strconv.ParseInt(issued, 10, 64); err != nil {
		return nil, core.ErrUnauthenticated
	}
	// The only check this format supports: the decoded username must match
	// the configured one.
	if username == "" || username != c.username {
		return nil, core.ErrUnauthenticated
	}
	return &Principal{Username: username}, nil
}
