package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nestegg/internal/core"
)

func TestHMACCodecRoundTrip(t *testing.T) {
	codec := NewHMACCodec("test-secret", time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := codec.Encode("alice", now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := codec.Decode(token, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "alice", principal.Username)
	assert.Equal(t, now.Add(time.Hour).Unix(), principal.ExpiresAt.Unix())
}

func TestHMACCodecExpiry(t *testing.T) {
	codec := NewHMACCodec("test-secret", time.Hour)
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exp := issued.Add(time.Hour)

	token, err := codec.Encode("alice", issued)
	require.NoError(t, err)

	tests := []struct {
		name    string
		now     time.Time
		wantErr bool
	}{
		{"well before expiry", issued.Add(time.Minute), false},
		{"one second before expiry", exp.Add(-time.Second), false},
		{"exactly at expiry", exp, true},
		{"after expiry", exp.Add(time.Second), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(token, tt.now)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrUnauthenticated)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHMACCodecRejectsTampering(t *testing.T) {
	codec := NewHMACCodec("test-secret", time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := codec.Encode("alice", now)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Swap the subject claim without re-signing.
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	tampered := strings.Replace(string(payload), "alice", "mallory", 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(tampered))

	_, err = codec.Decode(strings.Join(parts, "."), now)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestHMACCodecRejectsWrongSecret(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := NewHMACCodec("secret-a", time.Hour).Encode("alice", now)
	require.NoError(t, err)

	_, err = NewHMACCodec("secret-b", time.Hour).Decode(token, now)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestHMACCodecRejectsMalformed(t *testing.T) {
	codec := NewHMACCodec("test-secret", time.Hour)
	now := time.Now()

	for _, raw := range []string{
		"",
		"not-a-jwt",
		"a.b",
		"a.b.c",
		"eyJhbGciOiJub25lIn0.e30.",
	} {
		_, err := codec.Decode(raw, now)
		assert.ErrorIs(t, err, core.ErrUnauthenticated, "token %q", raw)
	}
}

func TestLegacyCodecRoundTrip(t *testing.T) {
	codec := NewLegacyCodec("alice")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := codec.Encode("alice", now)
	require.NoError(t, err)

	// The format is readable by anyone: base64(username:unix).
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Equal(t, "alice:"+"1772366400", string(decoded))

	principal, err := codec.Decode(token, now)
	require.NoError(t, err)
	assert.Equal(t, "alice", principal.Username)
	assert.True(t, principal.ExpiresAt.IsZero())
}

func TestLegacyCodecRejectsOtherUsername(t *testing.T) {
	codec := NewLegacyCodec("alice")
	now := time.Now()

	token, err := codec.Encode("mallory", now)
	require.NoError(t, err)

	_, err = codec.Decode(token, now)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestLegacyCodecRejectsMalformed(t *testing.T) {
	codec := NewLegacyCodec("alice")
	now := time.Now()

	for _, raw := range []string{
		"",
		"!!!not-base64!!!",
		base64.RawURLEncoding.EncodeToString([]byte("no-separator")),
		base64.RawURLEncoding.EncodeToString([]byte("alice:not-a-number")),
		base64.RawURLEncoding.EncodeToString([]byte(":1772366400")),
	} {
		_, err := codec.Decode(raw, now)
		assert.ErrorIs(t, err, core.ErrUnauthenticated, "token %q", raw)
	}
}
