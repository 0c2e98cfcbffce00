package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenCodecRoundTrip(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret-0123456789abcdef0123"), time.Hour)

	token, expiresAt, err := codec.Issue(42, "ops@example.com", 0)
	require.NoError(t, err)
	require.Equal(t, 3, len(strings.Split(token, ".")))
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "ops@example.com", claims.Email)

	id, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
	require.NotEmpty(t, claims.ID)
}

func TestTokenCodecExpiry(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codec := NewTokenCodec([]byte("test-secret-0123456789abcdef0123"), time.Hour).
		WithClock(func() time.Time { return current })

	token, expiresAt, err := codec.Issue(7, "ops@example.com", time.Second)
	require.NoError(t, err)
	require.Equal(t, current.Add(time.Second), expiresAt)

	// Still inside the lifetime.
	_, err = codec.Verify(token)
	require.NoError(t, err)

	current = current.Add(2 * time.Second)
	_, err = codec.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenCodecTamperedPayload(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret-0123456789abcdef0123"), time.Hour)

	tokenA, _, err := codec.Issue(1, "a@example.com", 0)
	require.NoError(t, err)
	tokenB, _, err := codec.Issue(2, "b@example.com", 0)
	require.NoError(t, err)

	partsA := strings.Split(tokenA, ".")
	partsB := strings.Split(tokenB, ".")
	require.Len(t, partsA, 3)
	require.Len(t, partsB, 3)

	// Payload from one token with the signature of another.
	forged := partsA[0] + "." + partsB[1] + "." + partsA[2]
	_, err = codec.Verify(forged)
	require.ErrorIs(t, err, ErrTokenSignature)
}

func TestTokenCodecWrongSecret(t *testing.T) {
	issuer := NewTokenCodec([]byte("issuer-secret-0123456789abcdef01"), time.Hour)
	verifier := NewTokenCodec([]byte("another-secret-0123456789abcdef0"), time.Hour)

	token, _, err := issuer.Issue(9, "ops@example.com", 0)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrTokenSignature)
}

func TestTokenCodecMalformed(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret-0123456789abcdef0123"), time.Hour)

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c.d", "!!!.???.###"} {
		_, err := codec.Verify(raw)
		require.ErrorIs(t, err, ErrTokenMalformed, "input %q", raw)
	}
}
