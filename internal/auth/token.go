package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token verification failures. All three map to a uniform 401 at the HTTP
// boundary; the distinction exists for server-side logging only.
var (
	// ErrTokenMalformed indicates the token is not a well-formed JWT.
	ErrTokenMalformed = errors.New("auth: malformed token")
	// ErrTokenSignature indicates the HMAC signature does not match.
	ErrTokenSignature = errors.New("auth: invalid token signature")
	// ErrTokenExpired indicates the exp claim is in the past.
	ErrTokenExpired = errors.New("auth: token expired")
)

// Claims carries the payload of an issued bearer token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user ID.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("auth: parse subject: %w", err)
	}
	return id, nil
}

// TokenCodec issues and verifies HS256 bearer tokens. The signing secret is
// process-wide configuration loaded once at startup; rotating it invalidates
// every previously issued token.
type TokenCodec struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
}

// NewTokenCodec constructs a codec with the given secret and default TTL.
func NewTokenCodec(secret []byte, defaultTTL time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, defaultTTL: defaultTTL, now: time.Now}
}

// WithClock overrides the codec clock. Intended for tests.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c.now = now
	return c
}

// DefaultTTL returns the configured token lifetime.
func (c *TokenCodec) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// Issue signs a token for the given user. A non-positive ttl falls back to
// the configured default.
func (c *TokenCodec) Issue(userID int64, email string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := c.now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry and returns the decoded claims.
// Expiry is strict: no clock skew leeway.
func (c *TokenCodec) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	if claims.Subject == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func (c *TokenCodec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("auth: unexpected signing method %q", t.Method.Alg())
	}
	return c.secret, nil
}
