package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenInvalid indicates a token failed signature or claim validation.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired indicates a cryptographically valid token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// Claims is the signed claim set carried by both token kinds. The kind claim
// prevents a refresh token from being presented where an access token is
// expected and vice versa.
type Claims struct {
	UserID string `json:"uid"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// Codec signs and verifies paired access and refresh tokens with distinct
// secrets and lifetimes. It is stateless and safe for concurrent use.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	now func() time.Time
}

// NewCodec constructs a Codec from the two signing secrets and their TTLs.
func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Codec {
	if accessSecret == "" || refreshSecret == "" {
		panic("auth: token secrets must not be empty")
	}
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SignAccess mints a short-lived access token for the user.
func (c *Codec) SignAccess(userID string) (string, time.Time, error) {
	return c.sign(userID, kindAccess, c.accessSecret, c.accessTTL)
}

// SignRefresh mints a long-lived refresh token for the user.
func (c *Codec) SignRefresh(userID string) (string, time.Time, error) {
	return c.sign(userID, kindRefresh, c.refreshSecret, c.refreshTTL)
}

// VerifyAccess validates an access token and returns the claimed user ID.
func (c *Codec) VerifyAccess(token string) (string, error) {
	return c.verify(token, kindAccess, c.accessSecret)
}

// VerifyRefresh validates a refresh token and returns the claimed user ID.
func (c *Codec) VerifyRefresh(token string) (string, error) {
	return c.verify(token, kindRefresh, c.refreshSecret)
}

func (c *Codec) sign(userID, kind string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := c.now()
	expiresAt := now.Add(ttl)

	// A fresh jti per token keeps two tokens minted within the same second
	// from being byte-identical, which rotation depends on.
	claims := Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}

	return signed, expiresAt, nil
}

func (c *Codec) verify(token, kind string, secret []byte) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Kind != kind || claims.UserID == "" {
		return "", ErrTokenInvalid
	}

	return claims.UserID, nil
}
