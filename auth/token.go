package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"recipebox/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by an access token.
type Claims struct {
	Username string `json:"username"`
	UserID   string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 access tokens with a server-held
// secret.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the codec that reads time from now.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	cp := *c
	cp.now = now
	return &cp
}

func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for the user that expires after the codec TTL.
func (c *TokenCodec) Issue(userID, username string) (string, *Claims, error) {
	now := c.now()
	claims := &Claims{
		Username: username,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Verify checks signature and expiry and returns the claims. Errors are
// errs.ErrMalformed, errs.ErrInvalidSignature or errs.ErrExpired. A token past
// its expiry reports ErrExpired even when its signature is also wrong.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, c.classifyMalformed(tokenString)
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, errs.ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		if claims.ExpiresAt != nil && !c.now().Before(claims.ExpiresAt.Time) {
			return nil, errs.ErrExpired
		}
		return nil, errs.ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return nil, errs.ErrMalformed
	default:
		return nil, errs.ErrInvalidSignature
	}

	if claims.UserID == "" {
		return nil, errs.ErrMalformed
	}
	return claims, nil
}

// classifyMalformed separates structural damage from a payload that no longer
// decodes. A token with three segments and a readable header is judged by its
// signature over header.payload, so a tampered payload reports
// ErrInvalidSignature.
func (c *TokenCodec) classifyMalformed(tokenString string) error {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return errs.ErrMalformed
	}
	rawHeader, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return errs.ErrMalformed
	}
	var header map[string]any
	if err := json.Unmarshal(rawHeader, &header); err != nil {
		return errs.ErrMalformed
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return errs.ErrInvalidSignature
	}
	if jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, c.secret) != nil {
		return errs.ErrInvalidSignature
	}
	return errs.ErrMalformed
}
