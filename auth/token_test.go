package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"recipebox/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec(testSecret, time.Hour)

	for _, userID := range []string{"u1", "0f8fad5b-d9cb-469f-a165-70867728950e", "user with spaces"} {
		token, issued, err := codec.Issue(userID, "alice")
		require.NoError(t, err)

		claims, err := codec.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, issued.ID, claims.ID)
		assert.NotEmpty(t, claims.ID)
	}
}

func TestTokenCodec_DifferentSecret(t *testing.T) {
	token, _, err := NewTokenCodec([]byte("other-secret"), time.Hour).Issue("u1", "alice")
	require.NoError(t, err)

	_, err = NewTokenCodec(testSecret, time.Hour).Verify(token)
	assert.ErrorIs(t, err, errs.ErrInvalidSignature)
}

func TestTokenCodec_AlteredPayload(t *testing.T) {
	codec := NewTokenCodec(testSecret, time.Hour)
	token, _, err := codec.Issue("u1", "alice")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	payload["userId"] = "u2"
	forged, err := json.Marshal(payload)
	require.NoError(t, err)
	parts[1] = base64.RawURLEncoding.EncodeToString(forged)

	_, err = codec.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, errs.ErrInvalidSignature)
}

func TestTokenCodec_EveryPayloadCharacterFlip(t *testing.T) {
	// Expiry far enough ahead that no single altered character lands it in the past.
	codec := NewTokenCodec(testSecret, 100000*time.Hour).WithClock(fixedClock(time.Unix(1000, 0)))
	token, _, err := codec.Issue("u1", "alice")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := parts[1]

	for i := range payload {
		flipped := []byte(payload)
		if flipped[i] == 'A' {
			flipped[i] = 'B'
		} else {
			flipped[i] = 'A'
		}
		altered := parts[0] + "." + string(flipped) + "." + parts[2]

		_, err := codec.Verify(altered)
		assert.ErrorIs(t, err, errs.ErrInvalidSignature, "payload position %d", i)
	}
}

func TestTokenCodec_BrokenHeaderIsMalformed(t *testing.T) {
	codec := NewTokenCodec(testSecret, time.Hour)
	token, _, err := codec.Issue("u1", "alice")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	for _, header := range []string{"!!!", base64.RawURLEncoding.EncodeToString([]byte("not json"))} {
		_, err := codec.Verify(header + "." + parts[1] + "." + parts[2])
		assert.ErrorIs(t, err, errs.ErrMalformed, header)
	}

	_, err = codec.Verify(parts[0] + "." + parts[1])
	assert.ErrorIs(t, err, errs.ErrMalformed)
}

func TestTokenCodec_Expired(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := NewTokenCodec(testSecret, time.Hour).WithClock(fixedClock(issuedAt))
	token, _, err := codec.Issue("u1", "alice")
	require.NoError(t, err)

	later := codec.WithClock(fixedClock(issuedAt.Add(2 * time.Hour)))
	_, err = later.Verify(token)
	assert.ErrorIs(t, err, errs.ErrExpired)

	// expiry wins even when the signature is wrong too
	otherSecret := NewTokenCodec([]byte("other-secret"), time.Hour).WithClock(fixedClock(issuedAt.Add(2 * time.Hour)))
	_, err = otherSecret.Verify(token)
	assert.ErrorIs(t, err, errs.ErrExpired)
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := NewTokenCodec(testSecret, time.Hour)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c", "!!!.???.###"} {
		t.Run(token, func(t *testing.T) {
			_, err := codec.Verify(token)
			assert.ErrorIs(t, err, errs.ErrMalformed)
		})
	}
}

func TestTokenCodec_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = NewTokenCodec(testSecret, time.Hour).Verify(token)
	assert.ErrorIs(t, err, errs.ErrInvalidSignature)
}

func TestTokenCodec_MissingClaims(t *testing.T) {
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "u1"}).SignedString(testSecret)
	require.NoError(t, err)
	_, err = NewTokenCodec(testSecret, time.Hour).Verify(noExpiry)
	assert.ErrorIs(t, err, errs.ErrMalformed)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(testSecret)
	require.NoError(t, err)
	_, err = NewTokenCodec(testSecret, time.Hour).Verify(noUser)
	assert.ErrorIs(t, err, errs.ErrMalformed)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))

	_, err = HashPassword(strings.Repeat("é", 37))
	assert.ErrorIs(t, err, errs.ErrValidationFailed)
}
