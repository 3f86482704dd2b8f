package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recipebox/auth"
	"recipebox/db/memdb"
	"recipebox/errs"
	"recipebox/models"
	"recipebox/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("guard-secret")

type revokedSet map[string]bool

func (s revokedSet) Revoke(_ context.Context, id string, _ time.Duration) error {
	s[id] = true
	return nil
}

func (s revokedSet) IsRevoked(_ context.Context, id string) bool { return s[id] }

func setup(t *testing.T) (*Guard, *memdb.DB, *auth.TokenCodec, revokedSet) {
	t.Helper()
	store := memdb.New()
	require.NoError(t, store.CreateUser(context.Background(), &models.User{ID: "u1", Username: "alice"}))
	codec := auth.NewTokenCodec(secret, time.Hour)
	rev := revokedSet{}
	return NewGuard(codec, auth.NewResolver(store), rev), store, codec, rev
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"", "", errs.ErrMissingCredential},
		{"Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"bearer abc", "abc", nil},
		{"Bearer", "", errs.ErrMalformed},
		{"Bearer ", "", errs.ErrMalformed},
		{"Basic dXNlcjpwYXNz", "", errs.ErrMalformed},
		{"abc.def.ghi", "", errs.ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentify(t *testing.T) {
	g, store, codec, _ := setup(t)
	token, _, err := codec.Issue("u1", "alice")
	require.NoError(t, err)

	id, err := g.Identify(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, "alice", id.Username)
	assert.NotEmpty(t, id.TokenID)
	require.NotNil(t, id.User)
	assert.Equal(t, 1, store.CallCount("FindUserByID"))
}

func TestIdentify_MalformedNeverTouchesStore(t *testing.T) {
	g, store, _, _ := setup(t)

	for _, header := range []string{"", "Bearer", "Bearer not-a-token", "Bearer a.b.c"} {
		_, err := g.Identify(context.Background(), header)
		assert.Error(t, err, header)
	}
	assert.Zero(t, store.CallCount("FindUserByID"))
}

func TestIdentify_Failures(t *testing.T) {
	g, store, codec, rev := setup(t)

	other, _, err := auth.NewTokenCodec([]byte("other"), time.Hour).Issue("u1", "alice")
	require.NoError(t, err)
	_, err = g.Identify(context.Background(), "Bearer "+other)
	assert.ErrorIs(t, err, errs.ErrInvalidSignature)

	expired, _, err := auth.NewTokenCodec(secret, time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		Issue("u1", "alice")
	require.NoError(t, err)
	_, err = g.Identify(context.Background(), "Bearer "+expired)
	assert.ErrorIs(t, err, errs.ErrExpired)

	ghost, _, err := codec.Issue("gone", "ghost")
	require.NoError(t, err)
	_, err = g.Identify(context.Background(), "Bearer "+ghost)
	assert.ErrorIs(t, err, errs.ErrUserNotFound)

	token, claims, err := codec.Issue("u1", "alice")
	require.NoError(t, err)
	rev[claims.ID] = true
	_, err = g.Identify(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, err, errs.ErrRevoked)

	fresh, _, err := codec.Issue("u1", "alice")
	require.NoError(t, err)
	store.Fail("FindUserByID", errs.Store("find user", errors.New("connection reset")))
	_, err = g.Identify(context.Background(), "Bearer "+fresh)
	assert.ErrorIs(t, err, errs.ErrStoreFailure)
}

func serve(h httprouter.Handle, header string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	h(rec, req, nil)
	return rec
}

func TestAuthenticate(t *testing.T) {
	g, _, codec, _ := setup(t)
	token, _, err := codec.Issue("u1", "alice")
	require.NoError(t, err)

	var seen utils.Identity
	called := 0
	h := g.Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called++
		seen, _ = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	rec := serve(h, "Bearer "+token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u1", seen.UserID)

	for _, header := range []string{"", "Token " + token, "Bearer garbage"} {
		rec := serve(h, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)

		var body errs.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body.Error)
	}
	assert.Equal(t, 1, called)
}

func TestAuthenticate_StoreFailureIsOpaque(t *testing.T) {
	g, store, codec, _ := setup(t)
	token, _, err := codec.Issue("u1", "alice")
	require.NoError(t, err)
	store.Fail("FindUserByID", errs.Store("find user", errors.New("mongo: secret-host:27017 unreachable")))

	rec := serve(g.Authenticate(func(http.ResponseWriter, *http.Request, httprouter.Params) {
		t.Fatal("next must not run")
	}), "Bearer "+token)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-host")
}

func TestOptionalAuth(t *testing.T) {
	g, _, codec, _ := setup(t)
	token, _, err := codec.Issue("u1", "alice")
	require.NoError(t, err)

	var got string
	h := g.OptionalAuth(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		got = utils.GetUserIDFromRequest(r)
	})

	serve(h, "Bearer "+token)
	assert.Equal(t, "u1", got)

	rec := serve(h, "Bearer junk")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, got)
}
