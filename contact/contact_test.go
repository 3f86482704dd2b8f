package contact

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recipebox/db/memdb"
	"recipebox/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submit(h *Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	h.Submit(rec, req, nil)
	return rec
}

func TestSubmit(t *testing.T) {
	store := memdb.New()
	h := NewHandler(store)

	rec := submit(h, `{"name":"Ann","email":"Ann@Example.com","message":"<b>Love</b> the soup"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	msgs := store.Contacts()
	require.Len(t, msgs, 1)
	assert.Equal(t, "ann@example.com", msgs[0].Email)
	assert.Equal(t, "Love the soup", msgs[0].Message)
	assert.False(t, msgs[0].CreatedAt.IsZero())
}

func TestSubmit_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"name":"Ann","message":"hi"}`},
		{"bad email", `{"name":"Ann","email":"ann","message":"hi"}`},
		{"missing message", `{"name":"Ann","email":"ann@example.com"}`},
		{"missing name", `{"email":"ann@example.com","message":"hi"}`},
		{"markup-only message", `{"name":"Ann","email":"ann@example.com","message":"<b></b>"}`},
		{"script-only message", `{"name":"Ann","email":"ann@example.com","message":"<script>x</script>"}`},
		{"markup-only name", `{"name":"<i> </i>","email":"ann@example.com","message":"hi"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memdb.New()
			rec := submit(NewHandler(store), tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, store.Contacts())
		})
	}
}

func TestSubmit_StoreFailure(t *testing.T) {
	store := memdb.New()
	store.Fail("CreateContact", errs.Store("insert contact", errors.New("disk full")))

	rec := submit(NewHandler(store), `{"name":"Ann","email":"ann@example.com","message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk full")
}
