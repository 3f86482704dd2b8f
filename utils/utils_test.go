package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recipebox/errs"
	"recipebox/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   bool
		wantField string
	}{
		{"valid", `{"name":"Soup","imageUrl":"/x.jpg","ingredients":["water"],"instructions":"boil","cookingTime":10}`, false, ""},
		{"empty body", ``, true, "empty"},
		{"bad json", `{"name":`, true, "invalid JSON"},
		{"missing name", `{"imageUrl":"/x.jpg","ingredients":["water"],"instructions":"boil","cookingTime":10}`, true, "name"},
		{"empty ingredients", `{"name":"Soup","imageUrl":"/x.jpg","ingredients":[],"instructions":"boil","cookingTime":10}`, true, "ingredients"},
		{"zero cooking time", `{"name":"Soup","imageUrl":"/x.jpg","ingredients":["water"],"instructions":"boil","cookingTime":0}`, true, "cookingTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var in models.RecipeInput
			err := DecodeJSON(httptest.NewRecorder(), r, &in)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errs.ErrValidationFailed)
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Boil the water", SanitizeText("<b>Boil</b> the water<script>alert(1)</script>"))
	assert.Equal(t, "Salt & pepper", SanitizeText("  Salt & pepper "))
	assert.Equal(t, []string{"flour", "milk"}, SanitizeAll([]string{"flour", "<i></i>", " milk "}))
}

func TestSanitizeText_EncodedTags(t *testing.T) {
	for _, in := range []string{
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;",
		"Tasty &lt;img src=x onerror=alert(1)&gt; soup",
	} {
		out := SanitizeText(in)
		assert.NotContains(t, out, "<script", in)
		assert.NotContains(t, out, "<img", in)
	}
	assert.Equal(t, "Tasty  soup", SanitizeText("Tasty &lt;img src=x onerror=alert(1)&gt; soup"))
	assert.Equal(t, "a < b", SanitizeText("a &lt; b"))
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query     string
		wantSkip  int64
		wantLimit int64
	}{
		{"", 0, 10},
		{"page=3&limit=5", 10, 5},
		{"page=-1&limit=1000", 0, 100},
		{"page=abc&limit=xyz", 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			skip, limit := ParsePagination(r, 10, 100)
			assert.Equal(t, tt.wantSkip, skip)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestIdentityContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetUserIDFromRequest(r))

	r = r.WithContext(WithIdentity(context.Background(), Identity{UserID: "u1"}))
	assert.Equal(t, "u1", GetUserIDFromRequest(r))
}

func TestRespondWithAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	RespondWithAppError(rec, r, errs.Store("find", errors.New("secret connection string")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errs.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error)
	assert.NotContains(t, rec.Body.String(), "secret")
}
