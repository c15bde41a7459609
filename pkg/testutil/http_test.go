package testutil

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpers(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`{"content_type":"` + r.Header.Get("Content-Type") + `"}`))
	})

	rr := DoRequest(echo, NewRequest(t, http.MethodGet, "/"))
	AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")

	rr = DoRequest(echo, WithBearer(NewJSONRequest(t, http.MethodPost, "/", map[string]string{"a": "b"}), "tok"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", DecodeResponse[map[string]string](t, rr)["content_type"])
}
