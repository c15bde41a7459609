package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"touristid/pkg/requestcontext"
)

func TestClientMetadata(t *testing.T) {
	var gotIP, gotDevice string
	h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotDevice = requestcontext.Device(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "203.0.113.7", gotIP)
	assert.Contains(t, gotDevice, "Chrome")
}

func TestDeviceName(t *testing.T) {
	assert.Equal(t, "Unknown device", DeviceName(""))
	assert.Equal(t, "Bot", DeviceName("Googlebot/2.1 (+http://www.google.com/bot.html)"))
}

func TestClientIPFromRequest(t *testing.T) {
	t.Run("falls back to remote addr without port", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.10:5555"
		assert.Equal(t, "192.0.2.10", ClientIPFromRequest(req))
	})

	t.Run("prefers X-Real-IP over remote addr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "198.51.100.3")
		assert.Equal(t, "198.51.100.3", ClientIPFromRequest(req))
	})
}
