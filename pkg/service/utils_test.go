package service_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/negroni/v3"

	"github.com/livekit/livekit-token-server/pkg/service"
)

func TestGetClientIP(t *testing.T) {
	cases := map[string]struct {
		header map[string]string
		ip     string
	}{
		"remote address": {nil, "192.0.2.1"},
		"cloudflare":     {map[string]string{"CF-Connecting-IP": "203.0.113.7", "X-Forwarded-For": "10.0.0.1"}, "203.0.113.7"},
		"forwarded":      {map[string]string{"X-Forwarded-For": "10.0.0.1"}, "10.0.0.1"},
		"real ip":        {map[string]string{"X-Real-IP": "10.0.0.2"}, "10.0.0.2"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range c.header {
				r.Header.Set(k, v)
			}
			require.Equal(t, c.ip, service.GetClientIP(r))
		})
	}
}

func TestBasicAuthMiddleware(t *testing.T) {
	n := negroni.New(negroni.HandlerFunc(service.NewBasicAuthMiddleware("prom", "scrape")))
	n.UseHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, c := range []struct {
		user, pass string
		set        bool
		status     int
	}{
		{set: false, status: http.StatusUnauthorized},
		{"prom", "wrong", true, http.StatusUnauthorized},
		{"other", "scrape", true, http.StatusUnauthorized},
		{"prom", "scrape", true, http.StatusNoContent},
	} {
		r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		if c.set {
			r.SetBasicAuth(c.user, c.pass)
		}
		w := httptest.NewRecorder()
		n.ServeHTTP(w, r)
		require.Equal(t, c.status, w.Code)
	}
}
