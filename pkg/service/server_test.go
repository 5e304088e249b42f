package service_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/livekit/livekit-token-server/pkg/auth"
	"github.com/livekit/livekit-token-server/pkg/auth/authfakes"
	"github.com/livekit/livekit-token-server/pkg/config"
	"github.com/livekit/livekit-token-server/pkg/service"
	"github.com/livekit/livekit-token-server/pkg/token"
	"github.com/livekit/livekit-token-server/pkg/utils"
)

const (
	testAPIKey    = "APItest"
	testAPISecret = "testsecrettestsecrettestsecrettestsecret"
	allowedOrigin = "http://localhost:5173"
)

func testConfig(t *testing.T) *config.Config {
	conf, err := config.NewConfig("", true, nil, nil)
	require.NoError(t, err)
	conf.Keys = map[string]string{testAPIKey: testAPISecret}
	return conf
}

func newTestServer(t *testing.T, signer auth.TokenSigner) *service.TokenServer {
	conf := testConfig(t)
	identity, err := conf.SigningIdentity()
	require.NoError(t, err)
	if signer == nil {
		signer = auth.NewAPIKeyTokenSigner(identity, utils.NewTokenID)
	}
	return service.NewTokenServer(
		conf,
		service.NewTokenService(token.NewIssuer(signer)),
		service.NewInfoService(conf, identity),
	)
}

func do(t *testing.T, s *service.TokenServer, method, path, body string, header ...string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		r.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func TestGetToken(t *testing.T) {
	t.Run("issues a verifiable token", func(t *testing.T) {
		s := newTestServer(t, nil)
		before := time.Now().UnixMilli()
		w, out := do(t, s, http.MethodPost, "/getToken", `{"room":"team-standup","username":"Alice"}`)
		after := time.Now().UnixMilli()

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Header().Get("Content-Type"), "application/json")
		expires := int64(out["expires"].(float64))
		require.GreaterOrEqual(t, expires, before+600_000)
		require.LessOrEqual(t, expires, after+600_000)

		v, err := auth.ParseAPIToken(out["token"].(string))
		require.NoError(t, err)
		require.Equal(t, testAPIKey, v.APIKey())
		require.Equal(t, "Alice", v.Identity())
		grants, err := v.Verify(testAPISecret)
		require.NoError(t, err)
		require.Equal(t, "team-standup", grants.Video.Room)
		require.True(t, grants.Video.RoomJoin)
		require.True(t, grants.Video.GetCanPublish())
		require.False(t, grants.Video.GetCanUpdateOwnMetadata())
	})

	t.Run("explicit permissions", func(t *testing.T) {
		s := newTestServer(t, nil)
		w, out := do(t, s, http.MethodPost, "/getToken",
			`{"room":"lobby","username":"viewer","permissions":{"canPublish":false,"canUpdateMetadata":true}}`)
		require.Equal(t, http.StatusOK, w.Code)

		v, err := auth.ParseAPIToken(out["token"].(string))
		require.NoError(t, err)
		grants, err := v.Verify(testAPISecret)
		require.NoError(t, err)
		require.False(t, grants.Video.GetCanPublish())
		require.True(t, grants.Video.GetCanSubscribe())
		require.True(t, grants.Video.GetCanUpdateOwnMetadata())
	})

	t.Run("two requests get distinct tokens", func(t *testing.T) {
		s := newTestServer(t, nil)
		body := `{"room":"lobby","username":"alice"}`
		_, a := do(t, s, http.MethodPost, "/getToken", body)
		_, b := do(t, s, http.MethodPost, "/getToken", body)
		require.NotEqual(t, a["token"], b["token"])
	})

	t.Run("room too short", func(t *testing.T) {
		signer := &authfakes.FakeTokenSigner{}
		s := newTestServer(t, signer)
		w, out := do(t, s, http.MethodPost, "/getToken", `{"room":"ab","username":"Alice"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, map[string]interface{}{"error": "room name too short"}, out)
		require.Zero(t, signer.SignCallCount())
	})

	t.Run("missing username is never signed", func(t *testing.T) {
		signer := &authfakes.FakeTokenSigner{}
		s := newTestServer(t, signer)
		w, out := do(t, s, http.MethodPost, "/getToken", `{"room":"lobby"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "missing participant", out["error"])
		require.Zero(t, signer.SignCallCount())
	})

	t.Run("empty body", func(t *testing.T) {
		s := newTestServer(t, nil)
		w, out := do(t, s, http.MethodPost, "/getToken", "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "missing room", out["error"])
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer(t, nil)
		w, out := do(t, s, http.MethodPost, "/getToken", `{"room":`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, token.ErrMalformedRequest.Error(), out["error"])
	})

	t.Run("trailing data after body", func(t *testing.T) {
		signer := &authfakes.FakeTokenSigner{}
		s := newTestServer(t, signer)
		w, out := do(t, s, http.MethodPost, "/getToken", `{"room":"lobby","username":"alice"} trailing-garbage`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, token.ErrMalformedRequest.Error(), out["error"])
		require.Equal(t, 0, signer.SignCallCount())

		w, _ = do(t, s, http.MethodPost, "/getToken", `{"room":"lobby","username":"alice"}{}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("trailing whitespace is accepted", func(t *testing.T) {
		s := newTestServer(t, nil)
		w, out := do(t, s, http.MethodPost, "/getToken", "{\"room\":\"lobby\",\"username\":\"alice\"}\n  ")
		require.Equal(t, http.StatusOK, w.Code)
		require.NotEmpty(t, out["token"])
	})

	t.Run("signing failure", func(t *testing.T) {
		signer := &authfakes.FakeTokenSigner{}
		signer.SignReturns("", errors.New("bad secret"))
		s := newTestServer(t, signer)
		w, out := do(t, s, http.MethodPost, "/getToken", `{"room":"lobby","username":"alice"}`)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.Equal(t, map[string]interface{}{
			"error":   "could not create token",
			"details": "bad secret",
		}, out)
	})

	t.Run("panic is recovered as json", func(t *testing.T) {
		signer := &authfakes.FakeTokenSigner{}
		signer.SignStub = func(*auth.ClaimGrants, time.Time, time.Duration) (string, error) {
			panic("boom")
		}
		s := newTestServer(t, signer)
		w, out := do(t, s, http.MethodPost, "/getToken", `{"room":"lobby","username":"alice"}`)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.Contains(t, w.Header().Get("Content-Type"), "application/json")
		require.Equal(t, "boom", out["message"])
		require.NotEmpty(t, out["error"])
	})

	t.Run("wrong method", func(t *testing.T) {
		s := newTestServer(t, nil)
		w, out := do(t, s, http.MethodGet, "/getToken", "")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "not found", out["error"])
	})
}

func TestInfoEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("health", func(t *testing.T) {
		w, out := do(t, s, http.MethodGet, "/health", "", "Origin", allowedOrigin)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "ok", out["status"])
		require.Equal(t, "LiveKit Token Server", out["server"])
		_, err := time.Parse(time.RFC3339, out["timestamp"].(string))
		require.NoError(t, err)
		require.Equal(t, map[string]interface{}{"origin": allowedOrigin, "allowed": true}, out["cors"])
		require.Equal(t, map[string]interface{}{"apiKey": testAPIKey, "serverUrl": "ws://localhost:7880"}, out["livekit"])
	})

	t.Run("health from unknown origin", func(t *testing.T) {
		_, out := do(t, s, http.MethodGet, "/health", "", "Origin", "https://evil.example.com")
		require.Equal(t, false, out["cors"].(map[string]interface{})["allowed"])
	})

	t.Run("root", func(t *testing.T) {
		w, out := do(t, s, http.MethodGet, "/", "")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "running", out["status"])
		require.Contains(t, out["endpoints"], "/getToken")
		require.Equal(t, float64(3001), out["config"].(map[string]interface{})["port"])
	})

	t.Run("not found", func(t *testing.T) {
		w, out := do(t, s, http.MethodGet, "/missing?x=1", "")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "not found", out["error"])
		require.Equal(t, "/missing?x=1", out["path"])
		require.Equal(t, []interface{}{"/", "/health", "/getToken"}, out["availableEndpoints"])
	})
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("preflight from allowed origin", func(t *testing.T) {
		w, _ := do(t, s, http.MethodOptions, "/getToken", "",
			"Origin", allowedOrigin,
			"Access-Control-Request-Method", http.MethodPost,
			"Access-Control-Request-Headers", "Content-Type",
		)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, allowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("plain options request is answered", func(t *testing.T) {
		for _, path := range []string{"/getToken", "/health", "/unknown"} {
			w, _ := do(t, s, http.MethodOptions, path, "")
			require.Equal(t, http.StatusOK, w.Code, path)
		}
	})

	t.Run("request from unknown origin is served without cors headers", func(t *testing.T) {
		w, out := do(t, s, http.MethodPost, "/getToken", `{"room":"lobby","username":"alice"}`,
			"Origin", "https://evil.example.com")
		require.Equal(t, http.StatusOK, w.Code)
		require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		require.NotEmpty(t, out["token"])
	})
}

func TestServerLifecycle(t *testing.T) {
	conf := testConfig(t)
	conf.Port = 0
	conf.BindAddresses = []string{"127.0.0.1"}

	s, err := service.InitializeServer(conf)
	require.NoError(t, err)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Start()
	}()
	require.Eventually(t, s.IsRunning, 2*time.Second, 10*time.Millisecond)

	s.Stop()
	s.Stop()
	select {
	case err := <-errChan:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
	<-s.Closed()
	require.False(t, s.IsRunning())
}

func TestServerStopBeforeStart(t *testing.T) {
	conf := testConfig(t)
	conf.Port = 0
	conf.BindAddresses = []string{"127.0.0.1"}

	s, err := service.InitializeServer(conf)
	require.NoError(t, err)

	s.Stop()
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Start()
	}()

	select {
	case err := <-errChan:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
	<-s.Closed()
	require.False(t, s.IsRunning())
}

func TestInitializeServerRequiresSigningKey(t *testing.T) {
	conf := testConfig(t)
	conf.Keys["APIother"] = "othersecretothersecretothersecretother"
	_, err := service.InitializeServer(conf)
	require.ErrorIs(t, err, config.ErrSigningKeyAmbiguous)
}
