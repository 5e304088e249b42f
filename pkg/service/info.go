// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"net/http"
	"time"

	"github.com/thoas/go-funk"

	"github.com/livekit/livekit-token-server/pkg/auth"
	"github.com/livekit/livekit-token-server/pkg/config"
	"github.com/livekit/livekit-token-server/pkg/token"
	"github.com/livekit/livekit-token-server/version"
)

const (
	serverName      = "LiveKit Token Server"
	originUnset     = "not specified"
	timestampFormat = "2006-01-02T15:04:05.000Z"
)

var availableEndpoints = []string{"/", "/health", "/getToken"}

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Server    string         `json:"server"`
	Version   string         `json:"version"`
	CORS      healthCORS     `json:"cors"`
	LiveKit   healthUpstream `json:"livekit"`
}

type healthCORS struct {
	Origin  string `json:"origin"`
	Allowed bool   `json:"allowed"`
}

type healthUpstream struct {
	APIKey    string `json:"apiKey"`
	ServerURL string `json:"serverUrl"`
}

type infoResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	CORS      infoCORS          `json:"cors"`
	Endpoints map[string]string `json:"endpoints"`
	Config    infoConfig        `json:"config"`
	Usage     infoUsage         `json:"usage"`
}

type infoCORS struct {
	Enabled        bool     `json:"enabled"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

type infoConfig struct {
	APIKey        string `json:"apiKey"`
	LiveKitServer string `json:"livekitServer"`
	Port          uint32 `json:"port"`
}

type infoUsage struct {
	GetToken usageEndpoint `json:"getToken"`
}

type usageEndpoint struct {
	Method string      `json:"method"`
	URL    string      `json:"url"`
	Body   interface{} `json:"body"`
}

type notFoundResponse struct {
	Error              string   `json:"error"`
	Path               string   `json:"path"`
	AvailableEndpoints []string `json:"availableEndpoints"`
}

// InfoService serves the informational endpoints, /health and /
type InfoService struct {
	apiKey         string
	liveKitURL     string
	port           uint32
	allowedOrigins []string
	now            func() time.Time
}

func NewInfoService(conf *config.Config, identity auth.SigningIdentity) *InfoService {
	return &InfoService{
		apiKey:         identity.KeyID,
		liveKitURL:     conf.LiveKitURL,
		port:           conf.Port,
		allowedOrigins: conf.CORS.AllowedOrigins,
		now:            time.Now,
	}
}

func (s *InfoService) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		notFound(w, r)
		return
	}

	origin := r.Header.Get("Origin")
	cors := healthCORS{Origin: origin, Allowed: true}
	if origin == "" {
		cors.Origin = originUnset
	} else {
		cors.Allowed = funk.ContainsString(s.allowedOrigins, origin)
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: s.now().UTC().Format(timestampFormat),
		Server:    serverName,
		Version:   version.Version,
		CORS:      cors,
		LiveKit: healthUpstream{
			APIKey:    s.apiKey,
			ServerURL: s.liveKitURL,
		},
	})
}

func (s *InfoService) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || r.Method != http.MethodGet {
		notFound(w, r)
		return
	}

	granted := true
	writeJSON(w, http.StatusOK, infoResponse{
		Message: serverName,
		Version: version.Version,
		Status:  "running",
		CORS: infoCORS{
			Enabled:        len(s.allowedOrigins) > 0,
			AllowedOrigins: s.allowedOrigins,
		},
		Endpoints: map[string]string{
			"/":         "GET - server information",
			"/health":   "GET - health check",
			"/getToken": "POST - issue an access token",
		},
		Config: infoConfig{
			APIKey:        s.apiKey,
			LiveKitServer: s.liveKitURL,
			Port:          s.port,
		},
		Usage: infoUsage{
			GetToken: usageEndpoint{
				Method: http.MethodPost,
				URL:    "/getToken",
				Body: getTokenRequest{
					Room:     "room-name",
					Username: "user name",
					Permissions: token.Permissions{
						CanPublish:     &granted,
						CanSubscribe:   &granted,
						CanPublishData: &granted,
					},
				},
			},
		},
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, notFoundResponse{
		Error:              ErrNotFound.Error(),
		Path:               r.URL.RequestURI(),
		AvailableEndpoints: availableEndpoints,
	})
}
