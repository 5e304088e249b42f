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
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/livekit-token-server/pkg/telemetry/prometheus"
	"github.com/livekit/livekit-token-server/pkg/token"
)

const maxRequestBodySize = 100 << 10

type getTokenRequest struct {
	Room        string            `json:"room"`
	Username    string            `json:"username"`
	Permissions token.Permissions `json:"permissions"`
}

type getTokenResponse struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"`
}

// TokenService issues join tokens on POST /getToken
type TokenService struct {
	issuer *token.Issuer
}

func NewTokenService(issuer *token.Issuer) *TokenService {
	return &TokenService{
		issuer: issuer,
	}
}

func (s *TokenService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		notFound(w, r)
		return
	}

	req, err := decodeTokenRequest(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(w, r, ErrRequestTooLarge, nil)
		} else {
			handleError(w, r, token.ErrMalformedRequest, err)
		}
		prometheus.RecordTokenIssued(prometheus.StatusInvalidRequest, 0)
		return
	}

	start := time.Now()
	cred, err := s.issuer.Issue(r.Context(), token.JoinRequest{
		Room:        req.Room,
		Participant: req.Username,
		Permissions: req.Permissions,
	})
	switch {
	case err == nil:
	case token.IsInvalidRequest(err):
		prometheus.RecordTokenIssued(prometheus.StatusInvalidRequest, time.Since(start))
		handleError(w, r, err, nil, "room", req.Room, "participant", req.Username)
		return
	case token.IsSigningError(err):
		prometheus.RecordTokenIssued(prometheus.StatusSigningError, time.Since(start))
		handleError(w, r, ErrTokenNotCreated, errors.Unwrap(err), "room", req.Room, "participant", req.Username)
		return
	default:
		// request context ended before signing
		handleError(w, r, ErrInternal, err)
		return
	}
	prometheus.RecordTokenIssued(prometheus.StatusSuccess, time.Since(start))

	logger.Infow("token issued",
		"room", cred.Grant.Room,
		"participant", cred.Grant.Participant,
		"canPublish", cred.Grant.CanPublish,
		"canSubscribe", cred.Grant.CanSubscribe,
		"canPublishData", cred.Grant.CanPublishData,
		"canUpdateMetadata", cred.Grant.CanUpdateMetadata,
	)
	writeJSON(w, http.StatusOK, getTokenResponse{
		Token:   cred.Token,
		Expires: cred.ExpiresAtMillis(),
	})
}

// decodeTokenRequest reads exactly one JSON object. An empty body decodes as an empty request.
func decodeTokenRequest(w http.ResponseWriter, r *http.Request) (getTokenRequest, error) {
	var req getTokenRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, nil
		}
		return req, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after request body")
		}
		return req, err
	}
	return req, nil
}
