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
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/livekit/protocol/logger"
	"github.com/livekit/psrpc"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	writeJSONBody(w, body)
}

func writeJSONBody(w http.ResponseWriter, body interface{}) {
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Debugw("could not write response", "error", err)
	}
}

// statusFromError maps an error code onto the HTTP status reported to the caller
func statusFromError(err error) int {
	var pe psrpc.Error
	if !errors.As(err, &pe) {
		return http.StatusInternalServerError
	}
	switch pe.Code() {
	case psrpc.InvalidArgument:
		return http.StatusBadRequest
	case psrpc.NotFound:
		return http.StatusNotFound
	case psrpc.FailedPrecondition:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// handleError logs and writes err as a JSON body. Client errors carry only a reason, server errors
// carry the public message with the cause in details.
func handleError(w http.ResponseWriter, r *http.Request, public error, cause error, keysAndValues ...interface{}) {
	status := statusFromError(public)
	keysAndValues = append(keysAndValues, "status", status)
	if r != nil && r.URL != nil {
		keysAndValues = append(keysAndValues, "method", r.Method, "path", r.URL.Path)
	}

	resp := errorResponse{Error: public.Error()}
	logErr := public
	if cause != nil {
		logErr = cause
		if status >= http.StatusInternalServerError {
			resp.Details = cause.Error()
		}
	}
	if r == nil || (!errors.Is(logErr, context.Canceled) && !errors.Is(r.Context().Err(), context.Canceled)) {
		if status >= http.StatusInternalServerError {
			logger.GetLogger().WithCallDepth(1).Errorw("error handling request", logErr, keysAndValues...)
		} else {
			logger.GetLogger().WithCallDepth(1).Debugw("rejected request", append(keysAndValues, "reason", logErr.Error())...)
		}
	}
	writeJSON(w, status, resp)
}

func GetClientIP(r *http.Request) string {
	// CF proxy typically is first thing the user reaches
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	ip, _, _ := net.SplitHostPort(r.RemoteAddr)
	return ip
}
