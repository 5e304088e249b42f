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
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/urfave/negroni/v3"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/livekit-token-server/pkg/telemetry/prometheus"
)

type panicResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// jsonPanicFormatter renders a recovered panic as a JSON body. The recovery middleware has
// already written the 500 status.
type jsonPanicFormatter struct{}

func (jsonPanicFormatter) FormatPanicError(w http.ResponseWriter, _ *http.Request, infos *negroni.PanicInformation) {
	resp := panicResponse{Error: ErrInternal.Error()}
	if infos != nil {
		resp.Message = fmt.Sprint(infos.RecoveredPanic)
	}
	writeJSONBody(w, resp)
}

// negroniLogger routes negroni's own output through the structured logger
type negroniLogger struct{}

func (negroniLogger) Println(v ...interface{}) {
	logger.Errorw(strings.TrimSpace(fmt.Sprintln(v...)), nil)
}

func (negroniLogger) Printf(format string, v ...interface{}) {
	logger.Errorw(strings.TrimSpace(fmt.Sprintf(format, v...)), nil)
}

func newRecovery() *negroni.Recovery {
	r := negroni.NewRecovery()
	r.Logger = negroniLogger{}
	r.PrintStack = true
	r.Formatter = jsonPanicFormatter{}
	return r
}

// jsonContentType sets the response type up front, so that responses written after a panic are
// typed as well
func jsonContentType(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	next(w, r)
}

// optionsOK answers OPTIONS requests that the CORS layer did not treat as a preflight
func optionsOK(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	next(w, r)
}

func requestLogger(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	start := time.Now()
	next(w, r)

	status := http.StatusOK
	if rw, ok := w.(negroni.ResponseWriter); ok && rw.Status() != 0 {
		status = rw.Status()
	}
	prometheus.RecordHTTPRequest(r.URL.Path, status)

	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = originUnset
	}
	logger.Infow("request",
		"method", r.Method,
		"path", r.URL.Path,
		"origin", origin,
		"status", status,
		"duration", time.Since(start),
		"clientIP", GetClientIP(r),
	)
}
