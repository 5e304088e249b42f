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

package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

const (
	livekitNamespace string = "livekit"

	StatusSuccess        = "success"
	StatusInvalidRequest = "invalid_request"
	StatusSigningError   = "signing_error"
)

var (
	initialized atomic.Bool

	// paths reported as-is, everything else is "other" to keep label cardinality bounded
	knownPaths = map[string]struct{}{
		"/":         {},
		"/health":   {},
		"/getToken": {},
	}

	promTokenIssued        *prometheus.CounterVec
	promTokenIssueDuration prometheus.Histogram
	promHTTPRequests       *prometheus.CounterVec
)

func Init() {
	if initialized.Swap(true) {
		return
	}

	promTokenIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: livekitNamespace,
		Subsystem: "token",
		Name:      "issued_total",
		Help:      "Join tokens requested, by outcome.",
	}, []string{"status"})
	promTokenIssueDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: livekitNamespace,
		Subsystem: "token",
		Name:      "issue_duration_seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})
	promHTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: livekitNamespace,
		Subsystem: "token",
		Name:      "http_requests_total",
	}, []string{"path", "status_family"})

	prometheus.MustRegister(promTokenIssued)
	prometheus.MustRegister(promTokenIssueDuration)
	prometheus.MustRegister(promHTTPRequests)
}

func RecordTokenIssued(status string, duration time.Duration) {
	if !initialized.Load() {
		return
	}
	promTokenIssued.WithLabelValues(status).Inc()
	promTokenIssueDuration.Observe(duration.Seconds())
}

func RecordHTTPRequest(path string, status int) {
	if !initialized.Load() {
		return
	}
	if _, ok := knownPaths[path]; !ok {
		path = "other"
	}
	promHTTPRequests.WithLabelValues(path, strconv.Itoa(status/100)+"xx").Inc()
}
