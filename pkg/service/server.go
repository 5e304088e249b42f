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
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/urfave/negroni/v3"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/livekit-token-server/pkg/config"
	"github.com/livekit/livekit-token-server/pkg/telemetry/prometheus"
)

const shutdownTimeout = 5 * time.Second

type TokenServer struct {
	config     *config.Config
	httpServer *http.Server
	promServer *http.Server
	running    atomic.Bool
	doneChan   chan struct{}
	closedChan chan struct{}
	stopOnce   sync.Once
	closedOnce sync.Once
}

func NewTokenServer(conf *config.Config, tokenService *TokenService, infoService *InfoService) *TokenServer {
	s := &TokenServer{
		config:     conf,
		doneChan:   make(chan struct{}),
		closedChan: make(chan struct{}),
	}

	middlewares := []negroni.Handler{
		// always the first
		newRecovery(),
		negroni.HandlerFunc(jsonContentType),
		negroni.HandlerFunc(requestLogger),
		newCORS(conf.CORS),
		negroni.HandlerFunc(optionsOK),
	}

	mux := http.NewServeMux()
	mux.Handle("/getToken", tokenService)
	mux.HandleFunc("/health", infoService.Health)
	mux.HandleFunc("/", infoService.Root)

	s.httpServer = &http.Server{
		Handler:           configureMiddlewares(mux, middlewares...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if conf.PrometheusPort > 0 {
		prometheus.Init()
		var promHandler http.Handler = promhttp.Handler()
		if auth := conf.PrometheusAuth; auth.Username != "" {
			promHandler = configureMiddlewares(promHandler, negroni.HandlerFunc(NewBasicAuthMiddleware(auth.Username, auth.Password)))
		}
		s.promServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", conf.PrometheusPort),
			Handler:           promHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return s
}

// Handler is the full middleware chain, for use without a listener
func (s *TokenServer) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *TokenServer) IsRunning() bool {
	return s.running.Load()
}

// Start listens on every configured address and blocks until Stop is called.
// If Stop was called first, Start shuts down as soon as its listeners are up.
func (s *TokenServer) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	addresses := s.config.BindAddresses
	if len(addresses) == 0 {
		addresses = []string{""}
	}

	// ensure we could listen
	listeners := make([]net.Listener, 0, len(addresses)+1)
	closeAll := func() {
		for _, ln := range listeners {
			_ = ln.Close()
		}
	}
	for _, addr := range addresses {
		ln, err := net.Listen("tcp", net.JoinHostPort(addr, strconv.Itoa(int(s.config.Port))))
		if err != nil {
			closeAll()
			return err
		}
		listeners = append(listeners, ln)
	}
	var promListener net.Listener
	if s.promServer != nil {
		ln, err := net.Listen("tcp", s.promServer.Addr)
		if err != nil {
			closeAll()
			return err
		}
		promListener = ln
	}

	var serveGroup errgroup.Group
	for _, ln := range listeners {
		ln := ln
		serveGroup.Go(func() error {
			return ignoreClosed(s.httpServer.Serve(ln))
		})
	}
	if promListener != nil {
		serveGroup.Go(func() error {
			return ignoreClosed(s.promServer.Serve(promListener))
		})
	}
	go func() {
		if err := serveGroup.Wait(); err != nil {
			logger.Errorw("could not serve", err)
			s.Stop()
		}
	}()

	values := []interface{}{
		"port", s.config.Port,
		"bindAddresses", addresses,
		"livekitURL", s.config.LiveKitURL,
		"allowedOrigins", s.config.CORS.AllowedOrigins,
	}
	if s.promServer != nil {
		values = append(values, "prometheusPort", s.config.PrometheusPort)
	}
	logger.Infow("starting token server", values...)

	defer func() {
		s.running.Store(false)
		s.closedOnce.Do(func() { close(s.closedChan) })
	}()

	<-s.doneChan

	// wait for in-flight requests
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.httpServer.Shutdown(ctx)
	})
	if s.promServer != nil {
		g.Go(func() error {
			return s.promServer.Shutdown(ctx)
		})
	}
	return g.Wait()
}

// Stop signals Start to shut down. It is safe to call more than once, and before Start.
func (s *TokenServer) Stop() {
	s.stopOnce.Do(func() { close(s.doneChan) })
}

// Closed is closed once Start has returned
func (s *TokenServer) Closed() <-chan struct{} {
	return s.closedChan
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func configureMiddlewares(handler http.Handler, middlewares ...negroni.Handler) *negroni.Negroni {
	n := negroni.New()
	for _, m := range middlewares {
		n.Use(m)
	}
	n.UseHandler(handler)
	return n
}

func newCORS(conf config.CORSConfig) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:       conf.AllowedOrigins,
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:       []string{"Content-Type", "Authorization", "Accept"},
		AllowCredentials:     conf.AllowCredentials,
		OptionsSuccessStatus: http.StatusOK,
	})
}
