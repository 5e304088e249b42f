//go:build wireinject
// +build wireinject

package service

import (
	"github.com/google/wire"

	"github.com/livekit/livekit-token-server/pkg/config"
)

func InitializeServer(conf *config.Config) (*TokenServer, error) {
	wire.Build(
		ServiceSet,
	)
	return &TokenServer{}, nil
}
