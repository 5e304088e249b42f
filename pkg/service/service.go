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
	"github.com/google/wire"

	"github.com/livekit/livekit-token-server/pkg/auth"
	"github.com/livekit/livekit-token-server/pkg/config"
	"github.com/livekit/livekit-token-server/pkg/token"
	"github.com/livekit/livekit-token-server/pkg/utils"
)

var ServiceSet = wire.NewSet(
	createSigningIdentity,
	createTokenSigner,
	token.NewIssuer,
	NewTokenService,
	NewInfoService,
	NewTokenServer,
)

func createSigningIdentity(conf *config.Config) (auth.SigningIdentity, error) {
	return conf.SigningIdentity()
}

func createTokenSigner(identity auth.SigningIdentity) auth.TokenSigner {
	return auth.NewAPIKeyTokenSigner(identity, utils.NewTokenID)
}
