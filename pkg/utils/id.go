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

package utils

import (
	lkutils "github.com/livekit/protocol/utils"
)

const TokenIDPrefix = "TK_"

func NewAPIKey() string {
	return lkutils.NewGuid(lkutils.APIKeyPrefix)
}

// NewTokenID returns a unique jti, so that two tokens for the same grants never collide
func NewTokenID() string {
	return lkutils.NewGuid(TokenIDPrefix)
}
