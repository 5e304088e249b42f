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

package token

import (
	"context"
	"time"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/livekit-token-server/pkg/auth"
)

// TokenTTL is the fixed lifetime of every issued credential
const TokenTTL = 10 * time.Minute

// Credential is a signed token together with the grant it carries
type Credential struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Grant     CapabilityGrant
}

// ExpiresAtMillis is the expiry as milliseconds since the Unix epoch
func (c *Credential) ExpiresAtMillis() int64 {
	return c.ExpiresAt.UnixMilli()
}

func (g CapabilityGrant) VideoGrant() *auth.VideoGrant {
	v := &auth.VideoGrant{
		RoomJoin: true,
		Room:     g.Room,
	}
	v.SetCanPublish(g.CanPublish)
	v.SetCanSubscribe(g.CanSubscribe)
	v.SetCanPublishData(g.CanPublishData)
	v.SetCanUpdateOwnMetadata(g.CanUpdateMetadata)
	return v
}

type Issuer struct {
	signer auth.TokenSigner
	policy Policy
	now    func() time.Time
}

func NewIssuer(signer auth.TokenSigner) *Issuer {
	return &Issuer{
		signer: signer,
		policy: AllowAll,
		now:    time.Now,
	}
}

func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) WithPolicy(p Policy) *Issuer {
	if p == nil {
		p = AllowAll
	}
	i.policy = p
	return i
}

// Issue validates the request and signs a join credential for it. Nothing is signed for an
// invalid request.
func (i *Issuer) Issue(ctx context.Context, req JoinRequest) (*Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req = req.Normalized()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	grant, err := ResolveGrant(req, i.policy)
	if err != nil {
		return nil, err
	}

	now := i.now()
	claims := &auth.ClaimGrants{
		Identity: req.Participant,
		Name:     req.Participant,
		Video:    grant.VideoGrant(),
	}
	signed, err := i.signer.Sign(claims, now, TokenTTL)
	if err != nil {
		logger.Errorw("could not sign token", err, "room", req.Room, "participant", req.Participant)
		return nil, &SigningError{Err: err}
	}

	logger.Debugw("issued token",
		"room", req.Room,
		"participant", req.Participant,
		"keyID", i.signer.KeyID(),
	)
	return &Credential{
		Token:     signed,
		IssuedAt:  now,
		ExpiresAt: now.Add(TokenTTL),
		Grant:     grant,
	}, nil
}
