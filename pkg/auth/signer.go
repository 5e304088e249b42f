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

package auth

import (
	"time"
)

// TokenSigner turns a set of grants into a signed, time-bounded token.
//
//counterfeiter:generate . TokenSigner
type TokenSigner interface {
	KeyID() string
	Sign(grants *ClaimGrants, issuedAt time.Time, validFor time.Duration) (string, error)
}

// SigningIdentity is the API key and secret that tokens are signed with
type SigningIdentity struct {
	KeyID  string
	Secret string
}

// MaskedSecret returns the secret with everything but the last four characters hidden
func (s SigningIdentity) MaskedSecret() string {
	if len(s.Secret) <= 4 {
		return "***"
	}
	return "***" + s.Secret[len(s.Secret)-4:]
}

// APIKeyTokenSigner signs HS256 tokens that the media server verifies with the same key pair
type APIKeyTokenSigner struct {
	identity SigningIdentity
	newID    func() string
}

func NewAPIKeyTokenSigner(identity SigningIdentity, newID func() string) *APIKeyTokenSigner {
	return &APIKeyTokenSigner{
		identity: identity,
		newID:    newID,
	}
}

func (s *APIKeyTokenSigner) KeyID() string {
	return s.identity.KeyID
}

func (s *APIKeyTokenSigner) Sign(grants *ClaimGrants, issuedAt time.Time, validFor time.Duration) (string, error) {
	if grants == nil {
		grants = &ClaimGrants{}
	}
	at := NewAccessToken(s.identity.KeyID, s.identity.Secret).
		SetIdentity(grants.Identity).
		SetName(grants.Name).
		SetMetadata(grants.Metadata).
		SetVideoGrant(grants.Video).
		SetIssuedAt(issuedAt).
		SetValidFor(validFor)
	if s.newID != nil {
		at.SetID(s.newID())
	}
	return at.ToJWT()
}

// compile-time check
var _ TokenSigner = (*APIKeyTokenSigner)(nil)
