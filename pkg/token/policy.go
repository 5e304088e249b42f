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

// Policy decides which capabilities a participant may hold in a room
type Policy interface {
	Allowed(room, participant string) CapabilitySet
}

// PolicyFunc adapts a function to a Policy
type PolicyFunc func(room, participant string) CapabilitySet

func (f PolicyFunc) Allowed(room, participant string) CapabilitySet {
	return f(room, participant)
}

// AllowAll permits every capability for every participant
var AllowAll Policy = PolicyFunc(func(string, string) CapabilitySet {
	return AllCapabilities
})

// CapabilityGrant is the resolved set of capabilities bound into a credential
type CapabilityGrant struct {
	Room              string `json:"room"`
	Participant       string `json:"participant"`
	CanPublish        bool   `json:"canPublish"`
	CanSubscribe      bool   `json:"canSubscribe"`
	CanPublishData    bool   `json:"canPublishData"`
	CanUpdateMetadata bool   `json:"canUpdateMetadata"`
}

func newCapabilityGrant(room, participant string, caps CapabilitySet) CapabilityGrant {
	return CapabilityGrant{
		Room:              room,
		Participant:       participant,
		CanPublish:        caps.Has(CapabilityPublish),
		CanSubscribe:      caps.Has(CapabilitySubscribe),
		CanPublishData:    caps.Has(CapabilityPublishData),
		CanUpdateMetadata: caps.Has(CapabilityUpdateMetadata),
	}
}

// ResolveGrant combines the requested permissions with the policy. A capability that was
// explicitly requested but is not allowed rejects the request, one that was only defaulted
// is dropped silently.
func ResolveGrant(req JoinRequest, policy Policy) (CapabilityGrant, error) {
	if policy == nil {
		policy = AllowAll
	}
	allowed := policy.Allowed(req.Room, req.Participant)
	if denied := req.Permissions.explicitlyRequested() &^ allowed; denied != 0 {
		for _, c := range allCapabilities {
			if denied.Has(c) {
				return CapabilityGrant{}, ErrCapabilityNotPermitted(c)
			}
		}
	}
	caps := req.Permissions.Resolve().Intersect(allowed)
	return newCapabilityGrant(req.Room, req.Participant, caps), nil
}
