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
	"bytes"
	"encoding/json"
	"strings"
)

type Capability uint8

const (
	CapabilityPublish Capability = 1 << iota
	CapabilitySubscribe
	CapabilityPublishData
	CapabilityUpdateMetadata
)

var allCapabilities = []Capability{
	CapabilityPublish,
	CapabilitySubscribe,
	CapabilityPublishData,
	CapabilityUpdateMetadata,
}

func (c Capability) String() string {
	switch c {
	case CapabilityPublish:
		return "publish"
	case CapabilitySubscribe:
		return "subscribe"
	case CapabilityPublishData:
		return "publishData"
	case CapabilityUpdateMetadata:
		return "updateMetadata"
	default:
		return "unknown"
	}
}

// CapabilitySet is a bit set of capabilities
type CapabilitySet uint8

const AllCapabilities = CapabilitySet(CapabilityPublish | CapabilitySubscribe | CapabilityPublishData | CapabilityUpdateMetadata)

func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s = s.With(c)
	}
	return s
}

func (s CapabilitySet) Has(c Capability) bool {
	return s&CapabilitySet(c) != 0
}

func (s CapabilitySet) With(c Capability) CapabilitySet {
	return s | CapabilitySet(c)
}

func (s CapabilitySet) Without(c Capability) CapabilitySet {
	return s &^ CapabilitySet(c)
}

// Intersect returns the capabilities present in both sets
func (s CapabilitySet) Intersect(o CapabilitySet) CapabilitySet {
	return s & o
}

func (s CapabilitySet) String() string {
	names := make([]string, 0, len(allCapabilities))
	for _, c := range allCapabilities {
		if s.Has(c) {
			names = append(names, c.String())
		}
	}
	return "[" + strings.Join(names, " ") + "]"
}

// Permissions are the capabilities a caller asked for. A nil field was not mentioned.
type Permissions struct {
	CanPublish        *bool `json:"canPublish,omitempty"`
	CanSubscribe      *bool `json:"canSubscribe,omitempty"`
	CanPublishData    *bool `json:"canPublishData,omitempty"`
	CanUpdateMetadata *bool `json:"canUpdateMetadata,omitempty"`
}

// UnmarshalJSON accepts anything a browser client may send. Values that are not JSON booleans,
// and a permissions value that is not an object, count as not mentioned.
func (p *Permissions) UnmarshalJSON(data []byte) error {
	*p = Permissions{}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	p.CanPublish = boolField(raw["canPublish"])
	p.CanSubscribe = boolField(raw["canSubscribe"])
	p.CanPublishData = boolField(raw["canPublishData"])
	p.CanUpdateMetadata = boolField(raw["canUpdateMetadata"])
	return nil
}

func boolField(raw json.RawMessage) *bool {
	if raw == nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil
	}
	return &b
}

// Resolve applies the default-allow policy: publish, subscribe and publishData are granted unless
// explicitly set to false, updateMetadata only when explicitly set to true.
func (p Permissions) Resolve() CapabilitySet {
	s := NewCapabilitySet()
	if p.CanPublish == nil || *p.CanPublish {
		s = s.With(CapabilityPublish)
	}
	if p.CanSubscribe == nil || *p.CanSubscribe {
		s = s.With(CapabilitySubscribe)
	}
	if p.CanPublishData == nil || *p.CanPublishData {
		s = s.With(CapabilityPublishData)
	}
	if p.CanUpdateMetadata != nil && *p.CanUpdateMetadata {
		s = s.With(CapabilityUpdateMetadata)
	}
	return s
}

// explicitlyRequested returns capabilities set to true by the caller
func (p Permissions) explicitlyRequested() CapabilitySet {
	s := NewCapabilitySet()
	for c, v := range map[Capability]*bool{
		CapabilityPublish:        p.CanPublish,
		CapabilitySubscribe:      p.CanSubscribe,
		CapabilityPublishData:    p.CanPublishData,
		CapabilityUpdateMetadata: p.CanUpdateMetadata,
	} {
		if v != nil && *v {
			s = s.With(c)
		}
	}
	return s
}
