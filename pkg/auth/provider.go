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
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type SimpleKeyProvider struct {
	keys map[string]string
}

func NewSimpleKeyProvider(keys map[string]string) *SimpleKeyProvider {
	return &SimpleKeyProvider{
		keys: keys,
	}
}

// NewFileBasedKeyProvider reads a YAML map of `api_key: secret` pairs
func NewFileBasedKeyProvider(r io.Reader) (*SimpleKeyProvider, error) {
	keys := make(map[string]string)
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&keys); err != nil && err != io.EOF {
		return nil, fmt.Errorf("invalid api key/secret pairs, must be api_key: secret: %v", err)
	}

	trimmed := make(map[string]string, len(keys))
	for key, secret := range keys {
		trimmed[strings.TrimSpace(key)] = strings.TrimSpace(secret)
	}
	return NewSimpleKeyProvider(trimmed), nil
}

func (p *SimpleKeyProvider) GetSecret(key string) string {
	return p.keys[key]
}

func (p *SimpleKeyProvider) NumKeys() int {
	return len(p.keys)
}

func (p *SimpleKeyProvider) Keys() map[string]string {
	keys := make(map[string]string, len(p.keys))
	for k, v := range p.keys {
		keys[k] = v
	}
	return keys
}
