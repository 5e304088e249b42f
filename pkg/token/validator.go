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
	"strings"
	"unicode"
	"unicode/utf16"
)

const (
	MinRoomNameLength        = 3
	MaxRoomNameLength        = 50
	MinParticipantNameLength = 2
	MaxParticipantNameLength = 30
)

// JoinRequest asks for a credential to join Room as Participant
type JoinRequest struct {
	Room        string      `json:"room"`
	Participant string      `json:"participant"`
	Permissions Permissions `json:"permissions"`
}

// Normalized returns a copy with surrounding whitespace removed from room and participant
func (r JoinRequest) Normalized() JoinRequest {
	r.Room = trim(r.Room)
	r.Participant = trim(r.Participant)
	return r
}

// Validate checks room first, then participant, and reports the first failure
func (r JoinRequest) Validate() error {
	if err := ValidateRoomName(r.Room); err != nil {
		return err
	}
	return ValidateParticipantName(r.Participant)
}

// ValidateRoomName checks a room name after trimming. Letters, digits, whitespace,
// hyphen, underscore and Cyrillic characters are allowed.
func ValidateRoomName(room string) error {
	room = trim(room)
	if room == "" {
		return ErrMissingRoom
	}
	switch n := length(room); {
	case n < MinRoomNameLength:
		return ErrRoomNameTooShort
	case n > MaxRoomNameLength:
		return ErrRoomNameTooLong
	}
	for _, r := range room {
		if !isNameRune(r) && r != '-' && r != '_' {
			return ErrRoomNameInvalidChars
		}
	}
	return nil
}

// ValidateParticipantName checks a participant name after trimming. Letters, digits, whitespace
// and Cyrillic characters are allowed.
func ValidateParticipantName(name string) error {
	name = trim(name)
	if name == "" {
		return ErrMissingParticipant
	}
	switch n := length(name); {
	case n < MinParticipantNameLength:
		return ErrParticipantNameTooShort
	case n > MaxParticipantNameLength:
		return ErrParticipantNameTooLong
	}
	for _, r := range name {
		if !isNameRune(r) {
			return ErrParticipantNameInvalidChars
		}
	}
	return nil
}

// length counts UTF-16 code units, which is what browser clients count
func length(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	return (unicode.IsSpace(r) && r != '\u0085') || r == '\ufeff'
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r >= '\u0400' && r <= '\u04FF':
		return true
	}
	return isSpace(r)
}
