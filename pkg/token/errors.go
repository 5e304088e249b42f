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
	"errors"
	"fmt"

	"github.com/livekit/psrpc"
)

var (
	ErrMissingRoom                 = psrpc.NewErrorf(psrpc.InvalidArgument, "missing room")
	ErrRoomNameTooShort            = psrpc.NewErrorf(psrpc.InvalidArgument, "room name too short")
	ErrRoomNameTooLong             = psrpc.NewErrorf(psrpc.InvalidArgument, "room name too long")
	ErrRoomNameInvalidChars        = psrpc.NewErrorf(psrpc.InvalidArgument, "room name contains invalid characters")
	ErrMissingParticipant          = psrpc.NewErrorf(psrpc.InvalidArgument, "missing participant")
	ErrParticipantNameTooShort     = psrpc.NewErrorf(psrpc.InvalidArgument, "participant name too short")
	ErrParticipantNameTooLong      = psrpc.NewErrorf(psrpc.InvalidArgument, "participant name too long")
	ErrParticipantNameInvalidChars = psrpc.NewErrorf(psrpc.InvalidArgument, "participant name contains invalid characters")
	ErrMalformedRequest            = psrpc.NewErrorf(psrpc.InvalidArgument, "malformed request body")
)

// SigningError is returned when a validated request could not be turned into a token,
// typically because the signing identity is misconfigured.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("could not sign token: %v", e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// ErrCapabilityNotPermitted is returned when a request explicitly asks for a capability
// that the policy does not allow for the room and participant.
func ErrCapabilityNotPermitted(c Capability) error {
	return psrpc.NewErrorf(psrpc.InvalidArgument, "capability not permitted: %s", c)
}

func IsInvalidRequest(err error) bool {
	var pe psrpc.Error
	return errors.As(err, &pe) && pe.Code() == psrpc.InvalidArgument
}

func IsSigningError(err error) bool {
	var se *SigningError
	return errors.As(err, &se)
}
