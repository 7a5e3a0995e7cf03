// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package fixture

import "fmt"

// ConstErr is an error type that can be used to define error constants.
type ConstErr string

func (e ConstErr) Error() string {
	return string(e)
}

// Kinds of decoding failures. A DecodeError unwraps to one of these.
const (
	ErrMissingPrefix     = ConstErr("missing 0x prefix")
	ErrInvalidHex        = ConstErr("invalid hex")
	ErrInvalidNumber     = ConstErr("invalid number")
	ErrInvalidFixedBytes = ConstErr("invalid fixed-size byte string")
	ErrUnknownNetwork    = ConstErr("unknown network type")
)

// DecodeError describes why a fixture document could not be decoded. Any
// such error invalidates the entire document.
type DecodeError struct {
	Kind  ConstErr // one of the Err* constants above
	Field string   // path of the offending field, e.g. "test/pre/0x01/balance"
	Input string   // the text that failed to decode
	Err   error    // optional underlying cause
}

func (e *DecodeError) Error() string {
	msg := string(e.Kind)
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	msg = fmt.Sprintf("%s %q", msg, e.Input)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// at prefixes the field path of the error with the given segment.
func (e *DecodeError) at(segment string) *DecodeError {
	if e.Field == "" {
		e.Field = segment
	} else {
		e.Field = segment + "/" + e.Field
	}
	return e
}
