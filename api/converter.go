// Copyright 2025 The sdk-core Authors
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

package api

import (
	"fmt"

	"github.com/denjalonso/sdk-core/api/serde"
)

// Encoding names understood by the built-in converters.
const (
	EncodingMsgpack = "binary/msgpack"
	EncodingJSON    = "json/plain"
	EncodingNil     = "binary/null"
)

// DataConverter round-trips Go values through Payloads. Implementations must
// be deterministic: the same value always yields the same bytes.
type DataConverter interface {
	ToPayload(value any) (*Payload, error)
	FromPayload(p *Payload, valuePtr any) error
}

// DecodeError reports a payload that could not be decoded. It is distinct
// from a legitimate nil value: an activity result that fails to decode
// rejects the awaiting caller with this error instead of resolving to nil.
type DecodeError struct {
	Encoding string
	Cause    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode payload (encoding %q): %v", e.Encoding, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// serdeConverter adapts a BinarySerde into a DataConverter.
type serdeConverter struct {
	serder   serde.BinarySerde
	encoding string
}

// NewConverter wraps the given serde under the given encoding name.
func NewConverter(s serde.BinarySerde, encoding string) DataConverter {
	return &serdeConverter{serder: s, encoding: encoding}
}

// DefaultConverter returns the msgpack-backed converter the engine uses
// unless configured otherwise.
func DefaultConverter() DataConverter {
	return &serdeConverter{serder: &serde.MsgpackSerde{}, encoding: EncodingMsgpack}
}

func (c *serdeConverter) ToPayload(value any) (*Payload, error) {
	if value == nil {
		return &Payload{Encoding: EncodingNil}, nil
	}
	data, err := c.serder.SerializeBinary(value)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return &Payload{Encoding: c.encoding, Data: data}, nil
}

func (c *serdeConverter) FromPayload(p *Payload, valuePtr any) error {
	if p == nil || p.Encoding == EncodingNil {
		// Nil payload decodes to nothing: the caller's pointer target is
		// left untouched.
		return nil
	}
	if p.Encoding != c.encoding {
		return &DecodeError{Encoding: p.Encoding, Cause: fmt.Errorf("converter handles %q", c.encoding)}
	}
	if err := c.serder.DeserializeBinary(p.Data, valuePtr); err != nil {
		return &DecodeError{Encoding: p.Encoding, Cause: err}
	}
	return nil
}
