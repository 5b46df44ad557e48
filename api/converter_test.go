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
	"errors"
	"testing"

	"github.com/denjalonso/sdk-core/api/serde"
)

func TestConverterRoundTrip(t *testing.T) {
	c := DefaultConverter()

	tests := []struct {
		name  string
		value any
		check func(t *testing.T, p *Payload)
	}{
		{
			name:  "string",
			value: "hello",
			check: func(t *testing.T, p *Payload) {
				var s string
				if err := c.FromPayload(p, &s); err != nil || s != "hello" {
					t.Errorf("got %q, err %v", s, err)
				}
			},
		},
		{
			name:  "bytes",
			value: []byte{1, 2, 3},
			check: func(t *testing.T, p *Payload) {
				var b []byte
				if err := c.FromPayload(p, &b); err != nil || len(b) != 3 {
					t.Errorf("got %v, err %v", b, err)
				}
			},
		},
		{
			name:  "record",
			value: map[string]int{"a": 1},
			check: func(t *testing.T, p *Payload) {
				var m map[string]int
				if err := c.FromPayload(p, &m); err != nil || m["a"] != 1 {
					t.Errorf("got %v, err %v", m, err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.ToPayload(tt.value)
			if err != nil {
				t.Fatalf("ToPayload failed: %v", err)
			}
			if p.Encoding != EncodingMsgpack {
				t.Fatalf("encoding = %q", p.Encoding)
			}
			tt.check(t, p)
		})
	}
}

func TestConverterNilValue(t *testing.T) {
	c := DefaultConverter()
	p, err := c.ToPayload(nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Encoding != EncodingNil {
		t.Fatalf("encoding = %q, want %q", p.Encoding, EncodingNil)
	}

	s := "untouched"
	if err := c.FromPayload(p, &s); err != nil {
		t.Fatal(err)
	}
	if s != "untouched" {
		t.Errorf("nil payload must leave the target alone, got %q", s)
	}
}

func TestConverterEncodingMismatchIsDecodeError(t *testing.T) {
	msgpackConv := DefaultConverter()
	jsonConv := NewConverter(&serde.JsonSerde{}, EncodingJSON)

	p, err := jsonConv.ToPayload("hello")
	if err != nil {
		t.Fatal(err)
	}

	var s string
	err = msgpackConv.FromPayload(p, &s)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if de.Encoding != EncodingJSON {
		t.Errorf("DecodeError encoding = %q", de.Encoding)
	}
}

func TestConverterDeterministicBytes(t *testing.T) {
	c := DefaultConverter()
	value := map[string]int{"b": 2, "a": 1, "c": 3}

	first, err := c.ToPayload(value)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		p, err := c.ToPayload(value)
		if err != nil {
			t.Fatal(err)
		}
		if string(p.Data) != string(first.Data) {
			t.Fatal("payload bytes differ between encodings of the same value")
		}
	}
}
