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

package serde_test

import (
	"reflect"
	"testing"

	"github.com/denjalonso/sdk-core/api/serde"
)

type testRecord struct {
	Name    string         `json:"name" msgpack:"name"`
	Age     int            `json:"age" msgpack:"age"`
	Score   float64        `json:"score" msgpack:"score"`
	Active  bool           `json:"active" msgpack:"active"`
	Tags    []string       `json:"tags" msgpack:"tags"`
	Nested  *nestedRecord  `json:"nested,omitempty" msgpack:"nested,omitempty"`
	Mapping map[string]any `json:"mapping" msgpack:"mapping"`
}

type nestedRecord struct {
	Value string `json:"value" msgpack:"value"`
	Count int    `json:"count" msgpack:"count"`
}

// TestSerializationAgnostic verifies round-trips behave the same regardless
// of the configured serializer.
func TestSerializationAgnostic(t *testing.T) {
	testCases := []struct {
		name  string
		serde serde.BinarySerde
	}{
		{"JSON", &serde.JsonSerde{}},
		{"MessagePack", &serde.MsgpackSerde{}},
	}

	original := testRecord{
		Name:   "Alice",
		Age:    30,
		Score:  95.5,
		Active: true,
		Tags:   []string{"tag1", "tag2"},
		Nested: &nestedRecord{Value: "nested", Count: 42},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := tc.serde.SerializeBinary(original)
			if err != nil {
				t.Fatalf("Serialization failed: %v", err)
			}

			var decoded testRecord
			if err := tc.serde.DeserializeBinary(data, &decoded); err != nil {
				t.Fatalf("Deserialization failed: %v", err)
			}

			if decoded.Name != original.Name || decoded.Age != original.Age ||
				decoded.Score != original.Score || decoded.Active != original.Active {
				t.Errorf("scalar fields mismatch: got %+v, want %+v", decoded, original)
			}
			if !reflect.DeepEqual(decoded.Tags, original.Tags) {
				t.Errorf("Tags mismatch: got %v, want %v", decoded.Tags, original.Tags)
			}
			if decoded.Nested == nil || *decoded.Nested != *original.Nested {
				t.Errorf("Nested mismatch: got %+v, want %+v", decoded.Nested, original.Nested)
			}
		})
	}
}

func TestTypeConverterNumericGuard(t *testing.T) {
	tc := serde.NewTypeConverter(&serde.JsonSerde{})

	tests := []struct {
		name    string
		value   any
		target  reflect.Type
		want    any
		wantErr bool
	}{
		{name: "float to int exact", value: float64(42), target: reflect.TypeOf(int(0)), want: 42},
		{name: "float to int lossy", value: 42.5, target: reflect.TypeOf(int(0)), wantErr: true},
		{name: "int to float", value: 7, target: reflect.TypeOf(float64(0)), want: 7.0},
		{name: "string passthrough", value: "x", target: reflect.TypeOf(""), want: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tc.ConvertToType(tt.value, tt.target)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ConvertToType failed: %v", err)
			}
			if got.Interface() != tt.want {
				t.Errorf("got %v, want %v", got.Interface(), tt.want)
			}
		})
	}
}

func TestTypeConverterStructViaSerializer(t *testing.T) {
	tc := serde.NewTypeConverter(&serde.MsgpackSerde{})

	in := map[string]any{"value": "v", "count": int8(3)}
	out, err := tc.ConvertToType(in, reflect.TypeOf(nestedRecord{}))
	if err != nil {
		t.Fatalf("ConvertToType failed: %v", err)
	}
	rec := out.Interface().(nestedRecord)
	if rec.Value != "v" || rec.Count != 3 {
		t.Errorf("converted record = %+v", rec)
	}
}

func TestLengthDelimitedRoundTrip(t *testing.T) {
	s := &serde.MsgpackSerde{}
	original := testRecord{Name: "frame", Age: 1}

	data, err := serde.EncodeLengthDelimited(s, original)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var decoded testRecord
	n, err := serde.DecodeLengthDelimited(s, data, &decoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if n != len(data) {
		t.Errorf("consumed %d bytes, frame is %d", n, len(data))
	}
	if decoded.Name != "frame" || decoded.Age != 1 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestLengthDelimitedTruncated(t *testing.T) {
	s := &serde.MsgpackSerde{}
	data, err := serde.EncodeLengthDelimited(s, testRecord{Name: "frame"})
	if err != nil {
		t.Fatal(err)
	}

	var decoded testRecord
	if _, err := serde.DecodeLengthDelimited(s, data[:len(data)-1], &decoded); err == nil {
		t.Fatal("decoding a truncated frame must fail")
	}
	if _, err := serde.DecodeLengthDelimited(s, nil, &decoded); err == nil {
		t.Fatal("decoding an empty buffer must fail")
	}
}
