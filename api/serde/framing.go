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

package serde

import (
	"encoding/binary"
	"fmt"
)

// Messages crossing the sandbox boundary are length-delimited: a uvarint
// byte count followed by that many bytes of serde output. The frame makes
// the encoding self-describing enough to sit in a byte stream.

// EncodeLengthDelimited serializes value with s and prefixes the result with
// its uvarint length.
func EncodeLengthDelimited(s BinarySerde, value any) ([]byte, error) {
	body, err := s.SerializeBinary(value)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, len(body)+binary.MaxVarintLen64)
	buf = binary.AppendUvarint(buf, uint64(len(body)))
	return append(buf, body...), nil
}

// DecodeLengthDelimited reads one length-delimited message from data into
// valuePtr and returns the total number of bytes consumed.
func DecodeLengthDelimited(s BinarySerde, data []byte, valuePtr any) (int, error) {
	n, read := binary.Uvarint(data)
	if read <= 0 {
		return 0, fmt.Errorf("malformed length prefix")
	}
	if uint64(len(data)-read) < n {
		return 0, fmt.Errorf("truncated message: prefix declares %d bytes, %d available", n, len(data)-read)
	}
	body := data[read : read+int(n)]
	if err := s.DeserializeBinary(body, valuePtr); err != nil {
		return 0, err
	}
	return read + int(n), nil
}
