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

package internal

import "strconv"

// A completion is one pending slot in the table keyed by sequence number:
// the resolver pair a fire_timer / resolve_activity / external result will
// consume, plus the scope that owns the waiting continuation.
type completion struct {
	resolve  func(value any)
	reject   func(err error)
	scopeIdx int
}

// nextSequence allocates the next number in the single monotonic stream
// shared by timers, activities, awaited external calls and everything else
// that needs a service-visible identity.
func (e *Engine) nextSequence() uint64 {
	seq := e.nextSeq
	e.nextSeq++
	return seq
}

// takeCompletion consumes the completion for seq. A missing entry means the
// activation references an operation this run never created.
func (e *Engine) takeCompletion(seq uint64) (*completion, error) {
	c, ok := e.completions[seq]
	if !ok {
		return nil, illegalStatef("no completion for sequence %d", seq)
	}
	delete(e.completions, seq)
	return c, nil
}

// formatSeq serializes a sequence number the way it travels in timer_id and
// activity_id fields.
func formatSeq(seq uint64) string {
	return strconv.FormatUint(seq, 10)
}

// parseSeq is the inverse; malformed ids are an illegal state, not user
// error, because only the engine ever mints them.
func parseSeq(s string) (uint64, error) {
	seq, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, illegalStatef("malformed sequence id %q: %v", s, err)
	}
	return seq, nil
}
