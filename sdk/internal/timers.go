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

import (
	"time"

	"github.com/denjalonso/sdk-core/api"
)

// Timers are engine commands, never runtime timers: starting one allocates a
// sequence number, parks a completion and emits start_timer; the service
// fires it back as a fire_timer job. Cancelling a timer still consumes a
// sequence number so both sides of a cancelled/uncancelled branch allocate
// identically during replay.

// CancelTimerFunc cancels a pending timer. Safe to call after the timer
// fired; it does nothing then.
type CancelTimerFunc func()

// NewTimer starts a timer under a fresh timer-typed scope and returns its
// future plus a cancel function. The future resolves to nil when the timer
// fires and rejects with a CancelledError if the timer is cancelled.
func NewTimer(ctx Context, d time.Duration) (Future, CancelTimerFunc, error) {
	e, err := engineFromContext(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	var timerScope *scope
	bound := e.openScope(scopeTypeTimer, func(sc *scope) (any, error) {
		timerScope = sc
		raw, seq := e.startTimer(d, sc)
		sc.requestCancel = func() error {
			e.cancelTimer(seq, raw, &CancelledError{Source: CancelSourceInternal})
			return nil
		}
		sc.completeCancel = func(cerr *CancelledError) {
			e.cancelTimer(seq, raw, cerr)
		}
		return nil, raw.Get(ctx, nil)
	})
	cancel := func() {
		if timerScope != nil && !timerScope.cancelRequested {
			timerScope.cancelRequested = true
			_ = timerScope.requestCancel()
		}
	}
	return bound, cancel, nil
}

// Sleep blocks the calling coroutine for d of workflow time. It returns a
// CancelledError if the run is cancelled while sleeping.
func Sleep(ctx Context, d time.Duration) error {
	fut, _, err := NewTimer(ctx, d)
	if err != nil {
		return err
	}
	return fut.Get(ctx, nil)
}

// startTimer allocates the sequence number, parks the completion under sc
// and emits the command, in that order.
func (e *Engine) startTimer(d time.Duration, sc *scope) (*future, uint64) {
	seq := e.nextSequence()
	raw := e.newFuture()
	e.completions[seq] = &completion{
		resolve:  func(any) { raw.trySettle(nil, nil) },
		reject:   func(err error) { raw.trySettle(nil, err) },
		scopeIdx: sc.idx,
	}
	e.emitStartTimer(&api.StartTimerCommand{
		TimerID:              formatSeq(seq),
		StartToFireTimeoutMs: d.Milliseconds(),
	})
	return raw, seq
}

// cancelTimer drops the completion, burns a sequence number for parity,
// emits cancel_timer and rejects the waiter. No-op once the timer fired.
func (e *Engine) cancelTimer(seq uint64, raw *future, cerr *CancelledError) {
	if _, ok := e.completions[seq]; !ok {
		return
	}
	e.nextSeq++
	delete(e.completions, seq)
	e.pushCommand(&api.Command{CancelTimer: &api.CancelTimerCommand{TimerID: formatSeq(seq)}})
	raw.trySettle(nil, cerr)
}

// handleFireTimer consumes the completion for a fire_timer job.
func (e *Engine) handleFireTimer(job *api.FireTimerJob) error {
	seq, err := parseSeq(job.TimerID)
	if err != nil {
		return err
	}
	c, err := e.takeCompletion(seq)
	if err != nil {
		return err
	}
	c.resolve(nil)
	return nil
}
