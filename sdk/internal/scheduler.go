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
	"fmt"
	"runtime/debug"
)

// The engine runs user code on cooperative coroutines: goroutines stepped
// one at a time through an unbuffered channel handshake. Exactly one
// coroutine executes at any moment, so engine state needs no locking and the
// interleaving is a pure function of the ready-queue order. A coroutine
// spawned for a scope runs synchronously to its first suspension; after
// that it only advances when a future it waits on settles and the FIFO ready
// queue reaches it again.

// shutdownSignal unwinds a suspended coroutine when the engine is closed.
type shutdownSignal struct{}

type coroutine struct {
	id       int
	scopeIdx int

	// resume hands control to the coroutine; yielded hands it back.
	resume  chan struct{}
	yielded chan struct{}

	started bool
	done    bool
}

type scheduler struct {
	eng      *Engine
	nextID   int
	ready    []*coroutine
	current  *coroutine
	routines []*coroutine
}

func newScheduler(eng *Engine) *scheduler {
	return &scheduler{eng: eng}
}

// spawn creates a coroutine owned by the given scope. The body does not run
// until the first step.
func (s *scheduler) spawn(scopeIdx int, fn func()) *coroutine {
	c := &coroutine{
		id:       s.nextID,
		scopeIdx: scopeIdx,
		resume:   make(chan struct{}),
		yielded:  make(chan struct{}),
	}
	s.nextID++
	s.routines = append(s.routines, c)

	go func() {
		<-c.resume
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(shutdownSignal); !ok {
					// User panics are converted by the handler wrappers; a
					// panic reaching this point is an engine invariant break.
					s.eng.fatal(illegalStatef("panic escaped coroutine %d: %v\n%s", c.id, r, debug.Stack()))
				}
			}
			c.done = true
			c.yielded <- struct{}{}
		}()
		if !s.eng.closing {
			fn()
		}
	}()

	return c
}

// step advances c until it suspends or finishes. Safe to call re-entrantly
// from inside another coroutine (a scope starting its body synchronously).
func (s *scheduler) step(c *coroutine) {
	if c == nil || c.done {
		return
	}
	prev := s.current
	s.current = c
	c.started = true
	s.eng.pushContainerScope(c.scopeIdx)

	c.resume <- struct{}{}
	<-c.yielded

	s.eng.popScope()
	s.current = prev
}

// await suspends the current coroutine until f settles. Must be called from
// inside a stepped coroutine.
func (s *scheduler) await(f *future) error {
	c := s.current
	if c == nil {
		return illegalStatef("await outside of a workflow coroutine")
	}
	f.waiters = append(f.waiters, c)
	c.yielded <- struct{}{}
	<-c.resume
	if s.eng.closing {
		panic(shutdownSignal{})
	}
	return nil
}

// enqueue marks c ready to run on the next drain.
func (s *scheduler) enqueue(c *coroutine) {
	if c == nil || c.done {
		return
	}
	s.ready = append(s.ready, c)
}

// run drains the ready queue to quiescence in FIFO order. Continuations made
// ready while draining are appended and run in turn.
func (s *scheduler) run() {
	for s.eng.fatalErr == nil && len(s.ready) > 0 {
		c := s.ready[0]
		s.ready = s.ready[1:]
		s.step(c)
	}
}

// close unwinds every live coroutine so their goroutines exit. The engine is
// unusable afterwards.
func (s *scheduler) close() {
	s.ready = nil
	for _, c := range s.routines {
		if c.done {
			continue
		}
		if s.current == c {
			// Closing from inside a coroutine is an engine bug.
			s.eng.fatal(illegalStatef("scheduler closed from coroutine %d", c.id))
			continue
		}
		c.resume <- struct{}{}
		<-c.yielded
	}
	s.routines = nil
}

func (c *coroutine) String() string {
	return fmt.Sprintf("coroutine(%d, scope=%d)", c.id, c.scopeIdx)
}
