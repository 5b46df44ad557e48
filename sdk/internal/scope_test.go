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
	"testing"
	"time"
)

func TestScopeStackBalancedAfterConclude(t *testing.T) {
	def := &Definition{
		Name: "test.Workflow",
		Main: func(ctx Context) error {
			fut, _, err := NewCancellationScope(ctx, func(ctx Context) (any, error) {
				inner, _, err := NewCancellationScope(ctx, func(ctx Context) (any, error) {
					return nil, Sleep(ctx, time.Second)
				})
				if err != nil {
					return nil, err
				}
				return nil, inner.Get(ctx, nil)
			})
			if err != nil {
				return err
			}
			return fut.Get(ctx, nil)
		},
	}
	e := newTestEngine(t, def)

	activate(t, e, activation(startJob()))
	conclude(t, e)
	if len(e.scopeStack) != 1 || e.scopeStack[0] != rootScopeIdx {
		t.Fatalf("scope stack = %v, want [0]", e.scopeStack)
	}

	activate(t, e, activation(fireTimerJob("0")))
	conclude(t, e)
	if len(e.scopeStack) != 1 || e.scopeStack[0] != rootScopeIdx {
		t.Fatalf("scope stack = %v, want [0]", e.scopeStack)
	}
}

func TestScopeTreeCleansUpOnCompletion(t *testing.T) {
	def := &Definition{
		Name: "test.Workflow",
		Main: func(ctx Context) error {
			return Sleep(ctx, time.Second)
		},
	}
	e := newTestEngine(t, def)

	activate(t, e, activation(startJob()))
	conclude(t, e)
	// The timer scope is live while the timer is pending.
	if len(e.children[rootScopeIdx]) != 1 {
		t.Fatalf("root children = %v, want one timer scope", e.children[rootScopeIdx])
	}

	activate(t, e, activation(fireTimerJob("0")))
	conclude(t, e)
	if len(e.children) != 0 {
		t.Fatalf("child map should be empty after completion, got %v", e.children)
	}
	if len(e.completions) != 0 {
		t.Fatalf("completion table should be empty after completion, got %d entries", len(e.completions))
	}
}

func TestNestedScopeCancellationFansOut(t *testing.T) {
	def := &Definition{
		Name: "test.Workflow",
		Main: func(ctx Context) error {
			outer, cancel, err := NewCancellationScope(ctx, func(ctx Context) (any, error) {
				inner, _, err := NewCancellationScope(ctx, func(ctx Context) (any, error) {
					return nil, Sleep(ctx, time.Hour)
				})
				if err != nil {
					return nil, err
				}
				err = inner.Get(ctx, nil)
				if !IsCancelled(err) {
					t.Error("inner scope should observe the cancellation")
				}
				return nil, err
			})
			if err != nil {
				return err
			}
			cancel()
			if err := outer.Get(ctx, nil); !IsCancelled(err) {
				t.Error("outer scope should reject with cancellation")
			}
			return nil
		},
	}
	e := newTestEngine(t, def)

	activate(t, e, activation(startJob()))
	cmds := conclude(t, e)
	wantVariants(t, cmds, "start_timer", "cancel_timer", "complete_workflow_execution")
}

func TestSequenceMonotonicAcrossKinds(t *testing.T) {
	def := &Definition{
		Name: "test.Workflow",
		Main: func(ctx Context) error {
			if _, _, err := NewTimer(ctx, time.Second); err != nil {
				return err
			}
			if _, err := ExecuteActivity(ctx, "a.b"); err != nil {
				return err
			}
			if _, _, err := NewTimer(ctx, time.Second); err != nil {
				return err
			}
			return Sleep(ctx, time.Hour)
		},
	}
	e := newTestEngine(t, def)

	activate(t, e, activation(startJob()))
	cmds := conclude(t, e)
	wantVariants(t, cmds, "start_timer", "schedule_activity", "start_timer", "start_timer")

	ids := []string{
		cmds[0].StartTimer.TimerID,
		cmds[1].ScheduleActivity.ActivityID,
		cmds[2].StartTimer.TimerID,
		cmds[3].StartTimer.TimerID,
	}
	var prev uint64
	for i, id := range ids {
		seq, err := parseSeq(id)
		if err != nil {
			t.Fatal(err)
		}
		if i > 0 && seq <= prev {
			t.Fatalf("sequence ids not strictly increasing: %v", ids)
		}
		prev = seq
	}
}

func TestRootScopeCannotBeCancelledFromUserCode(t *testing.T) {
	e := newTestEngine(t, &Definition{
		Name: "test.Workflow",
		Main: func(ctx Context) error { return nil },
	})
	root := e.scopes[rootScopeIdx]
	if err := root.requestCancel(); err == nil {
		t.Fatal("root requestCancel must fail")
	}
}
