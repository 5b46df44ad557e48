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
	"strings"
	"testing"

	"github.com/denjalonso/sdk-core/api"
)

func TestExternalCallModes(t *testing.T) {
	def := &Definition{
		Name: "test.Workflow",
		Main: func(ctx Context) (string, error) {
			// Sync: dispatched immediately in-sandbox.
			sum, _, err := ExternalCall(ctx, "math", "add", 2, 3)
			if err != nil {
				return "", err
			}
			if sum.(int) != 5 {
				t.Errorf("sync call = %v, want 5", sum)
			}

			// Ignored: enqueued without a sequence number.
			if _, _, err := ExternalCall(ctx, "metrics", "count", "started"); err != nil {
				return "", err
			}

			// Awaited: crosses the activation boundary.
			_, fut, err := ExternalCall(ctx, "kv", "get", "greeting")
			if err != nil {
				return "", err
			}
			var v string
			if err := fut.Get(ctx, &v); err != nil {
				return "", err
			}
			return v, nil
		},
	}
	e := newTestEngine(t, def)
	if err := e.Inject("math", "add", func(a, b int) (int, error) { return a + b, nil }, ApplyModeSync); err != nil {
		t.Fatal(err)
	}
	if err := e.Inject("metrics", "count", nil, ApplyModeAsyncIgnored); err != nil {
		t.Fatal(err)
	}
	if err := e.Inject("kv", "get", nil, ApplyModeAsync); err != nil {
		t.Fatal(err)
	}

	calls := activate(t, e, activation(startJob()))
	if len(calls) != 2 {
		t.Fatalf("pending external calls = %d, want 2", len(calls))
	}
	if calls[0].IfaceName != "metrics" || calls[0].Seq != nil {
		t.Fatalf("first call should be the ignored metrics call, got %+v", calls[0])
	}
	if calls[1].IfaceName != "kv" || calls[1].Seq == nil {
		t.Fatalf("second call should be the awaited kv call, got %+v", calls[1])
	}

	answer, err := api.DefaultConverter().ToPayload("hello")
	if err != nil {
		t.Fatal(err)
	}
	if err := e.ResolveExternalDependencies([]*api.ExternalResult{
		{Seq: *calls[1].Seq, Result: answer},
	}); err != nil {
		t.Fatal(err)
	}

	cmds := conclude(t, e)
	wantVariants(t, cmds, "complete_workflow_execution")
	var result string
	if err := api.DefaultConverter().FromPayload(cmds[0].CompleteWorkflowExecution.Result, &result); err != nil {
		t.Fatal(err)
	}
	if result != "hello" {
		t.Errorf("workflow result = %q, want hello", result)
	}
}

func TestExternalCallErrorRejects(t *testing.T) {
	def := &Definition{
		Name: "test.Workflow",
		Main: func(ctx Context) error {
			_, fut, err := ExternalCall(ctx, "kv", "get", "missing")
			if err != nil {
				return err
			}
			return fut.Get(ctx, nil)
		},
	}
	e := newTestEngine(t, def)
	if err := e.Inject("kv", "get", nil, ApplyModeAsync); err != nil {
		t.Fatal(err)
	}

	calls := activate(t, e, activation(startJob()))
	if len(calls) != 1 || calls[0].Seq == nil {
		t.Fatalf("expected one awaited call, got %+v", calls)
	}
	if err := e.ResolveExternalDependencies([]*api.ExternalResult{
		{Seq: *calls[0].Seq, Error: "key not found"},
	}); err != nil {
		t.Fatal(err)
	}

	cmds := conclude(t, e)
	wantVariants(t, cmds, "fail_workflow_execution")
	if msg := cmds[0].FailWorkflowExecution.Failure.Message; !strings.Contains(msg, "key not found") {
		t.Errorf("failure message = %q", msg)
	}
}

func TestExternalCallUnknownDependency(t *testing.T) {
	def := &Definition{
		Name: "test.Workflow",
		Main: func(ctx Context) error {
			_, _, err := ExternalCall(ctx, "ghost", "fn")
			return err
		},
	}
	e := newTestEngine(t, def)

	activate(t, e, activation(startJob()))
	cmds := conclude(t, e)
	wantVariants(t, cmds, "fail_workflow_execution")
	if msg := cmds[0].FailWorkflowExecution.Failure.Message; !strings.Contains(msg, "no dependency injected") {
		t.Errorf("failure message = %q", msg)
	}
}

// Pending conclusions happen when workflow code issues a fresh external call
// after a previous one resolves, past the last Activate of the batch.
func TestConcludePendingAfterResolution(t *testing.T) {
	def := &Definition{
		Name: "test.Workflow",
		Main: func(ctx Context) error {
			_, first, err := ExternalCall(ctx, "kv", "get", "a")
			if err != nil {
				return err
			}
			if err := first.Get(ctx, nil); err != nil {
				return err
			}
			_, second, err := ExternalCall(ctx, "kv", "get", "b")
			if err != nil {
				return err
			}
			return second.Get(ctx, nil)
		},
	}
	e := newTestEngine(t, def)
	if err := e.Inject("kv", "get", nil, ApplyModeAsync); err != nil {
		t.Fatal(err)
	}

	calls := activate(t, e, activation(startJob()))
	if len(calls) != 1 {
		t.Fatalf("expected one pending call, got %d", len(calls))
	}
	if err := e.ResolveExternalDependencies([]*api.ExternalResult{{Seq: *calls[0].Seq}}); err != nil {
		t.Fatal(err)
	}

	c, err := e.Conclude()
	if err != nil {
		t.Fatal(err)
	}
	if c.Type != ConclusionPending || len(c.ExternalCalls) != 1 {
		t.Fatalf("expected pending conclusion with one call, got type=%d calls=%d", c.Type, len(c.ExternalCalls))
	}

	if err := e.ResolveExternalDependencies([]*api.ExternalResult{{Seq: *c.ExternalCalls[0].Seq}}); err != nil {
		t.Fatal(err)
	}
	cmds := conclude(t, e)
	wantVariants(t, cmds, "complete_workflow_execution")
}
