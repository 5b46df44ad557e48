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

package workflow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/denjalonso/sdk-core/api"
	"github.com/denjalonso/sdk-core/api/serde"
	"github.com/denjalonso/sdk-core/sdk/internal"
	"github.com/denjalonso/sdk-core/sdk/workflow"
)

// Drives the public authoring surface end-to-end through an engine: timers,
// the deterministic clock, queries registered from workflow code.
func TestAuthoringSurface(t *testing.T) {
	def := &workflow.Definition{
		Name: "facade.Workflow",
		Main: func(ctx workflow.Context) (int64, error) {
			if err := workflow.SetQueryHandler(ctx, "phase", func() (string, error) {
				return "running", nil
			}); err != nil {
				return 0, err
			}
			start, err := workflow.Now(ctx)
			if err != nil {
				return 0, err
			}
			if err := workflow.Sleep(ctx, time.Second); err != nil {
				return 0, err
			}
			end, err := workflow.Now(ctx)
			if err != nil {
				return 0, err
			}
			return end.Sub(start).Milliseconds(), nil
		},
	}

	e := internal.NewEngine()
	t.Cleanup(e.Close)
	info := &api.WorkflowInfo{RunID: "run-1", WorkflowType: def.Name, TaskQueue: "test"}
	if err := e.InitWorkflow(def, info, []byte("seed")); err != nil {
		t.Fatal(err)
	}

	ms := &serde.MsgpackSerde{}
	activate := func(act *api.Activation) {
		t.Helper()
		data, err := serde.EncodeLengthDelimited(ms, act)
		if err != nil {
			t.Fatal(err)
		}
		for i := range act.Jobs {
			if _, err := e.Activate(data, i); err != nil {
				t.Fatalf("Activate: %v", err)
			}
		}
	}
	conclude := func() []*api.Command {
		t.Helper()
		c, err := e.Conclude()
		if err != nil {
			t.Fatal(err)
		}
		var completion api.ActivationCompletion
		if _, err := serde.DecodeLengthDelimited(ms, c.Encoded, &completion); err != nil {
			t.Fatal(err)
		}
		return completion.Successful.Commands
	}

	activate(&api.Activation{
		RunID:       "run-1",
		TimestampMs: 1000,
		Jobs: []*api.ActivationJob{{StartWorkflow: &api.StartWorkflowJob{
			WorkflowType: def.Name,
		}}},
	})
	cmds := conclude()
	if len(cmds) != 1 || cmds[0].StartTimer == nil {
		t.Fatalf("expected a single start_timer, got %v", cmds)
	}

	// The second activation is one workflow second later; Now() must track
	// the activation timestamp, not the wall clock.
	activate(&api.Activation{
		RunID:       "run-1",
		TimestampMs: 2000,
		Jobs:        []*api.ActivationJob{{FireTimer: &api.FireTimerJob{TimerID: "0"}}},
	})
	cmds = conclude()
	if len(cmds) != 1 || cmds[0].CompleteWorkflowExecution == nil {
		t.Fatalf("expected completion, got %v", cmds)
	}
	var elapsed int64
	if err := api.DefaultConverter().FromPayload(cmds[0].CompleteWorkflowExecution.Result, &elapsed); err != nil {
		t.Fatal(err)
	}
	if elapsed != 1000 {
		t.Errorf("deterministic elapsed = %d ms, want 1000", elapsed)
	}

	// Query registered from inside workflow code, after completion.
	activate(&api.Activation{
		RunID:       "run-1",
		TimestampMs: 3000,
		Jobs: []*api.ActivationJob{{QueryWorkflow: &api.QueryWorkflowJob{
			QueryID:   "q1",
			QueryType: "phase",
		}}},
	})
	cmds = conclude()
	if len(cmds) != 1 || cmds[0].RespondToQuery == nil || cmds[0].RespondToQuery.Succeeded == nil {
		t.Fatalf("expected successful query response, got %v", cmds)
	}
}

func TestSetFinalizerIsInterceptedViolation(t *testing.T) {
	err := workflow.SetFinalizer(struct{}{}, func() {})
	var dve *workflow.DeterminismViolationError
	if !errors.As(err, &dve) {
		t.Fatalf("expected DeterminismViolationError, got %v", err)
	}
}
