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

	"github.com/denjalonso/sdk-core/api"
)

type recordingInterceptor struct {
	InboundInterceptorBase
	name  string
	trace *[]string
}

func (r *recordingInterceptor) ExecuteWorkflow(ctx Context, in *ExecuteWorkflowInput, next ExecuteWorkflowNext) (any, error) {
	*r.trace = append(*r.trace, r.name+":before")
	out, err := next(ctx, in)
	*r.trace = append(*r.trace, r.name+":after")
	return out, err
}

func (r *recordingInterceptor) HandleSignal(ctx Context, in *HandleSignalInput, next HandleSignalNext) error {
	*r.trace = append(*r.trace, r.name+":signal")
	return next(ctx, in)
}

func TestInboundInterceptorOrder(t *testing.T) {
	var trace []string
	def := &Definition{
		Name: "test.Workflow",
		Main: func(ctx Context) error {
			trace = append(trace, "main")
			return nil
		},
		Signals: map[string]any{
			"ping": func(ctx Context) error {
				trace = append(trace, "signal")
				return nil
			},
		},
	}

	e := NewEngine()
	t.Cleanup(e.Close)
	info := &api.WorkflowInfo{RunID: "run-1", WorkflowType: def.Name, TaskQueue: "test"}
	err := e.InitWorkflow(def, info, []byte("seed"),
		&recordingInterceptor{name: "outer", trace: &trace},
		&recordingInterceptor{name: "inner", trace: &trace},
	)
	if err != nil {
		t.Fatal(err)
	}

	activate(t, e, activation(
		&api.ActivationJob{SignalWorkflow: &api.SignalWorkflowJob{SignalName: "ping"}},
		startJob(),
	))
	conclude(t, e)

	want := []string{
		"outer:signal", "inner:signal", "signal",
		"outer:before", "inner:before", "main", "inner:after", "outer:after",
	}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}

type renamingOutbound struct {
	OutboundInterceptorBase
	suffix string
}

func (r *renamingOutbound) ScheduleActivity(cmd *api.ScheduleActivityCommand, next func(*api.ScheduleActivityCommand)) {
	cmd.ActivityType += r.suffix
	next(cmd)
}

func TestOutboundInterceptorRewritesCommands(t *testing.T) {
	def := &Definition{
		Name: "test.Workflow",
		Main: func(ctx Context) error {
			fut, err := ExecuteActivity(ctx, "work")
			if err != nil {
				return err
			}
			return fut.Get(ctx, nil)
		},
	}
	e := newTestEngine(t, def)
	e.outbound = append(e.outbound, &renamingOutbound{suffix: ".v2"})

	activate(t, e, activation(startJob()))
	cmds := conclude(t, e)
	wantVariants(t, cmds, "schedule_activity")
	if got := cmds[0].ScheduleActivity.ActivityType; got != "work.v2" {
		t.Errorf("activity type = %q, want work.v2", got)
	}
}
