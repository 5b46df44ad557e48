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

	"github.com/denjalonso/sdk-core/api"
	"github.com/denjalonso/sdk-core/api/serde"
)

// ActivationResult is what one dispatched job produced.
type ActivationResult struct {
	// Processed is false when the job was skipped under the terminal-state
	// rule: a completed workflow only services queries.
	Processed bool

	// PendingExternalCalls drains the external-call buffer accumulated while
	// running this job.
	PendingExternalCalls []*api.ExternalCall
}

// Activate dispatches job jobIndex of the encoded activation. The host calls
// it once per job, in order, then Conclude. The activation is decoded at
// index 0 and cached for the rest of the batch.
func (e *Engine) Activate(data []byte, jobIndex int) (*ActivationResult, error) {
	if e.fatalErr != nil {
		return nil, e.fatalErr
	}
	if !e.initialized {
		return nil, illegalStatef("activation before workflow init")
	}

	if jobIndex == 0 || e.activation == nil {
		var act api.Activation
		if _, err := serde.DecodeLengthDelimited(e.serder, data, &act); err != nil {
			return nil, fmt.Errorf("decode activation: %w", err)
		}
		e.activation = &act
	}
	act := e.activation
	if jobIndex < 0 || jobIndex >= len(act.Jobs) {
		return nil, illegalStatef("job index %d out of range (%d jobs)", jobIndex, len(act.Jobs))
	}

	e.nowMs = act.TimestampMs
	e.nowSet = true
	e.info.IsReplaying = act.IsReplaying
	if e.info.RunID == "" {
		e.info.RunID = act.RunID
	}

	job := act.Jobs[jobIndex]
	variant := job.Variant()
	if variant == "" {
		return nil, illegalStatef("activation job %d has no variant", jobIndex)
	}

	if e.completed && variant != "query_workflow" {
		e.logger.Debug("skipping job on completed workflow", "job", variant, "run_id", e.info.RunID)
		return &ActivationResult{Processed: false, PendingExternalCalls: e.drainPendingExternal()}, nil
	}

	e.logger.Debug("dispatching activation job",
		"job", variant,
		"job_index", jobIndex,
		"run_id", e.info.RunID,
		"is_replaying", act.IsReplaying)

	if err := e.dispatch(job); err != nil {
		e.fatal(err)
		return nil, err
	}

	e.sched.run()
	if e.fatalErr != nil {
		return nil, e.fatalErr
	}
	return &ActivationResult{Processed: true, PendingExternalCalls: e.drainPendingExternal()}, nil
}

func (e *Engine) dispatch(job *api.ActivationJob) error {
	switch {
	case job.StartWorkflow != nil:
		return e.handleStartWorkflow(job.StartWorkflow)
	case job.CancelWorkflow != nil:
		return e.handleCancelWorkflow()
	case job.FireTimer != nil:
		return e.handleFireTimer(job.FireTimer)
	case job.ResolveActivity != nil:
		return e.handleResolveActivity(job.ResolveActivity)
	case job.QueryWorkflow != nil:
		return e.handleQueryWorkflow(job.QueryWorkflow)
	case job.SignalWorkflow != nil:
		return e.handleSignalWorkflow(job.SignalWorkflow)
	case job.UpdateRandomSeed != nil:
		e.rng = newAlea(job.UpdateRandomSeed.RandomnessSeed)
		return nil
	case job.RemoveFromCache != nil:
		return illegalStatef("remove_from_cache must not reach the sandboxed engine")
	default:
		return illegalStatef("unhandled job variant %q", job.Variant())
	}
}

// handleStartWorkflow runs the interceptor-wrapped main function on a
// coroutine under the root scope. Whenever it eventually returns the run is
// terminal: one of complete_workflow_execution or fail_workflow_execution.
func (e *Engine) handleStartWorkflow(job *api.StartWorkflowJob) error {
	base := func(ctx Context, in *ExecuteWorkflowInput) (any, error) {
		return e.invokeHandler(ctx, e.def.Main, in.Arguments)
	}
	execute := composeExecuteWorkflow(e.inbound, base)
	input := &ExecuteWorkflowInput{Headers: job.Headers, Arguments: job.Arguments}

	e.spawnHandler(rootScopeIdx,
		func() (any, error) {
			return execute(e.rootCtx, input)
		},
		func(value any, err error) {
			e.completed = true
			if err != nil {
				e.logger.Debug("workflow failed", "run_id", e.info.RunID, "error", err)
				e.pushCommand(&api.Command{FailWorkflowExecution: &api.FailWorkflowExecutionCommand{
					Failure: errorToUserCodeFailure(err),
				}})
				return
			}
			p, encErr := e.converter.ToPayload(value)
			if encErr != nil {
				e.pushCommand(&api.Command{FailWorkflowExecution: &api.FailWorkflowExecutionCommand{
					Failure: errorToUserCodeFailure(encErr),
				}})
				return
			}
			e.pushCommand(&api.Command{CompleteWorkflowExecution: &api.CompleteWorkflowExecutionCommand{
				Result: p,
			}})
		})
	return nil
}

// handleCancelWorkflow complete-cancels the root scope. Jobs later in the
// same batch run with the cancelled flag already visible.
func (e *Engine) handleCancelWorkflow() error {
	root, ok := e.scopes[rootScopeIdx]
	if !ok {
		return illegalStatef("root scope missing")
	}
	root.completeCancel(&CancelledError{Source: CancelSourceExternal})
	return nil
}

// handleQueryWorkflow answers a query. Queries are serviceable on completed
// workflows and their failures never terminate the run.
func (e *Engine) handleQueryWorkflow(job *api.QueryWorkflowJob) error {
	respond := func(value any, err error) {
		if err != nil {
			e.pushCommand(&api.Command{RespondToQuery: &api.QueryResult{
				QueryID: job.QueryID,
				Failed:  errorToUserCodeFailure(err),
			}})
			return
		}
		p, encErr := e.converter.ToPayload(value)
		if encErr != nil {
			e.pushCommand(&api.Command{RespondToQuery: &api.QueryResult{
				QueryID: job.QueryID,
				Failed:  errorToUserCodeFailure(encErr),
			}})
			return
		}
		e.pushCommand(&api.Command{RespondToQuery: &api.QueryResult{
			QueryID:   job.QueryID,
			Succeeded: &api.QuerySuccess{Response: p},
		}})
	}

	handler, err := e.queries.get(job.QueryType)
	if err != nil {
		respond(nil, fmt.Errorf("unknown query type %q", job.QueryType))
		return nil
	}

	e.spawnHandler(rootScopeIdx,
		func() (any, error) {
			return e.invokeHandler(e.rootCtx, handler, job.Arguments)
		},
		respond)
	return nil
}

// handleSignalWorkflow runs the interceptor-wrapped signal handler. A signal
// handler failure fails the workflow; later non-query jobs in the batch are
// skipped under the terminal-state rule.
func (e *Engine) handleSignalWorkflow(job *api.SignalWorkflowJob) error {
	handler, err := e.signals.get(job.SignalName)
	if err != nil {
		e.completed = true
		e.pushCommand(&api.Command{FailWorkflowExecution: &api.FailWorkflowExecutionCommand{
			Failure: errorToUserCodeFailure(fmt.Errorf("no handler for signal %q", job.SignalName)),
		}})
		return nil
	}

	base := func(ctx Context, in *HandleSignalInput) error {
		_, err := e.invokeHandler(ctx, handler, in.Input)
		return err
	}
	handleSignal := composeHandleSignal(e.inbound, base)
	input := &HandleSignalInput{SignalName: job.SignalName, Input: job.Input}

	e.spawnHandler(rootScopeIdx,
		func() (any, error) {
			return nil, handleSignal(e.rootCtx, input)
		},
		func(_ any, err error) {
			if err == nil {
				return
			}
			e.logger.Debug("signal handler failed", "signal", job.SignalName, "error", err)
			e.completed = true
			e.pushCommand(&api.Command{FailWorkflowExecution: &api.FailWorkflowExecutionCommand{
				Failure: errorToUserCodeFailure(fmt.Errorf("signal %s failed: %w", job.SignalName, err)),
			}})
		})
	return nil
}

// SetQueryHandler registers a query handler from workflow code.
func SetQueryHandler(ctx Context, name string, fn any) error {
	e, err := engineFromContext(ctx, nil)
	if err != nil {
		return err
	}
	if err := validateHandler(fn, false); err != nil {
		return err
	}
	return e.queries.set(name, fn)
}

// SetSignalHandler registers a signal handler from workflow code.
func SetSignalHandler(ctx Context, name string, fn any) error {
	e, err := engineFromContext(ctx, nil)
	if err != nil {
		return err
	}
	if err := validateHandler(fn, false); err != nil {
		return err
	}
	return e.signals.set(name, fn)
}
