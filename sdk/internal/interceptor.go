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

import "github.com/denjalonso/sdk-core/api"

// Interceptors wrap the two inbound entry points into user code (workflow
// start and signal delivery) and the outbound command emissions. Chains
// compose by right fold: the last interceptor wraps the base action, each
// preceding one wraps its successor. An interceptor must call next exactly
// once or fail.

// ExecuteWorkflowInput is what a start_workflow job hands the chain.
type ExecuteWorkflowInput struct {
	Headers   map[string]*api.Payload
	Arguments []*api.Payload
}

// HandleSignalInput is what a signal_workflow job hands the chain.
type HandleSignalInput struct {
	SignalName string
	Input      []*api.Payload
}

type (
	ExecuteWorkflowNext func(ctx Context, in *ExecuteWorkflowInput) (any, error)
	HandleSignalNext    func(ctx Context, in *HandleSignalInput) error
)

// WorkflowInboundInterceptor wraps invocations entering user code. Embed
// InboundInterceptorBase to implement only the hooks you need.
type WorkflowInboundInterceptor interface {
	ExecuteWorkflow(ctx Context, in *ExecuteWorkflowInput, next ExecuteWorkflowNext) (any, error)
	HandleSignal(ctx Context, in *HandleSignalInput, next HandleSignalNext) error
}

// InboundInterceptorBase passes everything through unchanged.
type InboundInterceptorBase struct{}

var _ WorkflowInboundInterceptor = (*InboundInterceptorBase)(nil)

func (InboundInterceptorBase) ExecuteWorkflow(ctx Context, in *ExecuteWorkflowInput, next ExecuteWorkflowNext) (any, error) {
	return next(ctx, in)
}

func (InboundInterceptorBase) HandleSignal(ctx Context, in *HandleSignalInput, next HandleSignalNext) error {
	return next(ctx, in)
}

func composeExecuteWorkflow(chain []WorkflowInboundInterceptor, base ExecuteWorkflowNext) ExecuteWorkflowNext {
	next := base
	for i := len(chain) - 1; i >= 0; i-- {
		ic := chain[i]
		inner := next
		next = func(ctx Context, in *ExecuteWorkflowInput) (any, error) {
			return ic.ExecuteWorkflow(ctx, in, inner)
		}
	}
	return next
}

func composeHandleSignal(chain []WorkflowInboundInterceptor, base HandleSignalNext) HandleSignalNext {
	next := base
	for i := len(chain) - 1; i >= 0; i-- {
		ic := chain[i]
		inner := next
		next = func(ctx Context, in *HandleSignalInput) error {
			return ic.HandleSignal(ctx, in, inner)
		}
	}
	return next
}

// WorkflowOutboundInterceptor observes or rewrites commands leaving user
// code before they reach the command buffer.
type WorkflowOutboundInterceptor interface {
	StartTimer(cmd *api.StartTimerCommand, next func(*api.StartTimerCommand))
	ScheduleActivity(cmd *api.ScheduleActivityCommand, next func(*api.ScheduleActivityCommand))
}

// OutboundInterceptorBase passes every command through unchanged.
type OutboundInterceptorBase struct{}

var _ WorkflowOutboundInterceptor = (*OutboundInterceptorBase)(nil)

func (OutboundInterceptorBase) StartTimer(cmd *api.StartTimerCommand, next func(*api.StartTimerCommand)) {
	next(cmd)
}

func (OutboundInterceptorBase) ScheduleActivity(cmd *api.ScheduleActivityCommand, next func(*api.ScheduleActivityCommand)) {
	next(cmd)
}

func (e *Engine) emitStartTimer(cmd *api.StartTimerCommand) {
	next := func(c *api.StartTimerCommand) {
		e.pushCommand(&api.Command{StartTimer: c})
	}
	for i := len(e.outbound) - 1; i >= 0; i-- {
		ic := e.outbound[i]
		inner := next
		next = func(c *api.StartTimerCommand) {
			ic.StartTimer(c, inner)
		}
	}
	next(cmd)
}

func (e *Engine) emitScheduleActivity(cmd *api.ScheduleActivityCommand) {
	next := func(c *api.ScheduleActivityCommand) {
		e.pushCommand(&api.Command{ScheduleActivity: c})
	}
	for i := len(e.outbound) - 1; i >= 0; i-- {
		ic := e.outbound[i]
		inner := next
		next = func(c *api.ScheduleActivityCommand) {
			ic.ScheduleActivity(c, inner)
		}
	}
	next(cmd)
}
