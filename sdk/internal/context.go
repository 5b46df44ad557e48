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
	"context"
	"time"
)

// Context is the handle workflow code receives. It satisfies context.Context
// for value plumbing, but carries no deadline and no cancellation channel:
// workflow cancellation travels through the scope tree, not through Done().
type Context interface {
	context.Context

	// WithValue derives a context carrying key=value.
	WithValue(key, value any) Context
}

var _ Context = (*workflowContext)(nil)

type workflowContext struct {
	context.Context
	eng *Engine
}

func (e *Engine) newContext() Context {
	return &workflowContext{Context: context.Background(), eng: e}
}

func (c *workflowContext) WithValue(key, value any) Context {
	return &workflowContext{Context: context.WithValue(c.Context, key, value), eng: c.eng}
}

// engineFromContext recovers the engine behind a workflow context. want, if
// non-nil, asserts the context belongs to that engine: two runs must never
// share state.
func engineFromContext(ctx Context, want *Engine) (*Engine, error) {
	wc, ok := ctx.(*workflowContext)
	if !ok {
		return nil, illegalStatef("not a workflow context: %T", ctx)
	}
	if want != nil && wc.eng != want {
		return nil, illegalStatef("context belongs to a different workflow run")
	}
	return wc.eng, nil
}

// FromContext is engineFromContext for the workflow facade package.
func FromContext(ctx Context) (*Engine, error) {
	return engineFromContext(ctx, nil)
}

type activityOptionsKey struct{}

// ActivityOptions configure how an activity is scheduled.
type ActivityOptions struct {
	// TaskQueue overrides the workflow's own task queue.
	TaskQueue string

	// ScheduleToCloseTimeout is the total time allowed for the activity
	// including retries. Zero means unlimited; either this or
	// StartToCloseTimeout should be set.
	ScheduleToCloseTimeout time.Duration

	// StartToCloseTimeout is the maximum time of a single execution attempt.
	StartToCloseTimeout time.Duration

	RetryPolicy *RetryPolicy
}

// RetryPolicy controls service-side activity retries.
type RetryPolicy struct {
	// Backoff interval for the first retry. Defaults to 1s server-side.
	InitialInterval time.Duration

	// Coefficient multiplying the previous interval. Must be 1 or larger;
	// defaults to 2.0.
	BackoffCoefficient float64

	// Cap on the backoff interval. Defaults to 100x the initial interval.
	MaximumInterval time.Duration

	// Maximum number of attempts; 0 means unlimited.
	MaximumAttempts int32

	// Errors whose message matches an entry are never retried.
	NonRetryableErrorTypes []string
}

// WithActivityOptions derives a context whose activity executions use opts.
func WithActivityOptions(ctx Context, opts ActivityOptions) Context {
	return ctx.WithValue(activityOptionsKey{}, opts)
}

func getActivityOptions(ctx Context, eng *Engine) *ActivityOptions {
	if v := ctx.Value(activityOptionsKey{}); v != nil {
		opts := v.(ActivityOptions)
		return &opts
	}
	return eng.activityDefaults
}
