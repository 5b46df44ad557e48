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
	"github.com/denjalonso/sdk-core/api"
)

// ExecuteActivity schedules an activity and returns a future for its result.
// The activity runs under a fresh activity-typed scope: requesting
// cancellation emits request_cancel_activity and the rejection arrives with
// the service's canceled confirmation, never before.
func ExecuteActivity(ctx Context, activityType string, args ...any) (Future, error) {
	e, err := engineFromContext(ctx, nil)
	if err != nil {
		return nil, err
	}
	payloads, err := e.encodeValues(args)
	if err != nil {
		return nil, err
	}
	opts := getActivityOptions(ctx, e)

	bound := e.openScope(scopeTypeActivity, func(sc *scope) (any, error) {
		seq := e.nextSequence()
		raw := e.newFuture()
		e.completions[seq] = &completion{
			resolve:  func(v any) { raw.trySettle(v, nil) },
			reject:   func(err error) { raw.trySettle(nil, err) },
			scopeIdx: sc.idx,
		}
		sc.requestCancel = func() error {
			e.pushCommand(&api.Command{RequestCancelActivity: &api.RequestCancelActivityCommand{
				ActivityID: formatSeq(seq),
			}})
			return nil
		}
		sc.completeCancel = func(cerr *CancelledError) {
			delete(e.completions, seq)
			raw.trySettle(nil, cerr)
		}

		cmd := &api.ScheduleActivityCommand{
			ActivityID:   formatSeq(seq),
			ActivityType: activityType,
			Arguments:    payloads,
		}
		if opts != nil {
			cmd.TaskQueue = opts.TaskQueue
			cmd.ScheduleToCloseTimeoutMs = opts.ScheduleToCloseTimeout.Milliseconds()
			cmd.StartToCloseTimeoutMs = opts.StartToCloseTimeout.Milliseconds()
			cmd.RetryPolicy = retryPolicyToAPI(opts.RetryPolicy)
		}
		e.emitScheduleActivity(cmd)

		var result any
		if err := raw.Get(ctx, nil); err != nil {
			return nil, err
		}
		result = raw.value
		return result, nil
	})
	return bound, nil
}

func retryPolicyToAPI(rp *RetryPolicy) *api.RetryPolicy {
	if rp == nil {
		return nil
	}
	return &api.RetryPolicy{
		InitialIntervalMs:      rp.InitialInterval.Milliseconds(),
		BackoffCoefficient:     rp.BackoffCoefficient,
		MaximumIntervalMs:      rp.MaximumInterval.Milliseconds(),
		MaximumAttempts:        rp.MaximumAttempts,
		NonRetryableErrorTypes: rp.NonRetryableErrorTypes,
	}
}

// handleResolveActivity consumes the completion for a resolve_activity job.
func (e *Engine) handleResolveActivity(job *api.ResolveActivityJob) error {
	seq, err := parseSeq(job.ActivityID)
	if err != nil {
		return err
	}
	if job.Result == nil {
		return illegalStatef("resolve_activity %d carries no result", seq)
	}

	switch {
	case job.Result.Completed != nil:
		c, err := e.takeCompletion(seq)
		if err != nil {
			return err
		}
		c.resolve(job.Result.Completed.Result)

	case job.Result.Failed != nil:
		c, err := e.takeCompletion(seq)
		if err != nil {
			return err
		}
		msg := "activity failed"
		if f := job.Result.Failed.Failure; f != nil {
			msg = f.Message
		}
		c.reject(&ActivityError{ActivityID: job.ActivityID, Message: msg})

	case job.Result.Canceled != nil:
		c, ok := e.completions[seq]
		if !ok {
			return illegalStatef("no completion for sequence %d", seq)
		}
		sc, ok := e.scopes[c.scopeIdx]
		if !ok || sc.completeCancel == nil {
			// Scope already gone; consume the slot and drop the confirmation.
			delete(e.completions, seq)
			return nil
		}
		sc.completeCancel(&CancelledError{Source: CancelSourceInternal})

	default:
		return illegalStatef("resolve_activity %d has an empty result variant", seq)
	}
	return nil
}
