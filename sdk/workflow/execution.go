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

package workflow

import (
	"time"

	"github.com/denjalonso/sdk-core/sdk/internal"
)

// Sleep pauses the workflow for d of workflow time. Returns a CancelledError
// if the run is cancelled while sleeping.
func Sleep(ctx Context, d time.Duration) error {
	return internal.Sleep(ctx, d)
}

// CancelTimerFunc cancels a pending timer; a no-op once the timer fired.
type CancelTimerFunc = internal.CancelTimerFunc

// NewTimer starts a timer and returns its future plus a cancel function.
func NewTimer(ctx Context, d time.Duration) (Future, CancelTimerFunc, error) {
	return internal.NewTimer(ctx, d)
}

// ExecuteActivity schedules an activity on the service and returns a future
// for its result. Options come from WithActivityOptions on ctx, falling back
// to the engine's defaults.
func ExecuteActivity(ctx Context, activityType string, args ...any) (Future, error) {
	return internal.ExecuteActivity(ctx, activityType, args...)
}

// CancelScopeFunc requests cancellation of an open scope.
type CancelScopeFunc = internal.CancelScopeFunc

// NewCancellationScope runs fn under a cancellable scope. Cancelling the
// scope rejects the timers and activities opened inside it; fn observes the
// CancelledError at its next suspension point.
func NewCancellationScope(ctx Context, fn func(ctx Context) (any, error)) (Future, CancelScopeFunc, error) {
	return internal.NewCancellationScope(ctx, fn)
}

// ExternalCall invokes a host-injected dependency function, the only
// sanctioned non-deterministic operation. Sync dependencies return their
// value directly; async ones return a future settled when the host answers;
// ignored ones return neither.
func ExternalCall(ctx Context, ifaceName, fnName string, args ...any) (any, Future, error) {
	return internal.ExternalCall(ctx, ifaceName, fnName, args...)
}
