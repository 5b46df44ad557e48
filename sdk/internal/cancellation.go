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

// CancelScopeFunc requests cancellation of a scope opened with
// NewCancellationScope. Intent fans out to the scope's children: timers
// cancel immediately, activities emit request_cancel_activity and reject
// when the service confirms.
type CancelScopeFunc func()

// NewCancellationScope runs fn under a fresh cancellable scope,
// synchronously up to its first suspension. The returned future settles with
// fn's result; if the scope is cancelled, operations inside fn reject with
// CancelledError and fn decides whether to swallow or return it.
func NewCancellationScope(ctx Context, fn func(ctx Context) (any, error)) (Future, CancelScopeFunc, error) {
	e, err := engineFromContext(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	var opened *scope
	bound := e.openScope(scopeTypeScope, func(sc *scope) (any, error) {
		opened = sc
		return fn(ctx)
	})
	cancel := func() {
		if opened == nil {
			return
		}
		if _, live := e.scopes[opened.idx]; !live {
			return
		}
		opened.cancelRequested = true
		_ = opened.requestCancel()
	}
	return bound, cancel, nil
}
