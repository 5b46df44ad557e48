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
	"github.com/denjalonso/sdk-core/sdk/internal"
)

// CancelledError rejects operations owned by a cancelled scope. Workflow
// code may catch it and run cleanup; returned unhandled from the main
// function it fails the run.
type CancelledError = internal.CancelledError

// ActivityError is the workflow-visible form of an activity failure.
type ActivityError = internal.ActivityError

// PanicError wraps a panic raised by workflow code.
type PanicError = internal.PanicError

// DeterminismViolationError reports an operation whose result could differ
// between replays. Fatal to the run.
type DeterminismViolationError = internal.DeterminismViolationError

// IsCancelled reports whether err is (or wraps) a scope cancellation.
func IsCancelled(err error) bool {
	return internal.IsCancelled(err)
}

// SetFinalizer is intercepted: finalizers couple workflow state to garbage
// collection, which no replay can reproduce. It always returns a
// DeterminismViolationError.
func SetFinalizer(obj any, finalizer any) error {
	return &DeterminismViolationError{Op: "finalizers are not available in workflow code"}
}
