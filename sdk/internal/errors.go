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
	"errors"
	"fmt"

	"github.com/denjalonso/sdk-core/api"
)

// The engine distinguishes four error kinds. Determinism violations and
// illegal states are fatal to the run and surface to the host untouched;
// cancellations are recoverable by user code; everything raised from user
// code becomes a wire failure.

// DeterminismViolationError reports user code attempting an operation whose
// outcome could differ between replays.
type DeterminismViolationError struct {
	Op string
}

func (e *DeterminismViolationError) Error() string {
	return fmt.Sprintf("determinism violation: %s", e.Op)
}

// IllegalStateError reports a broken engine invariant: a completion that
// does not exist, an empty scope stack, activation before init.
type IllegalStateError struct {
	Msg string
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("illegal state: %s", e.Msg)
}

func illegalStatef(format string, args ...any) *IllegalStateError {
	return &IllegalStateError{Msg: fmt.Sprintf(format, args...)}
}

// Cancellation source attribution.
const (
	CancelSourceInternal = "internal"
	CancelSourceExternal = "external"
)

// CancelledError rejects continuations owned by a cancelled scope. User code
// may catch it; unhandled it fails the workflow like any other error.
type CancelledError struct {
	Source string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("cancelled (%s)", e.Source)
}

// IsCancelled reports whether err is (or wraps) a scope cancellation.
func IsCancelled(err error) bool {
	var ce *CancelledError
	return errors.As(err, &ce)
}

// ActivityError is the workflow-visible form of an activity failure reported
// by the service.
type ActivityError struct {
	ActivityID string
	Message    string
}

func (e *ActivityError) Error() string {
	return fmt.Sprintf("activity %s failed: %s", e.ActivityID, e.Message)
}

// PanicError represents a panic that occurred in workflow code.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("workflow panic: %v\nStack: %s", e.Value, e.Stack)
}

// isFatal reports whether err must bypass user-code failure conversion and
// surface to the host as-is.
func isFatal(err error) bool {
	var ise *IllegalStateError
	var dve *DeterminismViolationError
	return errors.As(err, &ise) || errors.As(err, &dve)
}

// errorToUserCodeFailure converts an error raised from user code into its
// serializable wire form.
func errorToUserCodeFailure(err error) *api.Failure {
	if err == nil {
		return &api.Failure{Message: "unknown failure"}
	}
	return &api.Failure{Message: err.Error()}
}
