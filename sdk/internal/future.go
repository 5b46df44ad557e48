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
	"reflect"

	"github.com/denjalonso/sdk-core/api"
)

// Future is the workflow-visible handle for a value that settles later:
// a timer firing, an activity result, an external-dependency answer, or a
// cancellation scope finishing.
type Future interface {
	// Get suspends the calling workflow coroutine until the future settles,
	// then decodes the value into valuePtr (which may be nil to discard it).
	Get(ctx Context, valuePtr any) error

	// Ready reports whether the future has settled without suspending.
	Ready() bool
}

var _ Future = (*future)(nil)

type future struct {
	eng      *Engine
	resolved bool
	value    any
	err      error
	waiters  []*coroutine
}

func (e *Engine) newFuture() *future {
	return &future{eng: e}
}

func (f *future) Ready() bool { return f.resolved }

// settle resolves or rejects the future and wakes its waiters. Settling
// twice is an engine invariant break.
func (f *future) settle(value any, err error) {
	if f.resolved {
		f.eng.fatal(illegalStatef("future settled twice"))
		return
	}
	f.resolved = true
	f.value = value
	f.err = err
	for _, w := range f.waiters {
		f.eng.sched.enqueue(w)
	}
	f.waiters = nil
}

// trySettle is settle for paths that may legitimately race a cancellation,
// e.g. a scope body returning after its bound future was already rejected.
func (f *future) trySettle(value any, err error) bool {
	if f.resolved {
		return false
	}
	f.settle(value, err)
	return true
}

func (f *future) Get(ctx Context, valuePtr any) error {
	if _, err := engineFromContext(ctx, f.eng); err != nil {
		return err
	}
	for !f.resolved {
		if err := f.eng.sched.await(f); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}
	if valuePtr == nil || f.value == nil {
		return nil
	}
	return f.eng.assignResult(f.value, valuePtr)
}

// assignResult decodes a settled value into the caller's pointer. Activity
// and external results are stored as raw payloads and decoded here, against
// the type the caller actually asked for; plain Go values go through the
// serialization-agnostic converter.
func (e *Engine) assignResult(value any, valuePtr any) error {
	if p, ok := value.(*api.Payload); ok {
		return e.converter.FromPayload(p, valuePtr)
	}
	target := reflect.ValueOf(valuePtr)
	if target.Kind() != reflect.Ptr || target.IsNil() {
		return illegalStatef("result target must be a non-nil pointer, got %T", valuePtr)
	}
	converted, err := e.typeConverter.ConvertToType(value, target.Elem().Type())
	if err != nil {
		return err
	}
	target.Elem().Set(converted)
	return nil
}
