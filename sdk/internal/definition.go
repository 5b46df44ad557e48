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
	"reflect"

	"github.com/denjalonso/sdk-core/api"
)

// Definition is the user-supplied workflow program: a main function plus
// named query and signal handlers. Handlers are plain Go functions invoked
// through reflection with serialization-agnostic argument conversion.
//
//   - Main:    func(ctx Context, args...) (R, error) or func(ctx Context, args...) error
//   - Queries: func(args...) (R, error); a leading Context parameter is optional
//   - Signals: func(ctx Context, args...) error
type Definition struct {
	Name    string
	Main    any
	Queries map[string]any
	Signals map[string]any
}

var (
	contextType = reflect.TypeOf((*Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

func validateHandler(fn any, requireCtx bool) error {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return fmt.Errorf("handler is not a function: %T", fn)
	}
	if t.IsVariadic() {
		return fmt.Errorf("variadic handlers are not supported")
	}
	if requireCtx && (t.NumIn() == 0 || !t.In(0).Implements(contextType)) {
		return fmt.Errorf("handler must accept a workflow Context as its first argument")
	}
	if t.NumOut() > 2 {
		return fmt.Errorf("handler may return at most (result, error)")
	}
	if t.NumOut() > 0 && !t.Out(t.NumOut()-1).Implements(errorType) {
		return fmt.Errorf("handler's last return value must be an error")
	}
	return nil
}

// invokeHandler calls fn with arguments decoded from payloads, prepending
// ctx when the function declares a Context parameter. It returns the
// handler's non-error result, if any.
func (e *Engine) invokeHandler(ctx Context, fn any, payloads []*api.Payload) (any, error) {
	fnv := reflect.ValueOf(fn)
	fnt := fnv.Type()

	takesCtx := fnt.NumIn() > 0 && fnt.In(0).Implements(contextType)
	offset := 0
	if takesCtx {
		offset = 1
	}
	if fnt.NumIn()-offset != len(payloads) {
		return nil, fmt.Errorf("argument count mismatch: handler expects %d, got %d", fnt.NumIn()-offset, len(payloads))
	}

	callArgs := make([]reflect.Value, fnt.NumIn())
	if takesCtx {
		callArgs[0] = reflect.ValueOf(ctx)
	}
	for i, p := range payloads {
		paramType := fnt.In(i + offset)
		target := reflect.New(paramType)
		if err := e.converter.FromPayload(p, target.Interface()); err != nil {
			return nil, fmt.Errorf("failed to decode argument %d: %w", i, err)
		}
		callArgs[i+offset] = target.Elem()
	}

	results := fnv.Call(callArgs)

	var err error
	if n := len(results); n > 0 {
		last := results[n-1]
		if last.Type().Implements(errorType) && !last.IsNil() {
			err = last.Interface().(error)
		}
	}
	if len(results) == 2 {
		return results[0].Interface(), err
	}
	return nil, err
}
