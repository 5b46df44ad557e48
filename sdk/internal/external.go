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
	"reflect"

	"github.com/denjalonso/sdk-core/api"
)

// External dependencies are the only sanctioned non-determinism: host
// functions the workflow may call for metrics, logging and similar side
// channels. Sync calls run in-sandbox through the injected reference;
// awaited calls cross the activation boundary through the completion table
// so the engine arbitrates their ordering; ignored calls are fire-and-forget.

// ApplyMode selects how an injected dependency function is dispatched.
type ApplyMode int

const (
	// ApplyModeSync dispatches immediately in-sandbox and returns the value.
	ApplyModeSync ApplyMode = iota

	// ApplyModeAsync enqueues the call and returns a future resolved when
	// the host delivers the matching external result.
	ApplyModeAsync

	// ApplyModeAsyncIgnored enqueues the call without a sequence number;
	// results are discarded.
	ApplyModeAsyncIgnored
)

type dependency struct {
	ifaceName string
	fnName    string
	ref       reflect.Value
	mode      ApplyMode
}

func depKey(ifaceName, fnName string) string {
	return ifaceName + "." + fnName
}

// Inject registers a host dependency function. Sync references must be
// functions; async modes dispatch host-side, so the reference may be nil.
func (e *Engine) Inject(ifaceName, fnName string, ref any, mode ApplyMode) error {
	key := depKey(ifaceName, fnName)
	if _, ok := e.deps[key]; ok {
		return fmt.Errorf("dependency %s already injected", key)
	}
	d := &dependency{ifaceName: ifaceName, fnName: fnName, mode: mode}
	if mode == ApplyModeSync {
		rv := reflect.ValueOf(ref)
		if !rv.IsValid() || rv.Kind() != reflect.Func {
			return fmt.Errorf("sync dependency %s requires a function reference", key)
		}
		d.ref = rv
	}
	e.deps[key] = d
	return nil
}

// ExternalCall invokes an injected dependency from workflow code. The
// returned future is nil for sync and ignored modes; sync results come back
// in result.
func ExternalCall(ctx Context, ifaceName, fnName string, args ...any) (result any, fut Future, err error) {
	e, err := engineFromContext(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	d, ok := e.deps[depKey(ifaceName, fnName)]
	if !ok {
		return nil, nil, fmt.Errorf("no dependency injected for %s.%s", ifaceName, fnName)
	}

	switch d.mode {
	case ApplyModeSync:
		v, callErr := e.callSyncDependency(d, args)
		return v, nil, callErr

	case ApplyModeAsync:
		payloads, encErr := e.encodeValues(args)
		if encErr != nil {
			return nil, nil, encErr
		}
		seq := e.nextSequence()
		raw := e.newFuture()
		e.completions[seq] = &completion{
			resolve:  func(v any) { raw.trySettle(v, nil) },
			reject:   func(err error) { raw.trySettle(nil, err) },
			scopeIdx: e.currentScopeIdx(),
		}
		s := seq
		e.pendingExternal = append(e.pendingExternal, &api.ExternalCall{
			IfaceName: ifaceName,
			FnName:    fnName,
			Args:      payloads,
			Seq:       &s,
		})
		return nil, raw, nil

	case ApplyModeAsyncIgnored:
		payloads, encErr := e.encodeValues(args)
		if encErr != nil {
			return nil, nil, encErr
		}
		e.pendingExternal = append(e.pendingExternal, &api.ExternalCall{
			IfaceName: ifaceName,
			FnName:    fnName,
			Args:      payloads,
		})
		return nil, nil, nil

	default:
		return nil, nil, illegalStatef("unknown apply mode %d", d.mode)
	}
}

func (e *Engine) callSyncDependency(d *dependency, args []any) (any, error) {
	fnt := d.ref.Type()
	if fnt.NumIn() != len(args) {
		return nil, fmt.Errorf("dependency %s.%s expects %d arguments, got %d", d.ifaceName, d.fnName, fnt.NumIn(), len(args))
	}
	callArgs := make([]reflect.Value, len(args))
	for i, arg := range args {
		converted, err := e.typeConverter.ConvertToType(arg, fnt.In(i))
		if err != nil {
			return nil, fmt.Errorf("dependency %s.%s argument %d: %w", d.ifaceName, d.fnName, i, err)
		}
		callArgs[i] = converted
	}

	results := d.ref.Call(callArgs)

	var err error
	if n := len(results); n > 0 {
		last := results[n-1]
		if last.Type().Implements(errorType) {
			if !last.IsNil() {
				err = last.Interface().(error)
			}
			results = results[:n-1]
		}
	}
	if len(results) > 0 {
		return results[0].Interface(), err
	}
	return nil, err
}

// ResolveExternalDependencies delivers a batch of host answers for awaited
// external calls, consuming their completions. The host follows up with
// Conclude once the scheduler settles.
func (e *Engine) ResolveExternalDependencies(results []*api.ExternalResult) error {
	if e.fatalErr != nil {
		return e.fatalErr
	}
	for _, r := range results {
		c, err := e.takeCompletion(r.Seq)
		if err != nil {
			e.fatal(err)
			return err
		}
		if r.Error != "" {
			c.reject(errors.New(r.Error))
		} else {
			c.resolve(r.Result)
		}
	}
	e.sched.run()
	return e.fatalErr
}
