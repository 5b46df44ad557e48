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

import "slices"

// Scopes form the cancellation tree. They live in an arena keyed by a
// monotonic index (0 is the root, created at init and never destroyed);
// parents are indices and children ordered index slices, which keeps the
// cancellation fan-out order deterministic and identity comparison O(1).

type scopeType int

const (
	scopeTypeScope scopeType = iota
	scopeTypeActivity
	scopeTypeTimer
)

func (t scopeType) String() string {
	switch t {
	case scopeTypeScope:
		return "scope"
	case scopeTypeActivity:
		return "activity"
	case scopeTypeTimer:
		return "timer"
	default:
		return "unknown"
	}
}

const rootScopeIdx = 0

type scope struct {
	idx    int
	parent int // -1 for the root
	typ    scopeType

	// associated is set once the scope has bound its governing coroutine.
	associated bool

	// cancellable scopes appear in their parent's child set and receive
	// cancellation fan-out until their governing future settles.
	cancellable     bool
	cancelRequested bool

	// requestCancel carries user intent (typically outbound cancel
	// commands); completeCancel acknowledges the cancellation and rejects
	// the continuations the scope owns.
	requestCancel  func() error
	completeCancel func(err *CancelledError)

	bound *future
}

func (e *Engine) makeRootScope() {
	root := &scope{idx: rootScopeIdx, parent: -1, typ: scopeTypeScope}
	root.requestCancel = func() error {
		return illegalStatef("the root scope cannot be cancelled from workflow code")
	}
	root.completeCancel = func(err *CancelledError) {
		e.cancelled = true
		e.fanOutCompleteCancel(rootScopeIdx, err)
	}
	e.scopes[rootScopeIdx] = root
	e.nextScopeIdx = rootScopeIdx + 1
	e.scopeStack = []int{rootScopeIdx}
}

// openScope creates a child of the current scope and runs body on a fresh
// coroutine bound to it, synchronously up to the first suspension. The
// returned future settles when body returns; the scope is destroyed at that
// point. body receives the scope so it can install the type-specific cancel
// thunks once it knows its sequence number.
func (e *Engine) openScope(typ scopeType, body func(sc *scope) (any, error)) *future {
	parent := e.currentScopeIdx()
	sc := &scope{
		idx:         e.nextScopeIdx,
		parent:      parent,
		typ:         typ,
		cancellable: true,
	}
	e.nextScopeIdx++
	e.scopes[sc.idx] = sc
	e.children[parent] = append(e.children[parent], sc.idx)

	bound := e.newFuture()
	sc.bound = bound
	if typ == scopeTypeScope {
		sc.requestCancel = func() error {
			e.fanOutRequestCancel(sc.idx)
			return nil
		}
		sc.completeCancel = func(err *CancelledError) {
			e.fanOutCompleteCancel(sc.idx, err)
			e.destroyScope(sc)
			bound.trySettle(nil, err)
		}
	}

	co := e.sched.spawn(sc.idx, func() {
		v, err := body(sc)
		e.destroyScope(sc)
		bound.trySettle(v, err)
	})
	sc.associated = true
	e.sched.step(co)
	return bound
}

// destroyScope removes sc from the arena and from its parent's child set.
// Idempotent: cancellation and normal completion may both reach it.
func (e *Engine) destroyScope(sc *scope) {
	if _, ok := e.scopes[sc.idx]; !ok {
		return
	}
	delete(e.scopes, sc.idx)
	delete(e.children, sc.idx)
	siblings := e.children[sc.parent]
	if i := slices.Index(siblings, sc.idx); i >= 0 {
		siblings = slices.Delete(siblings, i, i+1)
	}
	if len(siblings) == 0 {
		delete(e.children, sc.parent)
	} else {
		e.children[sc.parent] = siblings
	}
}

// fanOutRequestCancel propagates cancellation intent depth-first over the
// child set, each child exactly once per cancellation event.
func (e *Engine) fanOutRequestCancel(idx int) {
	for _, cidx := range slices.Clone(e.children[idx]) {
		child, ok := e.scopes[cidx]
		if !ok || child.cancelRequested {
			continue
		}
		child.cancelRequested = true
		if child.requestCancel == nil {
			continue
		}
		if err := child.requestCancel(); err != nil {
			e.logger.Warn("scope cancel request failed", "scope", cidx, "error", err)
		}
	}
}

// fanOutCompleteCancel cancels the subtree under idx. Timers and nested
// scopes complete immediately; activities only receive the cancel request,
// because their rejection must wait for the service's canceled confirmation.
func (e *Engine) fanOutCompleteCancel(idx int, err *CancelledError) {
	for _, cidx := range slices.Clone(e.children[idx]) {
		child, ok := e.scopes[cidx]
		if !ok {
			continue
		}
		if child.typ == scopeTypeActivity {
			if child.cancelRequested || child.requestCancel == nil {
				continue
			}
			child.cancelRequested = true
			if rerr := child.requestCancel(); rerr != nil {
				e.logger.Warn("scope cancel request failed", "scope", cidx, "error", rerr)
			}
			continue
		}
		if child.completeCancel != nil {
			child.completeCancel(err)
		}
	}
}

// pushContainerScope pushes the nearest scope-typed ancestor of idx onto the
// scope stack; timer- and activity-typed scopes are leaves that never own
// nested work directly.
func (e *Engine) pushContainerScope(idx int) {
	for cur := idx; cur >= 0; {
		sc, ok := e.scopes[cur]
		if !ok {
			break
		}
		if sc.typ == scopeTypeScope {
			e.scopeStack = append(e.scopeStack, cur)
			return
		}
		cur = sc.parent
	}
	// A destroyed or leaf-orphaned scope falls back to the root: top-level
	// continuations without an explicit association belong to the root.
	e.scopeStack = append(e.scopeStack, rootScopeIdx)
}

func (e *Engine) popScope() {
	if len(e.scopeStack) <= 1 {
		e.fatal(illegalStatef("scope stack underflow"))
		return
	}
	e.scopeStack = e.scopeStack[:len(e.scopeStack)-1]
}

func (e *Engine) currentScopeIdx() int {
	return e.scopeStack[len(e.scopeStack)-1]
}
