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
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/denjalonso/sdk-core/api"
	"github.com/denjalonso/sdk-core/api/serde"
)

// Engine is the deterministic runtime for exactly one workflow run. All
// state lives here and is touched from a single host goroutine; determinism
// comes from single-threaded cooperative stepping, not from locks.
type Engine struct {
	logger        *slog.Logger
	serder        serde.BinarySerde
	converter     api.DataConverter
	typeConverter *serde.TypeConverter

	def  *Definition
	info *api.WorkflowInfo

	sched *scheduler

	scopes       map[int]*scope
	children     map[int][]int
	scopeStack   []int
	nextScopeIdx int

	completions map[uint64]*completion
	nextSeq     uint64

	commands        []*api.Command
	pendingExternal []*api.ExternalCall

	deps map[string]*dependency

	inbound  []WorkflowInboundInterceptor
	outbound []WorkflowOutboundInterceptor

	queries *hashMapRegistry
	signals *hashMapRegistry

	rootCtx Context

	activityDefaults *ActivityOptions

	initialized bool
	completed   bool
	cancelled   bool
	closing     bool

	nowMs  int64
	nowSet bool
	rng    *alea

	// activation currently being dispatched, decoded at job index 0.
	activation *api.Activation

	// fatalErr latches the first determinism/illegal-state error; once set,
	// the run is poisoned and every host call reports it.
	fatalErr error
}

// EngineOption configures a new engine.
type EngineOption func(*Engine)

func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

func WithSerde(s serde.BinarySerde) EngineOption {
	return func(e *Engine) { e.serder = s }
}

func WithConverter(c api.DataConverter) EngineOption {
	return func(e *Engine) { e.converter = c }
}

// WithActivityDefaults installs options applied to every activity executed
// without explicit options on its context.
func WithActivityDefaults(opts ActivityOptions) EngineOption {
	return func(e *Engine) { e.activityDefaults = &opts }
}

func WithOutboundInterceptors(chain ...WorkflowOutboundInterceptor) EngineOption {
	return func(e *Engine) { e.outbound = append(e.outbound, chain...) }
}

// NewEngine builds an engine. InitWorkflow must run before the first
// activation.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		scopes:      make(map[int]*scope),
		children:    make(map[int][]int),
		completions: make(map[uint64]*completion),
		deps:        make(map[string]*dependency),
		queries:     newHandlerRegistry(),
		signals:     newHandlerRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = defaultLogger(e.logger)
	if e.serder == nil {
		e.serder = &serde.MsgpackSerde{}
	}
	if e.converter == nil {
		e.converter = api.DefaultConverter()
	}
	e.typeConverter = serde.NewTypeConverter(e.serder)
	e.sched = newScheduler(e)
	return e
}

// InitWorkflow binds the workflow definition and run metadata, seeds the
// deterministic RNG and creates the root scope. Called exactly once, before
// the first activation.
func (e *Engine) InitWorkflow(def *Definition, info *api.WorkflowInfo, randomnessSeed []byte, interceptors ...WorkflowInboundInterceptor) error {
	if e.initialized {
		return illegalStatef("workflow already initialized")
	}
	if def == nil || def.Main == nil {
		return illegalStatef("workflow definition has no main function")
	}
	if info == nil {
		return illegalStatef("workflow info is required")
	}
	if err := validateHandler(def.Main, true); err != nil {
		return err
	}
	for name, fn := range def.Queries {
		if err := e.queries.set(name, fn); err != nil {
			return err
		}
	}
	for name, fn := range def.Signals {
		if err := e.signals.set(name, fn); err != nil {
			return err
		}
	}

	e.def = def
	e.info = info
	e.inbound = append(e.inbound, interceptors...)
	e.rng = newAlea(randomnessSeed)
	e.makeRootScope()
	e.rootCtx = e.newContext()
	e.initialized = true

	e.logger.Debug("workflow initialized",
		"workflow_type", info.WorkflowType,
		"run_id", info.RunID,
		"task_queue", info.TaskQueue)
	return nil
}

// Info returns the run metadata. Nil before init.
func (e *Engine) Info() *api.WorkflowInfo { return e.info }

// Now is the deterministic clock: the timestamp of the activation being
// processed. Reading it before the first activation is an illegal state.
func (e *Engine) Now() (time.Time, error) {
	if !e.nowSet {
		return time.Time{}, illegalStatef("deterministic time read before the first activation")
	}
	return time.UnixMilli(e.nowMs).UTC(), nil
}

// Random draws from the seeded generator.
func (e *Engine) Random() float64 {
	return e.rng.Float64()
}

// fatal poisons the run. The first error wins; it surfaces from the current
// and every subsequent host call.
func (e *Engine) fatal(err error) {
	if e.fatalErr != nil {
		return
	}
	e.fatalErr = err
	e.logger.Error("workflow engine entered fatal state", "error", err)
}

func (e *Engine) pushCommand(cmd *api.Command) {
	e.commands = append(e.commands, cmd)
}

// spawnHandler runs a user entry point (workflow main, signal or query
// handler) on a coroutine under the given scope, synchronously to its first
// suspension. onDone fires when the handler eventually returns — possibly
// many activations later. User panics become PanicErrors; engine-fatal
// errors bypass onDone and poison the run.
func (e *Engine) spawnHandler(scopeIdx int, run func() (any, error), onDone func(value any, err error)) {
	co := e.sched.spawn(scopeIdx, func() {
		var value any
		var err error
		func() {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if _, ok := r.(shutdownSignal); ok {
					panic(r)
				}
				err = &PanicError{Value: r, Stack: string(debug.Stack())}
			}()
			value, err = run()
		}()
		if err != nil && isFatal(err) {
			e.fatal(err)
			return
		}
		onDone(value, err)
	})
	e.sched.step(co)
}

// ConclusionType discriminates what a finished activation produced.
type ConclusionType int

const (
	// ConclusionPending: external calls are outstanding; the host must
	// execute them and deliver results before concluding again.
	ConclusionPending ConclusionType = iota

	// ConclusionComplete: the encoded completion is ready for the service.
	ConclusionComplete
)

// Conclusion is the result of Conclude.
type Conclusion struct {
	Type          ConclusionType
	ExternalCalls []*api.ExternalCall
	Encoded       []byte
}

// Conclude finishes the current activation after all jobs were dispatched
// and the scheduler is quiescent.
func (e *Engine) Conclude() (*Conclusion, error) {
	if e.fatalErr != nil {
		return nil, e.fatalErr
	}
	if !e.initialized {
		return nil, illegalStatef("conclude before init")
	}
	e.sched.run()
	if e.fatalErr != nil {
		return nil, e.fatalErr
	}

	if len(e.pendingExternal) > 0 {
		return &Conclusion{Type: ConclusionPending, ExternalCalls: e.drainPendingExternal()}, nil
	}

	if len(e.scopeStack) != 1 || e.scopeStack[0] != rootScopeIdx {
		return nil, illegalStatef("scope stack unbalanced at conclusion: %v", e.scopeStack)
	}

	completion := &api.ActivationCompletion{
		RunID:      e.info.RunID,
		Successful: &api.Success{Commands: e.commands},
	}
	encoded, err := serde.EncodeLengthDelimited(e.serder, completion)
	if err != nil {
		return nil, err
	}
	e.commands = nil
	e.activation = nil
	return &Conclusion{Type: ConclusionComplete, Encoded: encoded}, nil
}

func (e *Engine) drainPendingExternal() []*api.ExternalCall {
	calls := e.pendingExternal
	e.pendingExternal = nil
	return calls
}

// Close tears the engine down, unwinding every suspended coroutine so their
// goroutines exit. The engine is unusable afterwards.
func (e *Engine) Close() {
	if e.closing {
		return
	}
	e.closing = true
	e.sched.close()
}

// encodeValues converts handler arguments to wire payloads.
func (e *Engine) encodeValues(values []any) ([]*api.Payload, error) {
	payloads := make([]*api.Payload, len(values))
	for i, v := range values {
		p, err := e.converter.ToPayload(v)
		if err != nil {
			return nil, err
		}
		payloads[i] = p
	}
	return payloads, nil
}
