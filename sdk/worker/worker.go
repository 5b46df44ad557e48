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

package worker

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/gofrs/uuid/v5"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/denjalonso/sdk-core/api"
	"github.com/denjalonso/sdk-core/api/serde"
	"github.com/denjalonso/sdk-core/sdk/internal"
	"github.com/denjalonso/sdk-core/sdk/workflow"
)

// Worker hosts one sandboxed engine per workflow run: it consumes encoded
// activations from JetStream, drives the engines job by job, executes the
// external-dependency calls they surface and publishes encoded completions.
// Activity execution lives elsewhere; this worker only replays workflow code.
type Worker struct {
	conn      *Conn
	taskQueue string
	namespace string
	identity  string

	logger  *slog.Logger
	serder  serde.BinarySerde
	tracer  trace.Tracer
	metrics *metrics

	workflows map[string]*workflow.Definition
	deps      []injection

	mu      sync.Mutex
	engines map[api.RunID]*internal.Engine
}

// ApplyMode selects how an injected dependency function is dispatched; see
// the engine documentation for the three modes.
type ApplyMode = internal.ApplyMode

const (
	ApplyModeSync         ApplyMode = internal.ApplyModeSync
	ApplyModeAsync        ApplyMode = internal.ApplyModeAsync
	ApplyModeAsyncIgnored ApplyMode = internal.ApplyModeAsyncIgnored
)

// injection records a dependency to install into every new engine and, for
// async modes, to execute worker-side when the engine surfaces a call.
type injection struct {
	ifaceName string
	fnName    string
	ref       any
	mode      ApplyMode
}

// Options configure a worker.
type Options struct {
	TaskQueue string
	Namespace string
	Logger    *slog.Logger
	Serde     serde.BinarySerde
	// Registerer receives the worker metrics; defaults to the global
	// prometheus registry.
	Registerer prometheus.Registerer
}

// New builds a worker on an established connection.
func New(conn *Conn, opts *Options) (*Worker, error) {
	if conn == nil {
		return nil, fmt.Errorf("worker requires a connection")
	}
	if opts == nil {
		opts = &Options{}
	}
	taskQueue := opts.TaskQueue
	if taskQueue == "" {
		taskQueue = "default"
	}
	serder := opts.Serde
	if serder == nil {
		serder = &serde.MsgpackSerde{}
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate worker identity: %w", err)
	}

	return &Worker{
		conn:      conn,
		taskQueue: taskQueue,
		namespace: opts.Namespace,
		identity:  "worker-" + id.String(),
		logger:    defaultLogger(opts.Logger),
		serder:    serder,
		tracer:    otel.Tracer("sdk-core/worker"),
		metrics:   newMetrics(reg, taskQueue),
		workflows: make(map[string]*workflow.Definition),
		engines:   make(map[api.RunID]*internal.Engine),
	}, nil
}

// RegisterWorkflow makes a workflow definition available to incoming runs.
func (w *Worker) RegisterWorkflow(def *workflow.Definition) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("workflow definition requires a name")
	}
	if _, ok := w.workflows[def.Name]; ok {
		return fmt.Errorf("workflow %q already registered", def.Name)
	}
	w.workflows[def.Name] = def
	return nil
}

// Inject registers a host dependency exposed to every workflow run. Async
// references are executed worker-side when the engine surfaces the call;
// they must be functions.
func (w *Worker) Inject(ifaceName, fnName string, ref any, mode ApplyMode) error {
	if mode != ApplyModeSync {
		if ref == nil || reflect.TypeOf(ref).Kind() != reflect.Func {
			return fmt.Errorf("async dependency %s.%s requires a function reference", ifaceName, fnName)
		}
	}
	w.deps = append(w.deps, injection{ifaceName: ifaceName, fnName: fnName, ref: ref, mode: mode})
	return nil
}

// Run consumes activations until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if len(w.workflows) == 0 {
		return fmt.Errorf("worker has no registered workflows")
	}
	if err := w.conn.EnsureStreams(ctx); err != nil {
		return err
	}

	w.logger.Info("worker starting",
		"identity", w.identity,
		"task_queue", w.taskQueue,
		"workflows", len(w.workflows))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		durable := "wf-" + w.taskQueue
		return w.conn.ConsumeActivations(gCtx, w.taskQueue, durable, w.handleActivationMsg)
	})
	g.Go(func() error {
		<-gCtx.Done()
		w.closeEngines()
		return gCtx.Err()
	})
	return g.Wait()
}

func (w *Worker) closeEngines() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for runID, eng := range w.engines {
		eng.Close()
		delete(w.engines, runID)
	}
	w.metrics.engines.Set(0)
}

func (w *Worker) handleActivationMsg(ctx context.Context, msg jetstream.Msg) {
	w.metrics.activations.Inc()

	encoded := msg.Data()
	var act api.Activation
	if _, err := serde.DecodeLengthDelimited(w.serder, encoded, &act); err != nil {
		w.logger.Error("failed to decode activation, terminating message", "error", err)
		_ = msg.Term()
		return
	}

	ctx, span := w.tracer.Start(ctx, "worker.activation", trace.WithAttributes(
		attribute.String("run_id", act.RunID.String()),
		attribute.Int("jobs", len(act.Jobs)),
		attribute.Bool("is_replaying", act.IsReplaying),
	))
	defer span.End()

	if err := w.processActivation(ctx, &act, encoded); err != nil {
		w.metrics.failures.Inc()
		w.logger.Error("activation failed, sending NAK", "run_id", act.RunID, "error", err)
		w.evictEngine(act.RunID)
		_ = msg.Nak()
		return
	}

	w.logger.Debug("activation succeeded, sending ACK", "run_id", act.RunID)
	_ = msg.Ack()
}

// processActivation drives one engine through every job of the activation,
// settles external calls and publishes the completion.
func (w *Worker) processActivation(ctx context.Context, act *api.Activation, encoded []byte) error {
	eng, err := w.engineFor(act)
	if err != nil {
		return err
	}

	var pending []*api.ExternalCall
	for i := range act.Jobs {
		w.metrics.jobs.Inc()
		res, err := eng.Activate(encoded, i)
		if err != nil {
			return err
		}
		pending = append(pending, res.PendingExternalCalls...)
	}

	// External calls loop until the engine settles: an answered call can
	// unblock workflow code that immediately issues another one.
	for {
		if len(pending) > 0 {
			results, err := w.executeExternalCalls(ctx, pending)
			if err != nil {
				return err
			}
			pending = nil
			if len(results) > 0 {
				if err := eng.ResolveExternalDependencies(results); err != nil {
					return err
				}
			}
		}

		conclusion, err := eng.Conclude()
		if err != nil {
			return err
		}
		if conclusion.Type == internal.ConclusionPending {
			pending = conclusion.ExternalCalls
			continue
		}

		w.metrics.completions.Inc()
		return w.conn.PublishCompletion(ctx, w.taskQueue, act.RunID, conclusion.Encoded)
	}
}

// engineFor returns the cached engine for the run, creating and initializing
// one from the start_workflow job when the run is new to this worker.
func (w *Worker) engineFor(act *api.Activation) (*internal.Engine, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if eng, ok := w.engines[act.RunID]; ok {
		return eng, nil
	}

	var start *api.StartWorkflowJob
	for _, job := range act.Jobs {
		if job.StartWorkflow != nil {
			start = job.StartWorkflow
			break
		}
	}
	if start == nil {
		return nil, fmt.Errorf("run %s is not cached and the activation carries no start_workflow job", act.RunID)
	}

	def, ok := w.workflows[start.WorkflowType]
	if !ok {
		return nil, fmt.Errorf("workflow %q not registered on this worker", start.WorkflowType)
	}

	eng := internal.NewEngine(
		internal.WithLogger(w.logger),
		internal.WithSerde(w.serder),
	)
	info := &api.WorkflowInfo{
		RunID:        act.RunID,
		WorkflowType: start.WorkflowType,
		TaskQueue:    w.taskQueue,
		Namespace:    w.namespace,
	}
	if err := eng.InitWorkflow(def, info, start.RandomnessSeed); err != nil {
		return nil, err
	}
	for _, d := range w.deps {
		ref := d.ref
		if d.mode != ApplyModeSync {
			// Async refs execute worker-side; the engine only needs routing.
			ref = nil
		}
		if err := eng.Inject(d.ifaceName, d.fnName, ref, d.mode); err != nil {
			eng.Close()
			return nil, err
		}
	}

	w.engines[act.RunID] = eng
	w.metrics.engines.Set(float64(len(w.engines)))
	return eng, nil
}

func (w *Worker) evictEngine(runID api.RunID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if eng, ok := w.engines[runID]; ok {
		eng.Close()
		delete(w.engines, runID)
		w.metrics.engines.Set(float64(len(w.engines)))
	}
}

// executeExternalCalls plays host for the sandbox: each awaited call runs
// its registered implementation and produces a result keyed by sequence
// number; fire-and-forget calls run with their results discarded.
func (w *Worker) executeExternalCalls(ctx context.Context, calls []*api.ExternalCall) ([]*api.ExternalResult, error) {
	converter := api.NewConverter(w.serder, api.EncodingMsgpack)
	var results []*api.ExternalResult
	for _, call := range calls {
		w.metrics.externalCalls.Inc()
		impl, ok := w.lookupDep(call.IfaceName, call.FnName)
		if !ok {
			if call.Seq == nil {
				w.logger.Warn("dropping external call with no implementation",
					"iface", call.IfaceName, "fn", call.FnName)
				continue
			}
			results = append(results, &api.ExternalResult{
				Seq:   *call.Seq,
				Error: fmt.Sprintf("no implementation for %s.%s", call.IfaceName, call.FnName),
			})
			continue
		}

		value, err := invokeDependency(ctx, converter, impl.ref, call.Args)
		if call.Seq == nil {
			if err != nil {
				w.logger.Warn("ignored external call failed",
					"iface", call.IfaceName, "fn", call.FnName, "error", err)
			}
			continue
		}

		result := &api.ExternalResult{Seq: *call.Seq}
		if err != nil {
			result.Error = err.Error()
		} else {
			p, encErr := converter.ToPayload(value)
			if encErr != nil {
				result.Error = encErr.Error()
			} else {
				result.Result = p
			}
		}
		results = append(results, result)
	}
	return results, nil
}

func (w *Worker) lookupDep(ifaceName, fnName string) (*injection, bool) {
	for i := range w.deps {
		if w.deps[i].ifaceName == ifaceName && w.deps[i].fnName == fnName {
			return &w.deps[i], true
		}
	}
	return nil, false
}

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// invokeDependency calls a host dependency implementation with arguments
// decoded from wire payloads. A leading context.Context parameter is
// supplied automatically; a trailing error return is split off.
func invokeDependency(ctx context.Context, converter api.DataConverter, fn any, args []*api.Payload) (any, error) {
	fnv := reflect.ValueOf(fn)
	fnt := fnv.Type()

	takesCtx := fnt.NumIn() > 0 && fnt.In(0) == ctxType
	offset := 0
	if takesCtx {
		offset = 1
	}
	if fnt.NumIn()-offset != len(args) {
		return nil, fmt.Errorf("dependency expects %d arguments, got %d", fnt.NumIn()-offset, len(args))
	}

	callArgs := make([]reflect.Value, fnt.NumIn())
	if takesCtx {
		callArgs[0] = reflect.ValueOf(ctx)
	}
	for i, p := range args {
		target := reflect.New(fnt.In(i + offset))
		if err := converter.FromPayload(p, target.Interface()); err != nil {
			return nil, fmt.Errorf("failed to decode dependency argument %d: %w", i, err)
		}
		callArgs[i+offset] = target.Elem()
	}

	out := fnv.Call(callArgs)

	var err error
	if n := len(out); n > 0 {
		last := out[n-1]
		if last.Type().Implements(errType) {
			if !last.IsNil() {
				err = last.Interface().(error)
			}
			out = out[:n-1]
		}
	}
	if len(out) > 0 {
		return out[0].Interface(), err
	}
	return nil, err
}
