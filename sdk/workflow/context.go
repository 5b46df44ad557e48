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
	"log/slog"
	"time"

	"github.com/denjalonso/sdk-core/api"
	"github.com/denjalonso/sdk-core/sdk/internal"
)

// Context is the deterministic execution context handed to workflow code.
type Context = internal.Context

// Future is a handle for a value that settles later.
type Future = internal.Future

// Definition describes a workflow program: main function plus named query
// and signal handlers.
type Definition = internal.Definition

// ActivityOptions configure activity scheduling.
type ActivityOptions = internal.ActivityOptions

// RetryPolicy controls service-side activity retries.
type RetryPolicy = internal.RetryPolicy

// WithActivityOptions derives a context whose activities use opts.
func WithActivityOptions(ctx Context, opts ActivityOptions) Context {
	return internal.WithActivityOptions(ctx, opts)
}

// GetInfo returns the run metadata, including the replay flag.
func GetInfo(ctx Context) (*api.WorkflowInfo, error) {
	eng, err := internal.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return eng.Info(), nil
}

// IsReplaying reports whether the current activation replays history.
// Returns false on a malformed context; code deciding whether to skip side
// channels should treat that as "do nothing".
func IsReplaying(ctx Context) bool {
	eng, err := internal.FromContext(ctx)
	if err != nil {
		return false
	}
	info := eng.Info()
	return info != nil && info.IsReplaying
}

// Now is the deterministic clock: the timestamp of the activation being
// processed. All workflow time arithmetic must start here.
func Now(ctx Context) (time.Time, error) {
	eng, err := internal.FromContext(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return eng.Now()
}

// Random draws from the run's seeded generator; the sequence is identical on
// every replay.
func Random(ctx Context) (float64, error) {
	eng, err := internal.FromContext(ctx)
	if err != nil {
		return 0, err
	}
	return eng.Random(), nil
}

// GetLogger returns a logger scoped to the run that suppresses output while
// replaying, so log lines appear once per run rather than once per replay.
func GetLogger(ctx Context) (*slog.Logger, error) {
	eng, err := internal.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return eng.WorkflowLogger(), nil
}

// SetQueryHandler registers a query handler from inside workflow code.
func SetQueryHandler(ctx Context, name string, fn any) error {
	return internal.SetQueryHandler(ctx, name, fn)
}

// SetSignalHandler registers a signal handler from inside workflow code.
func SetSignalHandler(ctx Context, name string, fn any) error {
	return internal.SetSignalHandler(ctx, name, fn)
}
