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
	"errors"
	"strings"
	"testing"

	"github.com/denjalonso/sdk-core/api"
	"github.com/denjalonso/sdk-core/sdk/workflow"
)

func payload(t *testing.T, v any) *api.Payload {
	t.Helper()
	p, err := api.DefaultConverter().ToPayload(v)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestInvokeDependency(t *testing.T) {
	conv := api.DefaultConverter()

	t.Run("with context and result", func(t *testing.T) {
		fn := func(ctx context.Context, key string) (string, error) {
			return "value-of-" + key, nil
		}
		out, err := invokeDependency(context.Background(), conv, fn, []*api.Payload{payload(t, "k")})
		if err != nil {
			t.Fatal(err)
		}
		if out != "value-of-k" {
			t.Errorf("out = %v", out)
		}
	})

	t.Run("error return", func(t *testing.T) {
		fn := func(string) error { return errors.New("nope") }
		_, err := invokeDependency(context.Background(), conv, fn, []*api.Payload{payload(t, "x")})
		if err == nil || err.Error() != "nope" {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("argument count mismatch", func(t *testing.T) {
		fn := func(a, b string) error { return nil }
		_, err := invokeDependency(context.Background(), conv, fn, []*api.Payload{payload(t, "only")})
		if err == nil || !strings.Contains(err.Error(), "arguments") {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestWorkerRegistration(t *testing.T) {
	w := &Worker{workflows: make(map[string]*workflow.Definition)}

	if err := w.RegisterWorkflow(nil); err == nil {
		t.Error("nil definition must be rejected")
	}
	if err := w.RegisterWorkflow(&workflow.Definition{Name: ""}); err == nil {
		t.Error("unnamed definition must be rejected")
	}

	def := &workflow.Definition{
		Name: "test.Workflow",
		Main: func(ctx workflow.Context) error { return nil },
	}
	if err := w.RegisterWorkflow(def); err != nil {
		t.Fatalf("RegisterWorkflow failed: %v", err)
	}
	if err := w.RegisterWorkflow(def); err == nil {
		t.Error("duplicate registration must be rejected")
	}
}

func TestWorkerInjectValidation(t *testing.T) {
	w := &Worker{workflows: make(map[string]*workflow.Definition)}

	if err := w.Inject("kv", "get", nil, ApplyModeAsync); err == nil {
		t.Error("async dependency without an implementation must be rejected")
	}
	if err := w.Inject("kv", "get", func(string) (string, error) { return "", nil }, ApplyModeAsync); err != nil {
		t.Errorf("Inject failed: %v", err)
	}
	if err := w.Inject("math", "add", func(a, b int) int { return a + b }, ApplyModeSync); err != nil {
		t.Errorf("Inject failed: %v", err)
	}
}
