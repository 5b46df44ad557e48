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

// Package worker runs workflow code against activations delivered over NATS
// JetStream.
//
// A worker holds one deterministic engine per workflow run. Activations
// arrive on the run's subject, are dispatched job by job into the engine,
// and the resulting command batch is published back as an encoded
// completion. External-dependency calls surfaced by workflow code are
// executed worker-side between dispatch and conclusion.
//
//	conn, err := worker.Connect(cfg, logger)
//	...
//	w, err := worker.New(conn, &worker.Options{TaskQueue: "orders"})
//	...
//	w.RegisterWorkflow(&workflow.Definition{Name: "order.Process", Main: ProcessOrder})
//	w.Inject("metrics", "count", countImpl, worker.ApplyModeAsyncIgnored)
//	err = w.Run(ctx)
package worker
