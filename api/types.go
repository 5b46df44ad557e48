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

package api

// RunID identifies a single workflow run. One sandboxed engine exists per run.
type RunID string

func (r RunID) String() string { return string(r) }

// Payload is an encoded value crossing the sandbox boundary. Encoding names
// the serde that produced Data so a reader can refuse payloads it cannot
// decode instead of silently misinterpreting them.
type Payload struct {
	Encoding string `json:"encoding" msgpack:"encoding"`
	Data     []byte `json:"data"     msgpack:"data"`
}

// Failure is the wire form of an error raised by user code.
type Failure struct {
	Message string `json:"message" msgpack:"message"`
}

// WorkflowInfo describes the run the engine is driving. IsReplaying is
// refreshed on every activation.
type WorkflowInfo struct {
	WorkflowID   string `json:"workflow_id"   msgpack:"workflow_id"`
	RunID        RunID  `json:"run_id"        msgpack:"run_id"`
	WorkflowType string `json:"workflow_type" msgpack:"workflow_type"`
	TaskQueue    string `json:"task_queue"    msgpack:"task_queue"`
	Namespace    string `json:"namespace"     msgpack:"namespace"`
	IsReplaying  bool   `json:"is_replaying"  msgpack:"is_replaying"`
}

// RetryPolicy is the wire form of an activity retry policy.
type RetryPolicy struct {
	InitialIntervalMs      int64    `json:"initial_interval_ms"       msgpack:"initial_interval_ms"`
	BackoffCoefficient     float64  `json:"backoff_coefficient"       msgpack:"backoff_coefficient"`
	MaximumIntervalMs      int64    `json:"maximum_interval_ms"       msgpack:"maximum_interval_ms"`
	MaximumAttempts        int32    `json:"maximum_attempts"          msgpack:"maximum_attempts"`
	NonRetryableErrorTypes []string `json:"non_retryable_error_types" msgpack:"non_retryable_error_types"`
}

// ExternalCall is one pending invocation of a host-exposed dependency
// function. Seq is nil for fire-and-forget calls whose results are discarded.
type ExternalCall struct {
	IfaceName string     `json:"iface_name"    msgpack:"iface_name"`
	FnName    string     `json:"fn_name"       msgpack:"fn_name"`
	Args      []*Payload `json:"args"          msgpack:"args"`
	Seq       *uint64    `json:"seq,omitempty" msgpack:"seq,omitempty"`
}

// ExternalResult carries the host's answer to an awaited external call.
type ExternalResult struct {
	Seq    uint64   `json:"seq"              msgpack:"seq"`
	Result *Payload `json:"result,omitempty" msgpack:"result,omitempty"`
	Error  string   `json:"error,omitempty"  msgpack:"error,omitempty"`
}
