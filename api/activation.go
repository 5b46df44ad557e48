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

// Activation is one ordered batch of state-transition jobs for a workflow
// run. The engine processes jobs strictly in order; the activation timestamp
// becomes the deterministic "now" for every job in the batch.
type Activation struct {
	RunID       RunID            `json:"run_id"       msgpack:"run_id"`
	TimestampMs int64            `json:"timestamp_ms" msgpack:"timestamp_ms"`
	IsReplaying bool             `json:"is_replaying" msgpack:"is_replaying"`
	Jobs        []*ActivationJob `json:"jobs"         msgpack:"jobs"`
}

// ActivationJob is a oneof over the job variants. Exactly one field is set.
type ActivationJob struct {
	StartWorkflow    *StartWorkflowJob    `json:"start_workflow,omitempty"     msgpack:"start_workflow,omitempty"`
	CancelWorkflow   *CancelWorkflowJob   `json:"cancel_workflow,omitempty"    msgpack:"cancel_workflow,omitempty"`
	FireTimer        *FireTimerJob        `json:"fire_timer,omitempty"         msgpack:"fire_timer,omitempty"`
	ResolveActivity  *ResolveActivityJob  `json:"resolve_activity,omitempty"   msgpack:"resolve_activity,omitempty"`
	QueryWorkflow    *QueryWorkflowJob    `json:"query_workflow,omitempty"     msgpack:"query_workflow,omitempty"`
	SignalWorkflow   *SignalWorkflowJob   `json:"signal_workflow,omitempty"    msgpack:"signal_workflow,omitempty"`
	UpdateRandomSeed *UpdateRandomSeedJob `json:"update_random_seed,omitempty" msgpack:"update_random_seed,omitempty"`
	RemoveFromCache  *RemoveFromCacheJob  `json:"remove_from_cache,omitempty"  msgpack:"remove_from_cache,omitempty"`
}

// Variant names the populated oneof field, or "" when the job is empty.
func (j *ActivationJob) Variant() string {
	switch {
	case j == nil:
		return ""
	case j.StartWorkflow != nil:
		return "start_workflow"
	case j.CancelWorkflow != nil:
		return "cancel_workflow"
	case j.FireTimer != nil:
		return "fire_timer"
	case j.ResolveActivity != nil:
		return "resolve_activity"
	case j.QueryWorkflow != nil:
		return "query_workflow"
	case j.SignalWorkflow != nil:
		return "signal_workflow"
	case j.UpdateRandomSeed != nil:
		return "update_random_seed"
	case j.RemoveFromCache != nil:
		return "remove_from_cache"
	default:
		return ""
	}
}

type StartWorkflowJob struct {
	WorkflowType   string              `json:"workflow_type"             msgpack:"workflow_type"`
	Headers        map[string]*Payload `json:"headers,omitempty"         msgpack:"headers,omitempty"`
	Arguments      []*Payload          `json:"arguments"                 msgpack:"arguments"`
	RandomnessSeed []byte              `json:"randomness_seed,omitempty" msgpack:"randomness_seed,omitempty"`
}

type CancelWorkflowJob struct{}

// FireTimerJob resolves the timer identified by TimerID. Timer ids are
// engine sequence numbers serialized as base-10 strings.
type FireTimerJob struct {
	TimerID string `json:"timer_id" msgpack:"timer_id"`
}

// ResolveActivityJob reports the terminal state of a scheduled activity.
// Exactly one of the Result fields is set.
type ResolveActivityJob struct {
	ActivityID string          `json:"activity_id" msgpack:"activity_id"`
	Result     *ActivityResult `json:"result"      msgpack:"result"`
}

type ActivityResult struct {
	Completed *ActivityCompleted `json:"completed,omitempty" msgpack:"completed,omitempty"`
	Failed    *ActivityFailed    `json:"failed,omitempty"    msgpack:"failed,omitempty"`
	Canceled  *ActivityCanceled  `json:"canceled,omitempty"  msgpack:"canceled,omitempty"`
}

type ActivityCompleted struct {
	Result *Payload `json:"result,omitempty" msgpack:"result,omitempty"`
}

type ActivityFailed struct {
	Failure *Failure `json:"failure" msgpack:"failure"`
}

type ActivityCanceled struct{}

type QueryWorkflowJob struct {
	QueryID   string     `json:"query_id"   msgpack:"query_id"`
	QueryType string     `json:"query_type" msgpack:"query_type"`
	Arguments []*Payload `json:"arguments"  msgpack:"arguments"`
}

type SignalWorkflowJob struct {
	SignalName string     `json:"signal_name" msgpack:"signal_name"`
	Input      []*Payload `json:"input"       msgpack:"input"`
}

type UpdateRandomSeedJob struct {
	RandomnessSeed []byte `json:"randomness_seed" msgpack:"randomness_seed"`
}

// RemoveFromCacheJob is a worker-level instruction. It must never reach the
// in-sandbox engine; the activator treats it as an illegal state.
type RemoveFromCacheJob struct {
	Message string `json:"message,omitempty" msgpack:"message,omitempty"`
}
