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

// Command is a oneof over the outbound command kinds. Exactly one field is
// set. Commands are appended in the order user code produced them and that
// order is stable across replays.
type Command struct {
	StartTimer                *StartTimerCommand                `json:"start_timer,omitempty"                 msgpack:"start_timer,omitempty"`
	CancelTimer               *CancelTimerCommand               `json:"cancel_timer,omitempty"                msgpack:"cancel_timer,omitempty"`
	ScheduleActivity          *ScheduleActivityCommand          `json:"schedule_activity,omitempty"           msgpack:"schedule_activity,omitempty"`
	RequestCancelActivity     *RequestCancelActivityCommand     `json:"request_cancel_activity,omitempty"     msgpack:"request_cancel_activity,omitempty"`
	RespondToQuery            *QueryResult                      `json:"respond_to_query,omitempty"            msgpack:"respond_to_query,omitempty"`
	CompleteWorkflowExecution *CompleteWorkflowExecutionCommand `json:"complete_workflow_execution,omitempty" msgpack:"complete_workflow_execution,omitempty"`
	FailWorkflowExecution     *FailWorkflowExecutionCommand     `json:"fail_workflow_execution,omitempty"     msgpack:"fail_workflow_execution,omitempty"`
}

// Variant names the populated oneof field, or "" when the command is empty.
func (c *Command) Variant() string {
	switch {
	case c == nil:
		return ""
	case c.StartTimer != nil:
		return "start_timer"
	case c.CancelTimer != nil:
		return "cancel_timer"
	case c.ScheduleActivity != nil:
		return "schedule_activity"
	case c.RequestCancelActivity != nil:
		return "request_cancel_activity"
	case c.RespondToQuery != nil:
		return "respond_to_query"
	case c.CompleteWorkflowExecution != nil:
		return "complete_workflow_execution"
	case c.FailWorkflowExecution != nil:
		return "fail_workflow_execution"
	default:
		return ""
	}
}

type StartTimerCommand struct {
	TimerID              string `json:"timer_id"                msgpack:"timer_id"`
	StartToFireTimeoutMs int64  `json:"start_to_fire_timeout_ms" msgpack:"start_to_fire_timeout_ms"`
}

type CancelTimerCommand struct {
	TimerID string `json:"timer_id" msgpack:"timer_id"`
}

type ScheduleActivityCommand struct {
	ActivityID               string       `json:"activity_id"                          msgpack:"activity_id"`
	ActivityType             string       `json:"activity_type"                        msgpack:"activity_type"`
	TaskQueue                string       `json:"task_queue,omitempty"                 msgpack:"task_queue,omitempty"`
	Arguments                []*Payload   `json:"arguments"                            msgpack:"arguments"`
	ScheduleToCloseTimeoutMs int64        `json:"schedule_to_close_timeout_ms,omitempty" msgpack:"schedule_to_close_timeout_ms,omitempty"`
	StartToCloseTimeoutMs    int64        `json:"start_to_close_timeout_ms,omitempty"  msgpack:"start_to_close_timeout_ms,omitempty"`
	RetryPolicy              *RetryPolicy `json:"retry_policy,omitempty"               msgpack:"retry_policy,omitempty"`
}

type RequestCancelActivityCommand struct {
	ActivityID string `json:"activity_id" msgpack:"activity_id"`
}

// QueryResult answers a query_workflow job. Exactly one of Succeeded or
// Failed is set. Query failures never terminate the workflow.
type QueryResult struct {
	QueryID   string        `json:"query_id"            msgpack:"query_id"`
	Succeeded *QuerySuccess `json:"succeeded,omitempty" msgpack:"succeeded,omitempty"`
	Failed    *Failure      `json:"failed,omitempty"    msgpack:"failed,omitempty"`
}

type QuerySuccess struct {
	Response *Payload `json:"response,omitempty" msgpack:"response,omitempty"`
}

type CompleteWorkflowExecutionCommand struct {
	Result *Payload `json:"result,omitempty" msgpack:"result,omitempty"`
}

type FailWorkflowExecutionCommand struct {
	Failure *Failure `json:"failure" msgpack:"failure"`
}

// ActivationCompletion is the engine's reply to a fully processed activation.
type ActivationCompletion struct {
	RunID      RunID       `json:"run_id"     msgpack:"run_id"`
	Successful *Success    `json:"successful" msgpack:"successful"`
}

type Success struct {
	Commands []*Command `json:"commands" msgpack:"commands"`
}
