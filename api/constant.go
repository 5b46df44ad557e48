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

// JetStream stream and subject names used by the worker transport. Subjects
// carry the task queue as a token so a worker can filter to its own queues.
const (
	// ActivationsStream holds encoded activations awaiting a worker.
	ActivationsStream = "WF_ACTIVATIONS"

	// CompletionsStream holds encoded activation completions for the service.
	CompletionsStream = "WF_COMPLETIONS"

	// ActivationSubjectPrefix prefixes activation subjects:
	// activations.<task-queue>.<run-id>
	ActivationSubjectPrefix = "activations"

	// CompletionSubjectPrefix prefixes completion subjects:
	// completions.<task-queue>.<run-id>
	CompletionSubjectPrefix = "completions"

	// ActivationsFilterSubjectPattern matches every activation subject.
	ActivationsFilterSubjectPattern = "activations.>"
)

// ActivationSubject builds the subject for a run's activations.
func ActivationSubject(taskQueue string, runID RunID) string {
	return ActivationSubjectPrefix + "." + taskQueue + "." + runID.String()
}

// CompletionSubject builds the subject for a run's completions.
func CompletionSubject(taskQueue string, runID RunID) string {
	return CompletionSubjectPrefix + "." + taskQueue + "." + runID.String()
}
