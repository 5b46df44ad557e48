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

// Package workflow is the authoring API for deterministic workflow code.
//
// Workflow functions receive a workflow.Context and must only interact with
// the outside world through this package: timers instead of time.Sleep, the
// deterministic clock instead of time.Now, ExecuteActivity for real work and
// ExternalCall for host side channels. Under those rules a workflow is a
// pure function of its activation history and the engine can replay it from
// scratch on any worker.
//
//	func Transfer(ctx workflow.Context, from, to string, amount int) (string, error) {
//		if err := workflow.Sleep(ctx, 24*time.Hour); err != nil {
//			return "", err
//		}
//		fut, err := workflow.ExecuteActivity(ctx, "bank.Withdraw", from, amount)
//		if err != nil {
//			return "", err
//		}
//		var receipt string
//		if err := fut.Get(ctx, &receipt); err != nil {
//			return "", err
//		}
//		return receipt, nil
//	}
package workflow
