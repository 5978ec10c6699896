// Copyright 2025 walteh LLC
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

package operation

import "context"

// 📢 Reporter receives progress signals while steps run. Implementations must
// be safe for concurrent use when the orchestrator runs in parallel mode.
type Reporter interface {
	StepStarted(ctx context.Context, index, total int, step Step)
	StepBackedUp(ctx context.Context, step Step, backupPath string)
	StepCompleted(ctx context.Context, result *StepResult)
	StepFailed(ctx context.Context, result *StepResult, err error)
}

// NopReporter discards every signal
type NopReporter struct{}

func (NopReporter) StepStarted(context.Context, int, int, Step) {}
func (NopReporter) StepBackedUp(context.Context, Step, string) {}
func (NopReporter) StepCompleted(context.Context, *StepResult) {}
func (NopReporter) StepFailed(context.Context, *StepResult, error) {}
