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

import (
	"time"

	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 📄 Step is one target file plus the ordered rules applied to it
type Step struct {
	// Name is shown in progress output and recorded in results
	Name string

	// Target is the file path relative to the root. It may be a doublestar
	// pattern that resolves to exactly one file.
	Target string

	// Rules run in order, each against the output of the previous one
	Rules []text.EditRule
}

// Validate checks that the step is usable with the given editor
func (s Step) Validate(editor text.Editor) error {
	if s.Name == "" {
		return errors.Errorf("step name is required")
	}
	if s.Target == "" {
		return errors.Errorf("step %s: target is required", s.Name)
	}
	if len(s.Rules) == 0 {
		return errors.Errorf("step %s: at least one rule is required", s.Name)
	}
	if err := editor.ValidateRules(s.Rules); err != nil {
		return errors.Errorf("step %s: %w", s.Name, err)
	}
	return nil
}

// 📊 StepState tracks where a step is in its lifecycle
type StepState int

const (
	StatePending  StepState = iota // Not started, or evaluated without writing
	StateBackedUp                  // Backup written, target not yet overwritten
	StatePatched                   // Target rewritten, terminal success
	StateFailed                    // Terminal failure, halts the run
)

// String returns a string representation of StepState
func (s StepState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateBackedUp:
		return "backed_up"
	case StatePatched:
		return "patched"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s StepState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StepResult describes what happened to one step
type StepResult struct {
	Name           string            `json:"name"`
	Target         string            `json:"target"`
	BackupPath     string            `json:"backup_path,omitempty"`
	State          StepState         `json:"state"`
	Rules          []text.RuleResult `json:"rules"`
	Changed        bool              `json:"changed"`
	ChecksumBefore string            `json:"checksum_before,omitempty"`
	ChecksumAfter  string            `json:"checksum_after,omitempty"`
	Diff           string            `json:"-"`
	Err            error             `json:"-"`
}

// Count returns how many rules ended with the given outcome
func (r *StepResult) Count(o text.Outcome) int {
	n := 0
	for _, rr := range r.Rules {
		if rr.Outcome == o {
			n++
		}
	}
	return n
}

// RunResult collects every step result of one run, in step order
type RunResult struct {
	Steps    []*StepResult
	Started  time.Time
	Finished time.Time
	DryRun   bool
}

// Failed returns the first failed step, or nil
func (r *RunResult) Failed() *StepResult {
	for _, s := range r.Steps {
		if s != nil && s.State == StateFailed {
			return s
		}
	}
	return nil
}

// Completed returns the number of steps that reached StatePatched
func (r *RunResult) Completed() int {
	n := 0
	for _, s := range r.Steps {
		if s != nil && s.State == StatePatched {
			n++
		}
	}
	return n
}
