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

package text

import (
	"context"
	"io"
	"strings"
)

// 📊 Outcome records what a single EditRule did to the content
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeApplied         // Marker found, first occurrence replaced
	OutcomeSkipped         // Guard already present, rule was applied before
	OutcomeMissed          // Neither guard nor marker present
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeMissed:
		return "missed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so outcomes read well in lock files
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "applied":
		*o = OutcomeApplied
	case "skipped":
		*o = OutcomeSkipped
	case "missed":
		*o = OutcomeMissed
	default:
		*o = OutcomeUnknown
	}
	return nil
}

// EditRule defines a single literal substitution
type EditRule struct {
	// Name identifies the rule in reports
	Name string

	// Marker is the exact text whose first occurrence is replaced
	Marker string

	// Replacement is the text written in place of Marker
	Replacement string

	// Guard is a substring whose presence means the rule was already applied.
	// A rule without a guard is only safe to re-run if Replacement does not
	// reintroduce Marker.
	Guard string
}

// Idempotent reports whether applying the rule a second time is a no-op
func (r EditRule) Idempotent() bool {
	return r.Guard != "" || !strings.Contains(r.Replacement, r.Marker)
}

// RuleResult is the outcome of one rule in an edit pass
type RuleResult struct {
	Rule    string  `json:"rule"`
	Outcome Outcome `json:"outcome"`
}

// EditResult contains the results of applying an ordered rule list
type EditResult struct {
	// WasModified indicates the content differs from the original
	WasModified bool

	// Rules holds one result per input rule, in declared order
	Rules []RuleResult

	// OriginalContent is the content before any rule ran
	OriginalContent []byte

	// ModifiedContent is the content after every rule ran
	ModifiedContent []byte
}

// Count returns how many rules ended with the given outcome
func (r *EditResult) Count(o Outcome) int {
	n := 0
	for _, rr := range r.Rules {
		if rr.Outcome == o {
			n++
		}
	}
	return n
}

// Missed returns the names of rules that matched nothing
func (r *EditResult) Missed() []string {
	var names []string
	for _, rr := range r.Rules {
		if rr.Outcome == OutcomeMissed {
			names = append(names, rr.Rule)
		}
	}
	return names
}

// Editor defines the interface for rule-driven text edits
type Editor interface {
	// ApplyRules applies rules in order, each against the output of the previous one
	ApplyRules(ctx context.Context, content io.Reader, rules []EditRule) (*EditResult, error)

	// ValidateRules checks that all rules are usable
	ValidateRules(rules []EditRule) error
}
