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
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidEncoding is returned when content is not valid UTF-8
var ErrInvalidEncoding = errors.Base("content is not valid UTF-8")

// LiteralEditor implements Editor with exact, first-occurrence substring replacement
type LiteralEditor struct{}

// NewLiteralEditor creates a new LiteralEditor
func NewLiteralEditor() *LiteralEditor {
	return &LiteralEditor{}
}

// ApplyRules implements Editor.ApplyRules
func (e *LiteralEditor) ApplyRules(ctx context.Context, content io.Reader, rules []EditRule) (*EditResult, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}
	if !utf8.Valid(originalContent) {
		return nil, errors.WithStack(ErrInvalidEncoding)
	}

	result := &EditResult{
		OriginalContent: originalContent,
		Rules:           make([]RuleResult, 0, len(rules)),
	}

	current := string(originalContent)
	crlf := strings.Contains(current, "\r\n")
	for i, rule := range rules {
		name := RuleName(rule, i)
		if crlf {
			rule = rule.withCRLF()
		}

		var outcome Outcome
		current, outcome = applyRule(current, rule)
		result.Rules = append(result.Rules, RuleResult{Rule: name, Outcome: outcome})

		zerolog.Ctx(ctx).Debug().
			Str("rule", name).
			Str("outcome", outcome.String()).
			Msg("edit rule evaluated")
	}

	result.ModifiedContent = []byte(current)
	result.WasModified = current != string(originalContent)
	return result, nil
}

// applyRule runs one rule against content. The guard is checked first so a
// rule whose replacement contains its own marker never applies twice.
func applyRule(content string, rule EditRule) (string, Outcome) {
	if rule.Guard != "" && strings.Contains(content, rule.Guard) {
		return content, OutcomeSkipped
	}
	if rule.Marker == "" || !strings.Contains(content, rule.Marker) {
		return content, OutcomeMissed
	}
	return strings.Replace(content, rule.Marker, rule.Replacement, 1), OutcomeApplied
}

// withCRLF rewrites the rule's line breaks as CRLF so multi-line blocks match
// files checked out with Windows line endings
func (r EditRule) withCRLF() EditRule {
	r.Marker = toCRLF(r.Marker)
	r.Replacement = toCRLF(r.Replacement)
	r.Guard = toCRLF(r.Guard)
	return r
}

func toCRLF(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", "\r\n")
}

// ValidateRules implements Editor.ValidateRules
func (e *LiteralEditor) ValidateRules(rules []EditRule) error {
	seen := make(map[string]int, len(rules))
	for i, rule := range rules {
		if rule.Marker == "" {
			return errors.Errorf("rule %d: marker is required", i)
		}
		if rule.Marker == rule.Replacement {
			return errors.Errorf("rule %d: replacement is identical to marker", i)
		}
		if rule.Name == "" {
			continue
		}
		if prev, ok := seen[rule.Name]; ok {
			return errors.Errorf("rule %d: name %q already used by rule %d", i, rule.Name, prev)
		}
		seen[rule.Name] = i
	}
	return nil
}

// RuleName returns the rule's name, or a positional name when it has none
func RuleName(rule EditRule, index int) string {
	if rule.Name != "" {
		return rule.Name
	}
	return fmt.Sprintf("rule-%d", index+1)
}
