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

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/operation"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// ErrNoParser is returned when no registered parser accepts a file name
var ErrNoParser = errors.Base("no parser found for file")

// 🔌 Parser is the interface for plan file parsers
type Parser interface {
	// 📝 Parse parses the plan from bytes. filename locates relative references.
	Parse(ctx context.Context, filename string, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 Rule is one literal edit in a plan file
type Rule struct {
	Name        string `json:"name" yaml:"name" hcl:"name,label"`
	Marker      string `json:"marker" yaml:"marker" hcl:"marker"`
	Replacement string `json:"replacement" yaml:"replacement" hcl:"replacement"`
	Guard       string `json:"guard,omitempty" yaml:"guard,omitempty" hcl:"guard,optional"`
}

// 📄 Step is one target file and its rules
type Step struct {
	Name   string `json:"name" yaml:"name" hcl:"name,label"`
	Target string `json:"target" yaml:"target" hcl:"target"`
	Rules  []Rule `json:"rules" yaml:"rules" hcl:"rule,block"`
}

// 📚 Config represents a complete patch plan
type Config struct {
	Root         string `json:"root,omitempty" yaml:"root,omitempty" hcl:"root,optional"`
	BackupSuffix string `json:"backup_suffix,omitempty" yaml:"backup_suffix,omitempty" hcl:"backup_suffix,optional"`
	Strict       bool   `json:"strict,omitempty" yaml:"strict,omitempty" hcl:"strict,optional"`
	Parallel     bool   `json:"parallel,omitempty" yaml:"parallel,omitempty" hcl:"parallel,optional"`
	Steps        []Step `json:"steps" yaml:"steps" hcl:"step,block"`

	location string
}

// 🎯 Load loads a plan from a file, picking the parser by extension
func Load(ctx context.Context, path string) (*Config, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading plan")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading plan file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("%s: %w", path, ErrNoParser)
	}

	cfg, err := p.Parse(ctx, path, data)
	if err != nil {
		return nil, errors.Errorf("parsing plan: %w", err)
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating plan: %w", err)
	}

	return cfg, nil
}

// Location returns the file the plan was loaded from
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔍 Validate checks that the plan is usable. A relative root is resolved
// against the plan file's directory.
func (cfg *Config) Validate() error {
	if len(cfg.Steps) == 0 {
		return errors.Errorf("at least one step is required")
	}

	names := make(map[string]bool, len(cfg.Steps))
	editor := text.NewLiteralEditor()
	for _, step := range cfg.ToSteps() {
		if names[step.Name] {
			return errors.Errorf("duplicate step name %q", step.Name)
		}
		names[step.Name] = true
		if err := step.Validate(editor); err != nil {
			return err
		}
	}

	if cfg.Root != "" {
		cfg.Root = filepath.Clean(cfg.Root)
		if !filepath.IsAbs(cfg.Root) && cfg.location != "" {
			cfg.Root = filepath.Join(filepath.Dir(cfg.location), cfg.Root)
		}
	}
	cfg.BackupSuffix = strings.TrimSpace(cfg.BackupSuffix)

	return nil
}

// ToSteps converts the plan into orchestrator steps
func (cfg *Config) ToSteps() []operation.Step {
	steps := make([]operation.Step, 0, len(cfg.Steps))
	for _, s := range cfg.Steps {
		rules := make([]text.EditRule, 0, len(s.Rules))
		for _, r := range s.Rules {
			rules = append(rules, text.EditRule{
				Name:        r.Name,
				Marker:      r.Marker,
				Replacement: r.Replacement,
				Guard:       r.Guard,
			})
		}
		steps = append(steps, operation.Step{
			Name:   s.Name,
			Target: s.Target,
			Rules:  rules,
		})
	}
	return steps
}
