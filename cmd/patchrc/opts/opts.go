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

package opts

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/operation"
	"github.com/walteh/patchrc/pkg/plan"
	"github.com/walteh/patchrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Root     string
	Suffix   string
	Plan     string
	Parallel bool
	Strict   bool
	DryRun   bool
	Lock     string
	Journal  string
	Debug    bool
}

// 📋 Settings is the run configuration after the plan file and flags are merged
type Settings struct {
	Root     string
	Suffix   string
	Parallel bool
	Strict   bool
	Source   string
	Steps    []operation.Step
}

// 🎯 Resolve picks the steps to run. Without --plan the built-in CompanionAI
// plan is used. Values set in a plan file apply unless the matching flag was
// given explicitly.
func (o *RootOpts) Resolve(ctx context.Context, cmd *cobra.Command) (*Settings, error) {
	s := &Settings{
		Root:     o.Root,
		Suffix:   o.Suffix,
		Parallel: o.Parallel,
		Strict:   o.Strict,
		Source:   "built-in CompanionAI plan",
		Steps:    plan.CompanionAI(),
	}
	if o.Plan == "" {
		return s, nil
	}

	cfg, err := config.Load(ctx, o.Plan)
	if err != nil {
		return nil, errors.Errorf("loading plan %s: %w", o.Plan, err)
	}
	s.Source = cfg.Location()
	s.Steps = cfg.ToSteps()

	flags := cmd.Flags()
	if cfg.Root != "" && !flags.Changed("root") {
		s.Root = cfg.Root
	}
	if cfg.BackupSuffix != "" && !flags.Changed("suffix") {
		s.Suffix = cfg.BackupSuffix
	}
	if !flags.Changed("strict") {
		s.Strict = cfg.Strict
	}
	if !flags.Changed("parallel") {
		s.Parallel = cfg.Parallel
	}

	return s, nil
}

// Orchestrator builds an orchestrator for the settings
func (s *Settings) Orchestrator(dryRun bool, reporter operation.Reporter) (*operation.Orchestrator, error) {
	o, err := operation.New(operation.Options{
		Root:         s.Root,
		BackupSuffix: s.Suffix,
		Parallel:     s.Parallel,
		Strict:       s.Strict,
		DryRun:       dryRun,
		Reporter:     reporter,
	})
	if err != nil {
		return nil, errors.Errorf("creating orchestrator: %w", err)
	}
	return o, nil
}

// LockPath returns --lock, or the default lock file under root
func (o *RootOpts) LockPath(root string) string {
	if o.Lock != "" {
		return o.Lock
	}
	return filepath.Join(root, status.DefaultFileName)
}
