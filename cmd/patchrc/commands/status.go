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

package commands

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/operation"
	"github.com/walteh/patchrc/pkg/status"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// Rule states reported by the status command
const (
	RuleApplied = "applied"
	RulePending = "pending"
	RuleDrifted = "drifted"
)

// NewStatusCmd creates a new status command
func NewStatusCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which edit rules are applied, pending, or drifted",
		Long: `Status evaluates every rule of the plan against the current files
without writing anything. Each rule is reported as:
  applied  the rule's guard is present
  pending  the marker is present, the rule would apply
  drifted  neither the guard nor the marker is present`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			settings, err := opts.Resolve(ctx, cmd)
			if err != nil {
				return err
			}

			orch, err := settings.Orchestrator(true, operation.NopReporter{})
			if err != nil {
				return err
			}

			logger.Header("status of " + orch.Root())

			lock, err := status.New(opts.LockPath(orch.Root())).Load(ctx)
			switch {
			case errors.Is(err, status.ErrNoLock):
				logger.Info("no recorded run")
			case err != nil:
				logger.Warningf("reading lock file: %v", err)
			default:
				result := "succeeded"
				if !lock.Succeeded {
					result = "failed"
				}
				logger.Infof("last run %s %s at %s", lock.RunID, result, lock.Finished.Local().Format(time.DateTime))
			}

			var rows [][]string
			counts := map[string]int{}
			failed := 0
			for _, result := range orch.Inspect(ctx, settings.Steps) {
				if result.Err != nil {
					failed++
					rows = append(rows, []string{result.Name, "-", "error", result.Err.Error()})
					continue
				}
				for _, rr := range result.Rules {
					state := RuleState(rr.Outcome)
					counts[state]++
					rows = append(rows, []string{result.Name, rr.Rule, state, result.Target})
				}
			}
			logger.Table([]string{"Step", "Rule", "Status", "Target"}, rows)

			if failed > 0 {
				return errors.Errorf("%d steps could not be inspected", failed)
			}
			if counts[RuleDrifted] > 0 {
				logger.Warningf("%d rules drifted, neither their marker nor their guard is present", counts[RuleDrifted])
			}
			if counts[RulePending] > 0 {
				logger.Infof("%d rules pending, run `patchrc apply` to patch them", counts[RulePending])
			}
			if counts[RulePending] == 0 && counts[RuleDrifted] == 0 {
				logger.Successf("all %d rules applied", counts[RuleApplied])
			}
			return nil
		},
	}

	return cmd
}

// RuleState maps an evaluation outcome onto the status vocabulary. A rule
// that would be skipped is already applied; one that would apply is pending.
func RuleState(o text.Outcome) string {
	switch o {
	case text.OutcomeSkipped:
		return RuleApplied
	case text.OutcomeApplied:
		return RulePending
	default:
		return RuleDrifted
	}
}
