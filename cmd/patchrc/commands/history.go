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
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/journal"
	"github.com/walteh/patchrc/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// NewHistoryCmd creates a new history command
func NewHistoryCmd(opts *opts.RootOpts) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs recorded in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			if opts.Journal == "" {
				return errors.Errorf("history needs --journal <path>")
			}

			j, err := journal.Open(ctx, opts.Journal)
			if err != nil {
				return errors.Errorf("opening journal: %w", err)
			}
			defer j.Close()

			runs, err := j.Recent(ctx, limit)
			if err != nil {
				return errors.Errorf("reading journal: %w", err)
			}

			if len(runs) == 0 {
				logger.Info("no runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				result := "ok"
				if !run.Succeeded {
					result = "failed"
				}
				rows = append(rows, []string{
					run.Started.Local().Format(time.DateTime),
					run.ID,
					result,
					strconv.Itoa(run.Patched) + "/" + strconv.Itoa(run.Steps),
					strconv.Itoa(run.Missed),
					run.Root,
				})
			}
			logger.Table([]string{"Started", "Run", "Result", "Patched", "Missed", "Root"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")

	return cmd
}
