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

package main

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/commands"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/backup"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/plan"
)

// newRootCmd builds the command tree. Human output goes to stdout, structured
// logs to stderr.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "patchrc",
		Short: "Back up and patch source files with guarded literal edits",
		Long: `patchrc integrates features into an existing source tree by applying
literal search-and-replace rules to known files. Every file is backed up
next to itself before it is written, and rules whose guard is already
present are skipped, so running it again is safe.

Without a subcommand it runs apply with the built-in CompanionAI plan.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), stderr, opts.Debug)
			ctx = log.NewContext(ctx, log.New(stdout, *zerolog.Ctx(ctx)))
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunApply(cmd, opts)
		},
	}

	addRootFlags(rootCmd, opts)

	rootCmd.AddCommand(
		commands.NewApplyCmd(opts),
		commands.NewStatusCmd(opts),
		commands.NewRollbackCmd(opts),
		commands.NewHistoryCmd(opts),
		newVersionCmd(),
	)

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, opts *opts.RootOpts) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.Root, "root", "r", plan.DefaultRoot, "root directory of the source tree to patch")
	flags.StringVar(&opts.Suffix, "suffix", backup.DefaultSuffix, "suffix appended to backup file names")
	flags.StringVarP(&opts.Plan, "plan", "p", "", "plan file (.hcl, .yaml, .json); the built-in plan is used when empty")
	flags.BoolVar(&opts.Parallel, "parallel", false, "patch independent files concurrently")
	flags.BoolVar(&opts.Strict, "strict", false, "fail a step when a rule matches neither its guard nor its marker")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "show the diff without backing up or writing")
	flags.StringVar(&opts.Lock, "lock", "", "lock file path (default <root>/.patchrc.lock)")
	flags.StringVar(&opts.Journal, "journal", "", "sqlite journal that records every run")
	flags.BoolVarP(&opts.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging(ctx context.Context, w io.Writer, debug bool) context.Context {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
	return logger.WithContext(ctx)
}
