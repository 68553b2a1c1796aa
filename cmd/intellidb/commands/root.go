// SPDX-License-Identifier: AGPL-3.0-or-later

/*
IntelliDb - AI-assisted Laravel scaffolding.
Prompts a chat-completion API for middleware, repositories, services, models,
migrations, factories and validation rules, and writes the answers where
Laravel expects them.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bartekus/intellidb/internal/runner"
)

// Version is overridden at build time with -ldflags "-X ...commands.Version=x.y.z".
var Version = "0.0.0-dev"

// envStateDir enables run state when --state-dir is not given.
const envStateDir = "INTELLIDB_STATE_DIR"

// app holds what the commands of one root share: injected dependencies
// and the values of the persistent flags.
type app struct {
	completer runner.Completer
	now       func() time.Time
	getenv    func(string) string
	workDir   string

	configPath  string
	stateDir    string
	metricsFile string
	logFormat   string
	verbose     bool
	maxTokens   int
}

// Option customizes the root command, mainly for tests.
type Option func(*app)

// WithCompleter replaces the OpenAI client.
func WithCompleter(c runner.Completer) Option {
	return func(a *app) { a.completer = c }
}

// WithClock fixes the time used for migration file names and run records.
func WithClock(now func() time.Time) Option {
	return func(a *app) { a.now = now }
}

// WithGetenv replaces the environment lookup.
func WithGetenv(fn func(string) string) Option {
	return func(a *app) { a.getenv = fn }
}

// WithWorkDir runs the commands as if started in dir.
func WithWorkDir(dir string) Option {
	return func(a *app) { a.workDir = dir }
}

// NewRootCmd constructs the intellidb root Cobra command.
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &app{
		now:    time.Now,
		getenv: os.Getenv,
	}
	for _, opt := range opts {
		opt(a)
	}

	version := a.getenv("INTELLIDB_VERSION")
	if version == "" {
		version = Version
	}

	cmd := &cobra.Command{
		Use:   "intellidb",
		Short: "IntelliDb - AI-generated Laravel boilerplate",
		Long: `IntelliDb asks a chat-completion API to write Laravel classes and saves the
answers at the conventional paths of the current application.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to the YAML config file (default <project root>/intellidb.yaml)")
	pf.StringVar(&a.stateDir, "state-dir", "", "record runs in this directory, relative to the project root (default $"+envStateDir+", unset disables)")
	pf.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after each run")
	pf.StringVar(&a.logFormat, "log-format", "text", "diagnostic log format: text or json")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	pf.IntVar(&a.maxTokens, "max-tokens", 0, "override the completion token budget")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of IntelliDb",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "IntelliDb version %s\n", version)
		},
	})

	cmd.AddCommand(a.newMiddlewareCommand())
	cmd.AddCommand(a.newRepositoryCommand())
	cmd.AddCommand(a.newRepoServiceCommand())
	cmd.AddCommand(a.newModelCommand())
	cmd.AddCommand(a.newMigrationCommand())
	cmd.AddCommand(a.newFactoryCommand())
	cmd.AddCommand(a.newRuleCommand())
	cmd.AddCommand(a.newRunsCommand())

	return cmd
}
