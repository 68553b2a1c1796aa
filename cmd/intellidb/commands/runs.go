package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bartekus/intellidb/internal/faults"
	"github.com/bartekus/intellidb/internal/runner"
)

// newRunsCommand returns the `intellidb runs` command group, which inspects
// and manages the state of the last generation run.
func (a *app) newRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect, resume or clear the last generation run",
		Long: `When --state-dir or INTELLIDB_STATE_DIR is set, every generation command
records its outcome there. These commands need the same setting.`,
	}

	cmd.AddCommand(a.newRunsReportCommand())
	cmd.AddCommand(a.newRunsResumeCommand())
	cmd.AddCommand(a.newRunsResetCommand())
	return cmd
}

// errStateDisabled is returned by the runs subcommands when no state
// directory is configured.
var errStateDisabled = faults.New(faults.KindConfiguration, "commands.runs",
	"run state is disabled; pass --state-dir or set "+envStateDir)

func (a *app) resolveStateStore() (*runner.StateStore, error) {
	_, root, err := a.paths()
	if err != nil {
		return nil, err
	}
	store := a.stateStore(root)
	if store == nil {
		return nil, errStateDisabled
	}
	return store, nil
}

func (a *app) newRunsReportCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.resolveStateStore()
			if err != nil {
				return report(err)
			}
			last, err := store.ReadLastRun()
			if err != nil {
				return report(err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(last)
			}
			return runner.WriteReport(out, last)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output the run record as JSON")
	return cmd
}

func (a *app) newRunsResumeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Regenerate the failed and skipped artifacts of the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.resolveStateStore(); err != nil {
				return report(err)
			}
			s, err := a.newSession(cmd)
			if err != nil {
				return report(err)
			}
			defer s.close()

			out := cmd.OutOrStdout()
			last, err := s.runner.Resume(cmd.Context())
			if errors.Is(err, runner.ErrNothingToResume) {
				fmt.Fprintln(out, "Nothing to resume.")
				return nil
			}
			if err != nil {
				return report(err)
			}

			fmt.Fprintf(out, "Resumed %s for [%s]: %d of %d file(s) generated.\n", last.Command, last.Name, last.Written(), len(last.Artifacts))
			return nil
		},
	}
}

func (a *app) newRunsResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear run state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.resolveStateStore()
			if err != nil {
				return report(err)
			}
			if err := store.Reset(); err != nil {
				return report(fmt.Errorf("clearing %s: %w", store.Dir(), err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Run state cleared.")
			return nil
		},
	}
}
