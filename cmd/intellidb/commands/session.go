package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bartekus/intellidb/cmd/intellidb/internal/clierr"
	"github.com/bartekus/intellidb/internal/config"
	"github.com/bartekus/intellidb/internal/faults"
	"github.com/bartekus/intellidb/internal/filewriter"
	"github.com/bartekus/intellidb/internal/logx"
	"github.com/bartekus/intellidb/internal/metrics"
	"github.com/bartekus/intellidb/internal/openai"
	"github.com/bartekus/intellidb/internal/projectroot"
	"github.com/bartekus/intellidb/internal/runner"
)

// session is everything a generation command needs, built once per
// invocation after the arguments are validated.
type session struct {
	cfg     config.Config
	log     *slog.Logger
	metrics *metrics.Recorder
	wd      string
	root    string
	runner  *runner.Runner

	metricsFile string
}

// paths returns the working directory and the Laravel project root. The
// root falls back to the working directory outside a Laravel app.
func (a *app) paths() (wd, root string, err error) {
	wd = a.workDir
	if wd == "" {
		if wd, err = os.Getwd(); err != nil {
			return "", "", fmt.Errorf("getting working directory: %w", err)
		}
	}
	root, err = projectroot.FindOr(wd)
	if err != nil {
		return "", "", fmt.Errorf("locating project root: %w", err)
	}
	return wd, root, nil
}

func (a *app) logger(cmd *cobra.Command) (*slog.Logger, error) {
	format, err := logx.ParseFormat(a.logFormat)
	if err != nil {
		return nil, faults.Wrap(faults.KindValidation, "commands.logger", "invalid --log-format", err)
	}
	return logx.New(cmd.ErrOrStderr(), format, a.verbose), nil
}

// stateStore resolves --state-dir, then $INTELLIDB_STATE_DIR, against root.
// Run state is off unless one of them is set.
func (a *app) stateStore(root string) *runner.StateStore {
	dir := a.stateDir
	if dir == "" {
		dir = a.getenv(envStateDir)
	}
	if dir == "" {
		return nil
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return runner.NewStateStore(dir)
}

// configSource picks the config file: --config, then $INTELLIDB_CONFIG,
// then an optional intellidb.yaml in the project root.
func (a *app) configSource(root string) config.Source {
	src := config.Source{Path: a.configPath, Getenv: a.getenv}
	if src.Path == "" {
		src.Path = a.getenv(config.EnvConfigPath)
	}
	if src.Path == "" {
		src.Path = filepath.Join(root, config.DefaultFileName)
		src.Optional = true
	}
	return src
}

func (a *app) newSession(cmd *cobra.Command) (*session, error) {
	log, err := a.logger(cmd)
	if err != nil {
		return nil, err
	}

	wd, root, err := a.paths()
	if err != nil {
		return nil, faults.Wrap(faults.KindIO, "commands.newSession", "resolving paths", err)
	}

	cfg, err := config.Load(a.configSource(root))
	if err != nil {
		return nil, err
	}
	log.Debug("configuration loaded", slog.Any("config", cfg), slog.String("project_root", root))

	rec := metrics.New()

	completer := a.completer
	if completer == nil {
		completer = openai.New(cfg, openai.WithLogger(log), openai.WithMetrics(rec))
	}

	r := runner.NewRunner(completer, filewriter.Local{},
		runner.WithStateStore(a.stateStore(root)),
		runner.WithOutput(cmd.OutOrStdout()),
		runner.WithLogger(log),
		runner.WithMetrics(rec),
		runner.WithClock(a.now),
	)

	return &session{
		cfg:         cfg,
		log:         log,
		metrics:     rec,
		wd:          wd,
		root:        root,
		runner:      r,
		metricsFile: a.metricsFile,
	}, nil
}

// tokens picks the budget for one step: --max-tokens, then max_tokens from
// the config file, then the per-command default.
func (s *session) tokens(flag, fallback int) int {
	switch {
	case flag > 0:
		return flag
	case s.cfg.MaxTokens > 0:
		return s.cfg.MaxTokens
	default:
		return fallback
	}
}

// dir resolves an output directory: an explicit --path is relative to the
// working directory, a conventional one to the project root.
func (s *session) dir(override, conventional string) string {
	if override != "" {
		if filepath.IsAbs(override) {
			return override
		}
		return filepath.Join(s.wd, override)
	}
	return filepath.Join(s.root, conventional)
}

// close flushes the metrics textfile. Write errors are only logged.
func (s *session) close() {
	if s.metricsFile == "" {
		return
	}
	path := s.metricsFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.wd, path)
	}
	if err := s.metrics.WriteTextfile(path); err != nil {
		s.log.Warn("metrics not written", slog.Any("error", err))
	}
}

// report maps an error to the one-line message and exit code shown to the
// operator.
func report(err error) error {
	if err == nil {
		return nil
	}
	if faults.Is(err, faults.KindRequest) {
		return clierr.Wrap(clierr.ExitFailure, "error fetching AI-generated content", err)
	}
	return clierr.Wrap(clierr.ExitFailure, "error occurred", err)
}
