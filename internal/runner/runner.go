// Package runner executes generation steps one after another, stopping at
// the first failure, and records what happened in the state directory.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bartekus/intellidb/internal/faults"
	"github.com/bartekus/intellidb/internal/metrics"
)

// ErrNothingToResume is returned by Resume when the last run has no pending
// steps.
var ErrNothingToResume = errors.New("no failed or skipped artifacts to resume")

// Runner manages the execution of steps.
type Runner struct {
	completer Completer
	writer    Writer
	store     *StateStore
	out       io.Writer
	log       *slog.Logger
	metrics   *metrics.Recorder
	now       func() time.Time
	newID     func() string
}

type Option func(*Runner)

// WithStateStore enables the run summary. Without it nothing is persisted.
func WithStateStore(s *StateStore) Option {
	return func(r *Runner) { r.store = s }
}

// WithOutput sets where progress lines go.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a runner that asks c for content and hands it to w.
func NewRunner(c Completer, w Writer, opts ...Option) *Runner {
	r := &Runner{
		completer: c,
		writer:    w,
		out:       io.Discard,
		log:       slog.New(slog.DiscardHandler),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the configured state store, possibly nil.
func (r *Runner) Store() *StateStore {
	return r.store
}

// Run executes steps in order. The first failing step aborts the run: later
// steps are recorded as skipped and files already written stay on disk.
// The summary is returned even when the run fails.
func (r *Runner) Run(ctx context.Context, command, subject string, steps []Step) (*LastRun, error) {
	last, err := r.run(ctx, command, subject, steps)
	r.record(last)
	return last, err
}

func (r *Runner) run(ctx context.Context, command, subject string, steps []Step) (*LastRun, error) {
	last := &LastRun{
		RunID:     r.newID(),
		Command:   command,
		Name:      subject,
		Status:    RunPass,
		StartedAt: r.now().UTC(),
		Artifacts: make([]ArtifactResult, 0, len(steps)),
		Failed:    []string{},
	}
	log := r.log.With(slog.String("run_id", last.RunID), slog.String("command", command))

	var runErr error
	for _, step := range steps {
		res := ArtifactResult{
			Kind:      step.Kind,
			Label:     step.Label,
			Path:      step.Path(),
			Status:    StatusSkipped,
			Prompt:    step.Prompt,
			MaxTokens: step.MaxTokens,
		}

		if runErr != nil {
			last.Artifacts = append(last.Artifacts, res)
			continue
		}

		path, err := r.execute(ctx, step)
		if err != nil {
			res.Status = StatusFailed
			res.Error = err.Error()
			last.Failed = append(last.Failed, step.Label)
			last.Status = RunFail
			runErr = fmt.Errorf("generating %s: %w", step.Label, err)
			log.Debug("step failed", slog.String("kind", step.Kind), slog.Any("error", err))
		} else {
			res.Status = StatusWritten
			res.Path = path
			log.Debug("step written", slog.String("kind", step.Kind), slog.String("path", path))
		}
		last.Artifacts = append(last.Artifacts, res)
	}

	return last, runErr
}

// record saves last in the state store. A failed save is only logged.
func (r *Runner) record(last *LastRun) {
	if err := r.store.WriteLastRun(*last); err != nil {
		r.metrics.IncError("runner", "state")
		r.log.Warn("could not record run",
			slog.String("run_id", last.RunID),
			slog.String("state_dir", r.store.Dir()),
			slog.Any("error", err))
	}
}

// Resume re-runs the failed and skipped steps of the last recorded run and
// folds their outcome into that record, so artifacts written earlier stay
// listed. The merged record keeps the original run id and start time.
func (r *Runner) Resume(ctx context.Context) (*LastRun, error) {
	prev, err := r.store.ReadLastRun()
	if err != nil {
		return nil, faults.Wrap(faults.KindIO, "runner.Resume", "loading last run", err)
	}
	pending := prev.Pending()
	if len(pending) == 0 {
		return nil, ErrNothingToResume
	}

	resumed, runErr := r.run(ctx, prev.Command, prev.Name, pending)
	merged := prev.Merge(resumed)
	r.record(merged)
	return merged, runErr
}

func (r *Runner) execute(ctx context.Context, step Step) (string, error) {
	content, err := r.completer.Execute(ctx, step.Prompt, step.MaxTokens)
	if err != nil {
		return "", err
	}

	path, err := r.writer.Write(step.Dir, step.FileName, content)
	if err != nil {
		r.metrics.IncError("runner", "write")
		return "", err
	}
	r.metrics.IncArtifact(step.Kind)

	fmt.Fprintf(r.out, "%s created: %s\n", step.Label, path)
	return path, nil
}
