package runner

import (
	"context"
	"path/filepath"
)

// Step is one artifact to generate: a prompt and where its answer goes.
type Step struct {
	// Kind is the artifact kind, used for metrics and the run summary.
	Kind      string
	Label     string
	Prompt    string
	MaxTokens int
	Dir       string
	FileName  string
}

// Path is the destination of the step's file.
func (s Step) Path() string {
	return filepath.Join(s.Dir, s.FileName)
}

// Completer turns a prompt into generated text.
type Completer interface {
	Execute(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Writer persists generated text and returns the written path.
type Writer interface {
	Write(dir, name, content string) (string, error)
}

func splitPath(path string) (dir, file string) {
	return filepath.Dir(path), filepath.Base(path)
}
