package runner

import "time"

// ArtifactStatus is the outcome of a single step.
type ArtifactStatus string

const (
	StatusWritten ArtifactStatus = "written"
	StatusFailed  ArtifactStatus = "failed"
	StatusSkipped ArtifactStatus = "skipped"
)

const (
	RunPass = "pass"
	RunFail = "fail"
)

// ArtifactResult records one step of a run. The step inputs are kept so a
// failed run can be resumed without the original command line.
type ArtifactResult struct {
	Kind      string         `json:"kind"`
	Label     string         `json:"label"`
	Path      string         `json:"path"`
	Status    ArtifactStatus `json:"status"`
	Error     string         `json:"error,omitempty"`
	Prompt    string         `json:"prompt"`
	MaxTokens int            `json:"max_tokens"`
}

// LastRun is the summary of the most recent invocation, stored as
// last-run.json in the state directory.
type LastRun struct {
	RunID     string           `json:"run_id"`
	Command   string           `json:"command"`
	Name      string           `json:"name"`
	Status    string           `json:"status"` // "pass" or "fail"
	StartedAt time.Time        `json:"started_at"`
	Artifacts []ArtifactResult `json:"artifacts"`
	Failed    []string         `json:"failed"` // labels of failed steps
}

// Pending returns the steps that were not written, in their original order.
func (l *LastRun) Pending() []Step {
	if l == nil {
		return nil
	}
	var steps []Step
	for _, a := range l.Artifacts {
		if a.Status == StatusWritten {
			continue
		}
		steps = append(steps, a.step())
	}
	return steps
}

func (a ArtifactResult) step() Step {
	dir, file := splitPath(a.Path)
	return Step{
		Kind:      a.Kind,
		Label:     a.Label,
		Prompt:    a.Prompt,
		MaxTokens: a.MaxTokens,
		Dir:       dir,
		FileName:  file,
	}
}

// Written counts the artifacts that reached disk.
func (l *LastRun) Written() int {
	if l == nil {
		return 0
	}
	n := 0
	for _, a := range l.Artifacts {
		if a.Status == StatusWritten {
			n++
		}
	}
	return n
}

// Merge returns a copy of l with the artifacts of a resumed run replacing
// the entries that share their path. Status and Failed are recomputed from
// the merged artifacts.
func (l *LastRun) Merge(resumed *LastRun) *LastRun {
	merged := *l
	merged.Artifacts = append([]ArtifactResult(nil), l.Artifacts...)

	byPath := make(map[string]int, len(merged.Artifacts))
	for i, a := range merged.Artifacts {
		byPath[a.Path] = i
	}
	if resumed != nil {
		for _, a := range resumed.Artifacts {
			if i, ok := byPath[a.Path]; ok {
				merged.Artifacts[i] = a
				continue
			}
			merged.Artifacts = append(merged.Artifacts, a)
		}
	}

	merged.Status = RunPass
	merged.Failed = []string{}
	for _, a := range merged.Artifacts {
		switch a.Status {
		case StatusFailed:
			merged.Failed = append(merged.Failed, a.Label)
			merged.Status = RunFail
		case StatusSkipped:
			merged.Status = RunFail
		}
	}
	return &merged
}
