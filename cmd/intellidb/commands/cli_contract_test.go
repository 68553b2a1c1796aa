package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestCLIContract(t *testing.T) {
	cmd := NewRootCmd(WithGetenv(func(string) string { return "" }))
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	if err != nil {
		t.Fatalf("root command failed: %v", err)
	}

	out := b.String()

	// Assert top-level commands that are part of the core contract
	requiredCommands := []string{
		"completion",
		"factory",
		"help",
		"middleware",
		"migration",
		"model",
		"repo-service",
		"repository",
		"rule",
		"runs",
		"version",
	}

	for _, c := range requiredCommands {
		if !strings.Contains(out, c) {
			t.Errorf("expected top-level command %q in root help", c)
		}
	}

	for _, f := range []string{"--config", "--state-dir", "--metrics-file", "--log-format", "--verbose", "--max-tokens"} {
		if !strings.Contains(out, f) {
			t.Errorf("expected global flag %q in root help", f)
		}
	}
}

func TestCLIGenerateCommandFlags(t *testing.T) {
	tests := []struct {
		command string
		want    []string
		absent  []string
	}{
		{command: "middleware", want: []string{"--description", "--path", "ai:middleware"}, absent: []string{"--model"}},
		{command: "repository", want: []string{"--description", "--path", "--model", "ai:repository"}},
		{command: "repo-service", want: []string{"--description", "--path", "--model", "--create-model", "ai:repo-service"}},
		{command: "model", want: []string{"--description", "--path", "ai:model"}, absent: []string{"--model"}},
		{command: "migration", want: []string{"--description", "--path", "--model", "ai:migration"}},
		{command: "factory", want: []string{"--description", "--path", "--model", "ai:factory"}},
		{command: "rule", want: []string{"--description", "--path", "ai:rule"}, absent: []string{"--model"}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			cmd := NewRootCmd(WithGetenv(func(string) string { return "" }))
			b := bytes.NewBufferString("")
			cmd.SetOut(b)
			cmd.SetArgs([]string{tt.command, "--help"})

			if err := cmd.Execute(); err != nil {
				t.Fatalf("%s help failed: %v", tt.command, err)
			}

			out := b.String()
			if !strings.Contains(out, "Usage:") {
				t.Errorf("expected usage info in %s help", tt.command)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("expected %q in %s help", w, tt.command)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(out, a+" ") {
					t.Errorf("unexpected %q in %s help", a, tt.command)
				}
			}
		})
	}
}

func TestCLICommandRuns(t *testing.T) {
	cmd := NewRootCmd(WithGetenv(func(string) string { return "" }))
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetArgs([]string{"runs", "--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("runs command failed: %v", err)
	}

	out := b.String()
	for _, c := range []string{"report", "resume", "reset"} {
		if !strings.Contains(out, c) {
			t.Errorf("expected %q in runs help", c)
		}
	}
}

func TestCLIVersion(t *testing.T) {
	cmd := NewRootCmd(WithGetenv(func(k string) string {
		if k == "INTELLIDB_VERSION" {
			return "1.2.3"
		}
		return ""
	}))
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if got := b.String(); got != "IntelliDb version 1.2.3\n" {
		t.Errorf("got %q", got)
	}
}
