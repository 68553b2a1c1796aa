// Package golden reads and writes expected test output under a package's
// testdata directory. Run tests with -update to refresh the files.
package golden

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestdataDir returns the testdata directory next to the calling test file.
func TestdataDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(1)
	if !ok {
		t.Fatalf("runtime.Caller failed")
	}
	return filepath.Join(filepath.Dir(filename), "testdata")
}

var Update = flag.Bool("update", false, "update golden files")

func Read(t *testing.T, testdataDir, name string) string {
	t.Helper()
	safeName(t, name)

	path := filepath.Join(testdataDir, name+".golden")
	data, err := os.ReadFile(path) //nolint:gosec // testdata path controlled by test
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("read golden %s: %v", path, err)
	}
	return string(data)
}

func Write(t *testing.T, testdataDir, name, content string) {
	t.Helper()
	safeName(t, name)

	if err := os.MkdirAll(testdataDir, 0o750); err != nil {
		t.Fatalf("mkdir testdata: %v", err)
	}
	path := filepath.Join(testdataDir, name+".golden")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write golden %s: %v", path, err)
	}
}

// Compare checks got against the named golden file, ignoring trailing
// newlines on both sides. With -update the file is rewritten instead.
func Compare(t *testing.T, testdataDir, name, got string) {
	t.Helper()

	if *Update {
		Write(t, testdataDir, name, strings.TrimRight(got, "\n")+"\n")
		return
	}

	want := Read(t, testdataDir, name)
	if want == "" {
		t.Fatalf("golden %s.golden is missing; run with -update", name)
	}
	if strings.TrimRight(want, "\n") != strings.TrimRight(got, "\n") {
		t.Errorf("output differs from %s.golden\n--- want\n%s\n--- got\n%s", name, want, got)
	}
}

func safeName(t *testing.T, name string) {
	t.Helper()
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		t.Fatalf("invalid golden name %q", name)
	}
}
