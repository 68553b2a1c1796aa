// SPDX-License-Identifier: AGPL-3.0-or-later

// Package filewriter puts generated source files on disk.
package filewriter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bartekus/intellidb/internal/faults"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Write creates dir and any missing parents, then writes content to
// dir/name, replacing whatever was there. It returns the written path.
func Write(dir, name, content string) (string, error) {
	const op = "filewriter.Write"

	if name == "" {
		return "", faults.New(faults.KindValidation, op, "file name is empty")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", faults.Wrap(faults.KindIO, op, fmt.Sprintf("creating directory %s", dir), err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		return "", faults.Wrap(faults.KindIO, op, fmt.Sprintf("writing %s", path), err)
	}
	return path, nil
}

// AtomicWrite writes content to path by writing a temp file in the same
// directory and renaming it over path. Readers never see a partial file.
func AtomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".intellidb-tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	if _, err := tmpFile.Write(content); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("writing content: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("moving temp file to %s: %w", path, err)
	}
	return nil
}

// Local writes to the local filesystem.
type Local struct{}

func (Local) Write(dir, name, content string) (string, error) {
	return Write(dir, name, content)
}
