// SPDX-License-Identifier: AGPL-3.0-or-later

// Package projectroot locates the Laravel application a command runs in.
package projectroot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Marker is the file that identifies a Laravel application root.
const Marker = "artisan"

var ErrNotFound = errors.New("no Laravel project root (artisan) found")

// Find walks up from start until it finds a directory containing Marker.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}

	for {
		info, err := os.Stat(filepath.Join(dir, Marker))
		if err == nil && !info.IsDir() {
			return dir, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("checking %s: %w", dir, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// FindOr is Find with a fallback: when no root exists above start, the
// absolute form of start is returned.
func FindOr(start string) (string, error) {
	root, err := Find(start)
	if errors.Is(err, ErrNotFound) {
		return filepath.Abs(start)
	}
	return root, err
}
