// SPDX-License-Identifier: AGPL-3.0-or-later

// Package artifact models what intellidb generates: the kinds of Laravel
// source files, the request describing one generation, and the naming
// conventions that decide where each file lands.
package artifact

import (
	"path/filepath"
	"strings"
	"time"
)

// Kind is the category of a generated file. It selects the prompt and the
// file naming convention.
type Kind string

const (
	KindMiddleware          Kind = "middleware"
	KindRepository          Kind = "repository"
	KindRepositoryInterface Kind = "repository-interface"
	KindEloquentRepository  Kind = "eloquent-repository"
	KindService             Kind = "service"
	KindModel               Kind = "model"
	KindMigration           Kind = "migration"
	KindFactory             Kind = "factory"
	KindRule                Kind = "rule"
)

type convention struct {
	label string
	// dir is relative to the project root.
	dir string
}

var conventions = map[Kind]convention{
	KindMiddleware:          {label: "Middleware", dir: "app/Http/Middleware"},
	KindRepository:          {label: "Repository", dir: "app/Repositories"},
	KindRepositoryInterface: {label: "Interface", dir: "app/Repositories/Contracts"},
	KindEloquentRepository:  {label: "Eloquent Repository", dir: "app/Repositories"},
	KindService:             {label: "Service", dir: "app/Services"},
	KindModel:               {label: "Model", dir: "app/Models"},
	KindMigration:           {label: "Migration", dir: "database/migrations"},
	KindFactory:             {label: "Factory", dir: "database/factories"},
	KindRule:                {label: "Rule", dir: "app/Rules"},
}

// Kinds lists every kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindMiddleware,
		KindRepository,
		KindRepositoryInterface,
		KindEloquentRepository,
		KindService,
		KindModel,
		KindMigration,
		KindFactory,
		KindRule,
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := conventions[k]
	return ok
}

// Label is the human-readable name used in progress output.
func (k Kind) Label() string {
	if c, ok := conventions[k]; ok {
		return c.label
	}
	return string(k)
}

// DefaultDir is the conventional output directory relative to the project root.
func (k Kind) DefaultDir() string {
	return filepath.FromSlash(conventions[k].dir)
}

// AppSubDir is DefaultDir relative to the app/ directory. Kinds living
// outside app/ return their DefaultDir unchanged.
func (k Kind) AppSubDir() string {
	dir := conventions[k].dir
	if rest, ok := strings.CutPrefix(dir, "app/"); ok {
		return filepath.FromSlash(rest)
	}
	return filepath.FromSlash(dir)
}

// MigrationTimestampLayout matches the prefix Laravel uses for migration files.
const MigrationTimestampLayout = "2006_01_02_150405"

// FileName returns the conventional file name for an artifact of kind k
// named name. now only matters for migrations.
func FileName(k Kind, name string, now time.Time) string {
	switch k {
	case KindRepositoryInterface:
		return name + "RepositoryInterface.php"
	case KindEloquentRepository:
		return "Eloquent" + name + "Repository.php"
	case KindService:
		return name + "Service.php"
	case KindFactory:
		if strings.HasSuffix(name, "Factory") {
			return name + ".php"
		}
		return name + "Factory.php"
	case KindMigration:
		return now.Format(MigrationTimestampLayout) + "_" + Snake(name) + ".php"
	default:
		return name + ".php"
	}
}

// Artifact is a generated file ready to be written.
type Artifact struct {
	Kind     Kind
	Label    string
	Dir      string
	FileName string
	Content  string
}

// Path is the full destination path.
func (a Artifact) Path() string {
	return filepath.Join(a.Dir, a.FileName)
}
