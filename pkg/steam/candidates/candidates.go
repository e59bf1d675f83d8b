// SteamLibrarian
// Copyright (c) 2026 The SteamLibrarian Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of SteamLibrarian.
//
// SteamLibrarian is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SteamLibrarian is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with SteamLibrarian.  If not, see <http://www.gnu.org/licenses/>.

// Package candidates ranks the executables under a game's install
// directory by how likely each is to be the main binary. File size is a
// cheap, reasonably reliable proxy for "main binary" versus auxiliary
// tooling, once installers and helpers are filtered out.
package candidates

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/rs/zerolog/log"
)

// Candidate is one executable plausibly representing the main binary.
type Candidate struct {
	Path      string
	SizeBytes int64
}

// Options configures ranking. Zero values use defaults.
type Options struct {
	// ExtraExclude are additional glob patterns applied on top of
	// DefaultExcludes, matched against the lowercased file name.
	ExtraExclude []string
	// MaxDepth limits directory descent below the install path.
	MaxDepth int
	// Limit caps the number of returned candidates.
	Limit int
}

const (
	DefaultMaxDepth = 3
	// DefaultDetectionLimit is the candidate cap for session detection.
	DefaultDetectionLimit = 5
	// DefaultPresentationLimit is the candidate cap for display to users.
	DefaultPresentationLimit = 10
)

// DefaultExcludes filters installers, uninstallers, redistributables,
// launchers, crash reporters and updaters out of the candidate set.
var DefaultExcludes = []string{
	"*setup*",
	"*install*",
	"unins*",
	"*uninstall*",
	"*redist*",
	"vcredist*",
	"vc_redist*",
	"dxsetup*",
	"dotnet*",
	"ue4prereqsetup*",
	"*launcher*",
	"*crashhandler*",
	"*crashreport*",
	"*crashpad*",
	"*updater*",
	"*helper*",
}

// nonExecutableExts are exec-bit files that are never main binaries.
var nonExecutableExts = map[string]struct{}{
	".so": {}, ".dll": {}, ".dylib": {}, ".sh": {}, ".bat": {}, ".cmd": {},
}

// Rank enumerates executables under installPath down to MaxDepth,
// discards excluded names, and returns up to Limit candidates sorted
// descending by file size.
func Rank(installPath string, opts Options) ([]Candidate, error) {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultDetectionLimit
	}
	excludes := make([]string, 0, len(DefaultExcludes)+len(opts.ExtraExclude))
	excludes = append(excludes, DefaultExcludes...)
	excludes = append(excludes, opts.ExtraExclude...)

	root := filepath.Clean(installPath)

	var mu sync.Mutex
	var found []Candidate

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			log.Debug().Err(err).Str("path", path).Msg("skipping unreadable entry")
			return nil
		}

		depth := entryDepth(root, path)
		if d.IsDir() {
			if depth >= maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if depth > maxDepth {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // Transient stat failure, treat entry as absent
		}
		if !info.Mode().IsRegular() || !isExecutable(path, info.Mode()) {
			return nil
		}
		if matchesAny(excludes, strings.ToLower(filepath.Base(path))) {
			return nil
		}

		mu.Lock()
		found = append(found, Candidate{Path: path, SizeBytes: info.Size()})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking install path: %w", err)
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].SizeBytes != found[j].SizeBytes {
			return found[i].SizeBytes > found[j].SizeBytes
		}
		return found[i].Path < found[j].Path
	})

	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

// SeedDeclared puts the manifest's declared launch executables ahead of
// the size-ranked candidates. Declared binaries are authoritative: they
// bypass the exclusion globs, and a missing file still yields a
// candidate (with zero size) since the manifest may describe a pending
// or partial install. Ranked entries whose name stem duplicates a
// declared binary are dropped.
func SeedDeclared(installPath string, declared []string, ranked []Candidate) []Candidate {
	if len(declared) == 0 {
		return ranked
	}

	out := make([]Candidate, 0, len(declared)+len(ranked))
	seen := make(map[string]struct{}, len(declared))
	for _, rel := range declared {
		if rel == "" {
			continue
		}
		path := filepath.FromSlash(rel)
		if installPath != "" && !filepath.IsAbs(path) {
			path = filepath.Join(installPath, path)
		}
		stem := candidateStem(path)
		if _, dup := seen[stem]; dup {
			continue
		}
		seen[stem] = struct{}{}

		c := Candidate{Path: path}
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			c.SizeBytes = info.Size()
		}
		out = append(out, c)
	}

	for _, c := range ranked {
		if _, dup := seen[candidateStem(c.Path)]; dup {
			continue
		}
		out = append(out, c)
	}
	return out
}

// candidateStem lowercases a candidate's file name and strips the
// extension, matching how the detector compares process names.
func candidateStem(path string) string {
	name := strings.ToLower(filepath.Base(path))
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// entryDepth returns how many directories below root a path sits.
func entryDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator))
}

// isExecutable reports whether a file looks like a runnable binary.
// Windows game binaries are .exe (also the common case under Proton);
// elsewhere the exec bit counts, minus obvious library/script types.
func isExecutable(path string, mode fs.FileMode) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".exe" {
		return true
	}
	if runtime.GOOS == "windows" {
		return false
	}
	if _, bad := nonExecutableExts[ext]; bad {
		return false
	}
	return mode.Perm()&0o111 != 0
}

// matchesAny reports whether name matches any of the glob patterns.
// Malformed patterns are ignored.
func matchesAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
