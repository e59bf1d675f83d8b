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

package library

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/andygrunwald/vdf"
	"github.com/rs/zerolog/log"
)

// AppInfo contains the fields read from one appmanifest file.
type AppInfo struct {
	Name       string
	InstallDir string
	// LaunchExecutables are the binaries the manifest declares for
	// launching: the optional top-level executable value first, then
	// the per-index launch entries in index order. Paths are relative
	// to the install directory.
	LaunchExecutables []string
	AppID             int
}

// ParseManifest reads an appmanifest_*.acf file. It tries the strict VDF
// grammar first and falls back to a tolerant key scan when that fails, so
// a slightly malformed manifest still yields a usable record. A manifest
// that yields neither appid nor name is an error.
func ParseManifest(path string) (AppInfo, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Safe: reads Steam manifest files
	if err != nil {
		return AppInfo{}, fmt.Errorf("error reading manifest: %w", err)
	}

	info, vdfErr := parseManifestVDF(data)
	if vdfErr == nil {
		return info, nil
	}
	log.Debug().Err(vdfErr).Str("manifest", path).Msg("strict parse failed, trying tolerant scan")

	return parseManifestLoose(data)
}

// parseManifestVDF parses the manifest with the VDF grammar parser.
func parseManifestVDF(data []byte) (AppInfo, error) {
	p := vdf.NewParser(bytes.NewReader(data))
	m, err := p.Parse()
	if err != nil {
		return AppInfo{}, fmt.Errorf("error parsing manifest: %w", err)
	}
	m = normalizeVDFKeys(m)

	appState, ok := m["appstate"].(map[string]any)
	if !ok {
		return AppInfo{}, errors.New("appstate not found in manifest")
	}

	appIDStr, ok := appState["appid"].(string)
	if !ok {
		return AppInfo{}, errors.New("appid not found in manifest")
	}
	appID, err := strconv.Atoi(appIDStr)
	if err != nil {
		return AppInfo{}, fmt.Errorf("invalid appid %q: %w", appIDStr, err)
	}

	name, ok := appState["name"].(string)
	if !ok || name == "" {
		return AppInfo{}, errors.New("name not found in manifest")
	}

	installDir, _ := appState["installdir"].(string) //nolint:revive // installdir is optional

	return AppInfo{
		AppID:             appID,
		Name:              name,
		InstallDir:        installDir,
		LaunchExecutables: launchExecutables(appState),
	}, nil
}

// launchExecutables collects the declared binaries from a parsed
// appstate block: the top-level executable value, then the executable of
// each launch entry in numeric index order. The launch block may sit
// directly under appstate or under its config block.
func launchExecutables(appState map[string]any) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(exe string) {
		if exe == "" {
			return
		}
		key := strings.ToLower(exe)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, exe)
	}

	if exe, ok := appState["executable"].(string); ok {
		add(exe)
	}

	launch, ok := appState["launch"].(map[string]any)
	if !ok {
		if cfg, okCfg := appState["config"].(map[string]any); okCfg {
			launch, _ = cfg["launch"].(map[string]any)
		}
	}
	for _, idx := range sortedLaunchIndices(launch) {
		entry, ok := launch[idx].(map[string]any)
		if !ok {
			continue
		}
		if exe, ok := entry["executable"].(string); ok {
			add(exe)
		}
	}
	return out
}

// sortedLaunchIndices orders a launch block's keys numerically, with any
// non-numeric stragglers after them by string order.
func sortedLaunchIndices(launch map[string]any) []string {
	keys := make([]string, 0, len(launch))
	for k := range launch {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, errI := strconv.Atoi(keys[i])
		nj, errJ := strconv.Atoi(keys[j])
		switch {
		case errI == nil && errJ == nil:
			return ni < nj
		case errI == nil:
			return true
		case errJ == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// parseManifestLoose scans the manifest text for the required fields
// without requiring a well-formed brace structure.
func parseManifestLoose(data []byte) (AppInfo, error) {
	text := string(data)

	appIDStr, ok := scanStringField(text, "appid")
	if !ok {
		return AppInfo{}, errors.New("appid not found in manifest")
	}
	appID, err := strconv.Atoi(appIDStr)
	if err != nil {
		return AppInfo{}, fmt.Errorf("invalid appid %q: %w", appIDStr, err)
	}

	name, ok := scanStringField(text, "name")
	if !ok || name == "" {
		return AppInfo{}, errors.New("name not found in manifest")
	}

	installDir, _ := scanStringField(text, "installdir")

	return AppInfo{
		AppID:             appID,
		Name:              name,
		InstallDir:        installDir,
		LaunchExecutables: dedupeStrings(scanStringFields(text, "executable")),
	}, nil
}

// dedupeStrings drops case-insensitive duplicates, keeping first
// occurrences in order.
func dedupeStrings(in []string) []string {
	if len(in) < 2 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
