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

// Package library discovers Steam library roots and indexes installed
// games from their appmanifest files.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrLibraryNotFound is returned when the Steam root or its steamapps
// directory does not exist.
var ErrLibraryNotFound = errors.New("steam library not found")

// Game is one installed Steam app, as read from its manifest.
// Immutable after creation.
type Game struct {
	Name         string
	InstallDir   string
	InstallPath  string
	ManifestPath string
	LibraryPath  string
	// LaunchExecutables are the binaries the manifest declares for
	// launching, relative to InstallPath, in declaration order.
	LaunchExecutables []string
	AppID             int
}

// Discover indexes all installed games under the Steam root at rootPath.
// It enumerates the default steamapps directory first, then every extra
// library declared in libraryfolders.vdf, in file order. Games are
// deduplicated by AppID with the first parsed manifest winning. A manifest
// that cannot be parsed is skipped and logged, never fatal.
func Discover(rootPath string) ([]Game, error) {
	steamApps := FindSteamAppsDir(rootPath)
	if info, err := os.Stat(steamApps); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrLibraryNotFound, rootPath)
	}

	var games []Game
	seen := make(map[int]struct{})

	for _, dir := range libraryDirs(steamApps) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("error listing steamapps folder")
			continue
		}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasPrefix(name, "appmanifest_") ||
				!strings.HasSuffix(name, ".acf") {
				continue
			}

			manifestPath := filepath.Join(dir, name)
			app, err := ParseManifest(manifestPath)
			if err != nil {
				log.Warn().Err(err).Str("manifest", manifestPath).Msg("skipping unparseable manifest")
				continue
			}

			if _, dup := seen[app.AppID]; dup {
				log.Debug().Int("appID", app.AppID).Str("manifest", manifestPath).
					Msg("duplicate appID, keeping first occurrence")
				continue
			}
			seen[app.AppID] = struct{}{}

			game := Game{
				AppID:             app.AppID,
				Name:              app.Name,
				InstallDir:        app.InstallDir,
				ManifestPath:      manifestPath,
				LibraryPath:       dir,
				LaunchExecutables: app.LaunchExecutables,
			}
			if app.InstallDir != "" {
				game.InstallPath = filepath.Join(dir, "common", app.InstallDir)
			}
			games = append(games, game)
		}
	}

	log.Debug().Int("count", len(games)).Str("root", rootPath).Msg("steam library scan complete")
	return games, nil
}

// libraryDirs returns all steamapps directories to scan: the main one
// first, then the extra libraries from libraryfolders.vdf in the order
// their path values appear in the file.
func libraryDirs(mainSteamApps string) []string {
	dirs := []string{mainSteamApps}
	dedup := map[string]struct{}{filepath.Clean(mainSteamApps): {}}

	lfPath := filepath.Join(mainSteamApps, "libraryfolders.vdf")
	data, err := os.ReadFile(lfPath) //nolint:gosec // Safe: reads Steam config files
	if err != nil {
		log.Debug().Err(err).Msg("failed to read libraryfolders.vdf")
		return dirs
	}

	for _, p := range extractLibraryPaths(string(data)) {
		steamApps := filepath.Join(p, "steamapps")
		if _, dup := dedup[filepath.Clean(steamApps)]; dup {
			continue
		}
		dedup[filepath.Clean(steamApps)] = struct{}{}
		dirs = append(dirs, steamApps)
	}

	return dirs
}

// FindSteamAppsDir finds the steamapps directory under a Steam root.
// It checks for both lowercase and mixed-case "steamapps" directories.
func FindSteamAppsDir(steamDir string) string {
	candidates := []string{
		"steamapps",
		"SteamApps",
		"steam/steamapps",
	}

	for _, candidate := range candidates {
		path := filepath.Join(steamDir, candidate)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
	}

	return filepath.Join(steamDir, "steamapps")
}
