//go:build !windows

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

package session

import (
	"os"
	"path/filepath"
)

// NewRunFlagChecker returns a registry.vdf-backed run flag. The file
// usually lives one level above the Steam root (~/.steam/registry.vdf);
// the first existing candidate wins. If none exists the checker still
// works, reporting false until the file appears.
func NewRunFlagChecker(steamDir string) RunFlagChecker {
	var candidates []string
	if steamDir != "" {
		candidates = append(candidates,
			filepath.Join(steamDir, "registry.vdf"),
			filepath.Join(filepath.Dir(steamDir), "registry.vdf"),
		)
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".steam", "registry.vdf"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return &VDFRunFlag{Path: path}
		}
	}
	if len(candidates) > 0 {
		return &VDFRunFlag{Path: candidates[0]}
	}
	return &VDFRunFlag{Path: "registry.vdf"}
}
