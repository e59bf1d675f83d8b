//go:build windows

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
	"golang.org/x/sys/windows/registry"
)

// defaultSteamDirs returns common Windows Steam install locations.
// The registry InstallPath value is checked first when present.
func defaultSteamDirs() []string {
	var paths []string

	if key, err := registry.OpenKey(
		registry.CURRENT_USER,
		`SOFTWARE\Valve\Steam`,
		registry.QUERY_VALUE,
	); err == nil {
		if installPath, _, err := key.GetStringValue("SteamPath"); err == nil && installPath != "" {
			paths = append(paths, installPath)
		}
		_ = key.Close()
	}

	return append(paths,
		`C:\Program Files (x86)\Steam`,
		`C:\Program Files\Steam`,
	)
}
