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

package session

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const steamRegistryPath = `SOFTWARE\Valve\Steam`

// RegistryRunFlag reads Steam's run state from the Windows registry.
// A missing key or value means "flag not set", never an error.
type RegistryRunFlag struct{}

var _ RunFlagChecker = (*RegistryRunFlag)(nil)

// NewRunFlagChecker returns the Windows registry-backed run flag.
// steamDir is unused on Windows.
func NewRunFlagChecker(_ string) RunFlagChecker {
	return &RegistryRunFlag{}
}

// IsRunningFlagSet reports whether Steam asserts appID is running,
// either via the global RunningAppID or the per-app Running value.
func (*RegistryRunFlag) IsRunningFlagSet(appID int) bool {
	if key, err := registry.OpenKey(
		registry.CURRENT_USER,
		steamRegistryPath,
		registry.QUERY_VALUE,
	); err == nil {
		running, _, err := key.GetIntegerValue("RunningAppID")
		_ = key.Close()
		if err == nil && int(running) == appID {
			return true
		}
	}

	appKey, err := registry.OpenKey(
		registry.CURRENT_USER,
		fmt.Sprintf(`%s\Apps\%d`, steamRegistryPath, appID),
		registry.QUERY_VALUE,
	)
	if err != nil {
		return false
	}
	defer func() { _ = appKey.Close() }()

	running, _, err := appKey.GetIntegerValue("Running")
	return err == nil && running != 0
}
