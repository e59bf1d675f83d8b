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
	"sync"
	"syscall"

	"golang.org/x/sys/windows"
)

// The enum callback is created exactly once: the runtime never releases
// callbacks made with syscall.NewCallback and caps how many may exist,
// so allocating one per snapshot would eventually panic on long
// detection runs. The callback writes into enumPIDs under enumMu.
var (
	enumMu   sync.Mutex
	enumPIDs map[int32]struct{}

	enumWindowsProc = syscall.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		if !windows.IsWindowVisible(hwnd) {
			return 1 // continue enumeration
		}
		var pid uint32
		if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err == nil && pid != 0 {
			enumPIDs[int32(pid)] = struct{}{}
		}
		return 1
	})
)

// windowOwnerPIDs returns the set of PIDs owning at least one visible
// top-level window. Enumeration failure yields an empty set; the window
// heuristic then simply fires nothing this tick.
func windowOwnerPIDs() map[int32]struct{} {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumPIDs = make(map[int32]struct{})
	_ = windows.EnumWindows(enumWindowsProc, nil)

	pids := enumPIDs
	enumPIDs = nil
	return pids
}
