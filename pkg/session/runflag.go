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
	"strconv"
	"strings"

	"github.com/andygrunwald/vdf"
)

// VDFRunFlag reads Steam's run state from a registry.vdf file. This is
// the non-Windows analog of the Windows registry flag: Steam mirrors
// RunningAppID and per-app Running values into the file. Any read or
// parse failure means "flag not set", never an error.
type VDFRunFlag struct {
	// Path is the location of registry.vdf.
	Path string
}

var _ RunFlagChecker = (*VDFRunFlag)(nil)

// IsRunningFlagSet reports whether the file asserts appID is running,
// either via the global RunningAppID or the per-app Running value.
func (v *VDFRunFlag) IsRunningFlagSet(appID int) bool {
	f, err := os.Open(v.Path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	m, err := vdf.NewParser(f).Parse()
	if err != nil {
		return false
	}
	steam, ok := vdfDig(m, "registry", "hkcu", "software", "valve", "steam")
	if !ok {
		return false
	}

	if raw, ok := steam["runningappid"].(string); ok {
		if id, err := strconv.Atoi(raw); err == nil && id == appID {
			return true
		}
	}

	app, ok := vdfDig(steam, "apps", strconv.Itoa(appID))
	if !ok {
		return false
	}
	running, _ := app["running"].(string)
	return running == "1"
}

// vdfDig descends a parsed VDF tree through the given keys,
// case-insensitively.
func vdfDig(m map[string]any, keys ...string) (map[string]any, bool) {
	cur := m
	for _, key := range keys {
		var next map[string]any
		found := false
		for k, v := range cur {
			if strings.EqualFold(k, key) {
				next, found = v.(map[string]any)
				break
			}
		}
		if !found {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
