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

package launch

import (
	"context"

	"github.com/emilwojcik93/SteamLibrarian/pkg/helpers/command"
)

// launchURL opens a steam:// URI through the shell. The empty title
// argument keeps `start` from treating the quoted URL as a window title.
func (l *Launcher) launchURL(ctx context.Context, url string) error {
	return l.cmd.StartWithOptions(
		ctx,
		command.StartOptions{HideWindow: true},
		"cmd", "/c", "start", "", url,
	)
}
