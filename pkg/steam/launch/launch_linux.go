//go:build linux

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

import "context"

// launchURL opens a steam:// URI with xdg-open (desktop, works for
// native and Flatpak Steam) or the direct steam command (Game Mode).
func (l *Launcher) launchURL(ctx context.Context, url string) error {
	cmdName := "steam"
	if l.opts.UseXdgOpen {
		cmdName = "xdg-open"
	}
	return l.cmd.Start(ctx, cmdName, url)
}
