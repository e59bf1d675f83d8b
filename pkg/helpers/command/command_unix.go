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

package command

import (
	"context"
	"os/exec"
)

// StartWithOptions starts a command on non-Windows platforms.
// StartOptions.HideWindow has no effect here.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) StartWithOptions(
	ctx context.Context,
	_ StartOptions,
	name string,
	args ...string,
) error {
	return exec.CommandContext(ctx, name, args...).Start()
}
