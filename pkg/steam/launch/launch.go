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

// Package launch invokes the Steam URI handler to start a game. It is an
// external boundary: failures are surfaced immediately and never retried.
package launch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/emilwojcik93/SteamLibrarian/pkg/helpers/command"
	"github.com/rs/zerolog/log"
)

// Options configures launch behavior.
type Options struct {
	// Args are extra launch arguments passed through the run URI.
	Args []string
	// UseXdgOpen uses xdg-open instead of the direct steam command
	// (desktop-friendly; Linux only, ignored elsewhere).
	UseXdgOpen bool
}

// Launcher starts Steam games through the OS protocol handler.
type Launcher struct {
	cmd  command.Executor
	opts Options
}

// NewLauncher creates a Launcher with the real command executor.
func NewLauncher(opts Options) *Launcher {
	return &Launcher{opts: opts, cmd: &command.RealExecutor{}}
}

// NewLauncherWithExecutor creates a Launcher with a custom executor.
// This is useful for testing.
func NewLauncherWithExecutor(opts Options, cmd command.Executor) *Launcher {
	return &Launcher{opts: opts, cmd: cmd}
}

// BuildRunURL builds the Steam launch URI for an app. Extra arguments use
// the steam://run form; a plain launch uses steam://rungameid.
func BuildRunURL(appID int, args []string) string {
	id := strconv.Itoa(appID)
	if len(args) == 0 {
		return "steam://rungameid/" + id
	}
	return "steam://run/" + id + "//" + strings.Join(args, " ")
}

// Launch asks the OS to open the Steam run URI for appID. It returns as
// soon as the handler is invoked; confirming that the game actually
// started is the session detector's job.
func (l *Launcher) Launch(ctx context.Context, appID int) error {
	url := BuildRunURL(appID, l.opts.Args)
	log.Debug().Int("appID", appID).Str("url", url).Msg("launching Steam game")

	if err := l.launchURL(ctx, url); err != nil {
		return fmt.Errorf("failed to launch Steam: %w", err)
	}
	return nil
}
