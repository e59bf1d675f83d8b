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
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// runPollLoop runs fn immediately and then once per interval until fn
// returns true or ctx is cancelled. All suspension happens between
// ticks; fn itself is never interrupted. Cancellation is checked once
// per tick and returns ctx.Err().
//
// Both the detector and the monitor are built on this loop.
func runPollLoop(
	ctx context.Context,
	clock clockwork.Clock,
	interval time.Duration,
	fn func(now time.Time) bool,
) error {
	for {
		if fn(clock.Now()) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(interval):
		}
	}
}
