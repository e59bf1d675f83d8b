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
	"path/filepath"
	"strings"
	"time"

	"github.com/emilwojcik93/SteamLibrarian/pkg/steam/candidates"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultDetectTimeout bounds how long DetectStart waits for any
	// signal before giving up.
	DefaultDetectTimeout = 30 * time.Second
	// DefaultDetectInterval is the pause between detection ticks.
	DefaultDetectInterval = time.Second
)

// DefaultWindowDenyList filters processes that own windows but are never
// the game itself: Steam and its helpers, crash reporters, updaters and
// installers. Patterns match the lowercased executable name stem.
var DefaultWindowDenyList = []string{
	"steam",
	"steamwebhelper",
	"steamerrorreporter*",
	"gameoverlayui*",
	"*crashhandler*",
	"*crashreport*",
	"*crashpad*",
	"*helper*",
	"*updater*",
	"*setup*",
	"*install*",
}

// DetectorOptions configures a Detector. Zero values use defaults.
type DetectorOptions struct {
	Clock          clockwork.Clock
	WindowDenyList []string
	Timeout        time.Duration
	PollInterval   time.Duration
}

// Detector decides when a launched game has actually started. Signals
// are evaluated synchronously within one tick, in strict priority order:
// registry flag, then known executable match, then window heuristic.
type Detector struct {
	procs    ProcessLister
	flags    RunFlagChecker
	clock    clockwork.Clock
	denyList []string
	timeout  time.Duration
	interval time.Duration
}

// NewDetector creates a Detector over the given process and run-flag
// sources.
func NewDetector(procs ProcessLister, flags RunFlagChecker, opts DetectorOptions) *Detector {
	d := &Detector{
		procs:    procs,
		flags:    flags,
		clock:    opts.Clock,
		denyList: opts.WindowDenyList,
		timeout:  opts.Timeout,
		interval: opts.PollInterval,
	}
	if d.clock == nil {
		d.clock = clockwork.NewRealClock()
	}
	if d.denyList == nil {
		d.denyList = DefaultWindowDenyList
	}
	if d.timeout <= 0 {
		d.timeout = DefaultDetectTimeout
	}
	if d.interval <= 0 {
		d.interval = DefaultDetectInterval
	}
	return d
}

// DetectStart blocks until a signal confirms the game for appID has
// started, the timeout passes, or ctx is cancelled.
//
// initial must be a process snapshot captured immediately before the
// launch was requested; it is what separates the game's new processes
// from pre-existing ones and keeps stale windows from matching.
//
// A timeout is not an error: the result carries StateTimedOut and the
// caller decides whether to proceed without confirmed detection. Only
// context cancellation returns a non-nil error.
func (d *Detector) DetectStart(
	ctx context.Context,
	appID int,
	cands []candidates.Candidate,
	initial []ProcessSnapshot,
) (DetectionResult, error) {
	initialPIDs := make(map[int32]struct{}, len(initial))
	for _, p := range initial {
		initialPIDs[p.PID] = struct{}{}
	}

	stems := make([]string, 0, len(cands))
	for _, c := range cands {
		stems = append(stems, nameStem(filepath.Base(c.Path)))
	}

	result := DetectionResult{
		State:  StateAwaitingStart,
		Signal: SignalNone,
		AppID:  appID,
	}
	start := d.clock.Now()
	deadline := start.Add(d.timeout)

	log.Debug().Int("appID", appID).Int("candidates", len(cands)).
		Dur("timeout", d.timeout).Msg("awaiting game start")

	err := runPollLoop(ctx, d.clock, d.interval, func(now time.Time) bool {
		if d.flags.IsRunningFlagSet(appID) {
			result.State = StateRunning
			result.Signal = SignalRegistryFlag
			result.Elapsed = now.Sub(start)
			return true
		}

		snap, err := d.procs.Snapshot()
		if err != nil {
			// Transient query failure: nothing observed this tick.
			log.Debug().Err(err).Msg("process snapshot failed, skipping tick")
		} else {
			if pid, ok := matchKnownExecutable(stems, snap, initialPIDs); ok {
				result.State = StateRunning
				result.Signal = SignalKnownExecutable
				result.MatchedPIDs = []int32{pid}
				result.Elapsed = now.Sub(start)
				return true
			}
			if pid, ok := d.matchWindowHeuristic(snap, initialPIDs); ok {
				result.State = StateRunning
				result.Signal = SignalWindowHeuristic
				result.MatchedPIDs = []int32{pid}
				result.Elapsed = now.Sub(start)
				return true
			}
		}

		if !now.Before(deadline) {
			result.State = StateTimedOut
			result.Elapsed = now.Sub(start)
			return true
		}
		return false
	})
	if err != nil {
		result.Elapsed = d.clock.Now().Sub(start)
		return result, err
	}

	switch result.State {
	case StateTimedOut:
		log.Warn().Int("appID", appID).Dur("elapsed", result.Elapsed).
			Msg("no start signal before timeout")
	default:
		log.Info().Int("appID", appID).Stringer("signal", result.Signal).
			Ints32("pids", result.MatchedPIDs).Dur("elapsed", result.Elapsed).
			Msg("detected game start")
	}
	return result, nil
}

// matchKnownExecutable looks for a new process whose name stem matches a
// candidate, trying candidates in rank order. Ties within one candidate
// fall to process-table order.
func matchKnownExecutable(
	stems []string,
	snap []ProcessSnapshot,
	initialPIDs map[int32]struct{},
) (int32, bool) {
	for _, stem := range stems {
		if stem == "" {
			continue
		}
		for _, p := range snap {
			if _, preexisting := initialPIDs[p.PID]; preexisting {
				continue
			}
			if nameStem(p.Name) == stem {
				return p.PID, true
			}
		}
	}
	return 0, false
}

// matchWindowHeuristic accepts any new window-owning process whose name
// is not deny-listed. Weakest signal, evaluated last.
func (d *Detector) matchWindowHeuristic(
	snap []ProcessSnapshot,
	initialPIDs map[int32]struct{},
) (int32, bool) {
	for _, p := range snap {
		if _, preexisting := initialPIDs[p.PID]; preexisting {
			continue
		}
		if !p.HasWindow {
			continue
		}
		if matchesDenyList(d.denyList, nameStem(p.Name)) {
			continue
		}
		return p.PID, true
	}
	return 0, false
}

// nameStem lowercases a process or file name and strips its extension.
func nameStem(name string) string {
	name = strings.ToLower(name)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// matchesDenyList reports whether stem matches any deny pattern.
func matchesDenyList(patterns []string, stem string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, stem); err == nil && ok {
			return true
		}
	}
	return false
}
