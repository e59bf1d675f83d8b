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

// Package session decides when a launched Steam game has actually started
// and when it has exited. No single OS signal is trustworthy on its own,
// so detection races a prioritized set of signals inside a polling loop,
// and monitoring polls the winning signal until it clears.
package session

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of one monitored session.
type State int

const (
	StateIdle State = iota
	StateAwaitingStart
	StateRunning
	StateExited
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingStart:
		return "awaiting-start"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateTimedOut:
		return "timed-out"
	default:
		return "unknown"
	}
}

// Signal identifies which detection method confirmed a session start.
type Signal int

const (
	SignalNone Signal = iota
	// SignalRegistryFlag is Steam's own per-app running indicator.
	SignalRegistryFlag
	// SignalKnownExecutable is a ranked candidate binary appearing as a
	// new process.
	SignalKnownExecutable
	// SignalWindowHeuristic is any plausible new process owning a window.
	SignalWindowHeuristic
)

func (s Signal) String() string {
	switch s {
	case SignalRegistryFlag:
		return "registry-flag"
	case SignalKnownExecutable:
		return "known-executable"
	case SignalWindowHeuristic:
		return "window-heuristic"
	default:
		return "none"
	}
}

// ProcessSnapshot is a read-only point-in-time observation of one entry
// in the OS process table.
type ProcessSnapshot struct {
	StartTime       time.Time
	Name            string
	Path            string
	WorkingSetBytes uint64
	PID             int32
	HasWindow       bool
}

// ProcessUsage is a best-effort usage reading for one process.
type ProcessUsage struct {
	StartTime       time.Time
	Name            string
	WorkingSetBytes uint64
	CPUTime         time.Duration
}

// ProcessLister captures a snapshot of the whole process table.
type ProcessLister interface {
	// Snapshot reads the current process table. Individual entries that
	// fail to read are omitted; only a failure to enumerate at all is an
	// error, and callers treat that as "nothing observed this tick".
	Snapshot() ([]ProcessSnapshot, error)
}

// ProcessQuerier resolves and reads individual processes by PID.
type ProcessQuerier interface {
	// Alive reports whether pid currently resolves to a running process.
	// Any query failure is reported as not alive, never an error.
	Alive(pid int32) bool
	// Usage reads best-effort stats for pid.
	Usage(pid int32) (ProcessUsage, error)
}

// RunFlagChecker reads the external per-app "running" indicator.
// Unavailability of the backing store is equivalent to false.
type RunFlagChecker interface {
	IsRunningFlagSet(appID int) bool
}

// DetectionResult is the outcome of DetectStart.
type DetectionResult struct {
	// MatchedPIDs are the processes captured by the winning signal.
	// Empty for SignalRegistryFlag, which identifies no specific process.
	MatchedPIDs []int32
	State       State
	Signal      Signal
	AppID       int
	Elapsed     time.Duration
}

// ProcessStats is the per-process portion of a session summary.
type ProcessStats struct {
	Name                string
	PID                 int32
	Runtime             time.Duration
	PeakWorkingSetBytes uint64
	CPUTime             time.Duration
	// Partial marks a record whose final stats could not be fully read.
	Partial bool
}

// Summary describes one completed session.
type Summary struct {
	SessionID uuid.UUID
	Processes []ProcessStats
	AppID     int
	Duration  time.Duration
}

// UsageSnapshot is the periodic, non-authoritative usage report emitted
// while a session is being monitored.
type UsageSnapshot struct {
	SessionID              uuid.UUID
	Processes              []ProcessStats
	AppID                  int
	Elapsed                time.Duration
	SystemMemoryUsedBytes  uint64
	SystemMemoryTotalBytes uint64
}

// Observer receives periodic usage snapshots from the monitor.
type Observer interface {
	UsageSnapshot(snap UsageSnapshot)
}
