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
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mackerelio/go-osstat/memory"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultMonitorInterval is the pause between exit-check ticks.
	DefaultMonitorInterval = 5 * time.Second
	// DefaultSnapshotInterval is how often usage snapshots are emitted.
	DefaultSnapshotInterval = 30 * time.Second
)

// MonitorOptions configures a Monitor. Zero values use defaults.
type MonitorOptions struct {
	Clock            clockwork.Clock
	Observer         Observer
	PollInterval     time.Duration
	SnapshotInterval time.Duration
}

// Monitor polls a detected session until it ends. A process-tracked
// session (detection matched specific PIDs) ends when none of the
// tracked PIDs resolve; a flag-tracked session (registry signal only)
// ends when the run flag clears. There is no built-in deadline (no
// signal means keep waiting), but cancellation via ctx is honored on
// every tick.
type Monitor struct {
	procs         ProcessQuerier
	flags         RunFlagChecker
	clock         clockwork.Clock
	observer      Observer
	interval      time.Duration
	snapshotEvery time.Duration
}

// NewMonitor creates a Monitor over the given process and run-flag
// sources.
func NewMonitor(procs ProcessQuerier, flags RunFlagChecker, opts MonitorOptions) *Monitor {
	m := &Monitor{
		procs:         procs,
		flags:         flags,
		clock:         opts.Clock,
		observer:      opts.Observer,
		interval:      opts.PollInterval,
		snapshotEvery: opts.SnapshotInterval,
	}
	if m.clock == nil {
		m.clock = clockwork.NewRealClock()
	}
	if m.observer == nil {
		m.observer = &LogObserver{}
	}
	if m.interval <= 0 {
		m.interval = DefaultMonitorInterval
	}
	if m.snapshotEvery <= 0 {
		m.snapshotEvery = DefaultSnapshotInterval
	}
	return m
}

// trackedProc accumulates best-effort stats for one tracked PID across
// monitoring ticks.
type trackedProc struct {
	startTime time.Time
	lastSeen  time.Time
	name      string
	peakRSS   uint64
	cpuTime   time.Duration
	sawStats  bool
}

// MonitorUntilExit blocks until the session from result ends, returning
// a best-effort usage summary. Re-invoking after the session has already
// ended returns immediately: the first tick observes nothing tracked
// still resolves. On cancellation the partial summary is returned along
// with ctx.Err().
func (m *Monitor) MonitorUntilExit(ctx context.Context, result DetectionResult) (Summary, error) {
	sessionID := uuid.New()
	start := m.clock.Now()
	flagTracked := len(result.MatchedPIDs) == 0

	tracked := make(map[int32]*trackedProc, len(result.MatchedPIDs))
	for _, pid := range result.MatchedPIDs {
		tracked[pid] = &trackedProc{startTime: start, lastSeen: start}
	}

	log.Info().Stringer("sessionID", sessionID).Int("appID", result.AppID).
		Bool("flagTracked", flagTracked).Ints32("pids", result.MatchedPIDs).
		Msg("monitoring session until exit")

	lastSnapshot := start
	err := runPollLoop(ctx, m.clock, m.interval, func(now time.Time) bool {
		var ended bool
		if flagTracked {
			ended = !m.flags.IsRunningFlagSet(result.AppID)
		} else {
			anyAlive := false
			for pid, tp := range tracked {
				if !m.procs.Alive(pid) {
					continue
				}
				anyAlive = true
				tp.lastSeen = now
				m.collectUsage(pid, tp)
			}
			ended = !anyAlive
		}
		if ended {
			return true
		}

		if now.Sub(lastSnapshot) >= m.snapshotEvery {
			lastSnapshot = now
			m.emitSnapshot(sessionID, result.AppID, now.Sub(start), now, tracked)
		}
		return false
	})

	summary := m.buildSummary(sessionID, result.AppID, start, tracked)
	if err != nil {
		log.Warn().Err(err).Stringer("sessionID", sessionID).Msg("monitoring cancelled")
		return summary, err
	}

	log.Info().Stringer("sessionID", sessionID).Int("appID", result.AppID).
		Dur("duration", summary.Duration).Msg("session ended")
	return summary, nil
}

// collectUsage folds a fresh usage reading into the tracked record.
// Failures are swallowed: stats are observability, not exit detection.
func (m *Monitor) collectUsage(pid int32, tp *trackedProc) {
	usage, err := m.procs.Usage(pid)
	if err != nil {
		log.Debug().Err(err).Int32("pid", pid).Msg("failed to read process usage")
		return
	}
	if usage.Name != "" {
		tp.name = usage.Name
	}
	if !usage.StartTime.IsZero() {
		tp.startTime = usage.StartTime
	}
	if usage.WorkingSetBytes > tp.peakRSS {
		tp.peakRSS = usage.WorkingSetBytes
	}
	if usage.CPUTime > tp.cpuTime {
		tp.cpuTime = usage.CPUTime
	}
	tp.sawStats = true
}

// emitSnapshot sends a periodic usage report to the observer. All stat
// collection here is best-effort; nothing can fail the monitor loop.
func (m *Monitor) emitSnapshot(
	sessionID uuid.UUID,
	appID int,
	elapsed time.Duration,
	now time.Time,
	tracked map[int32]*trackedProc,
) {
	snap := UsageSnapshot{
		SessionID: sessionID,
		AppID:     appID,
		Elapsed:   elapsed,
	}

	for pid, tp := range tracked {
		snap.Processes = append(snap.Processes, ProcessStats{
			Name:                tp.name,
			PID:                 pid,
			Runtime:             now.Sub(tp.startTime),
			PeakWorkingSetBytes: tp.peakRSS,
			CPUTime:             tp.cpuTime,
			Partial:             !tp.sawStats,
		})
	}

	if stats, err := memory.Get(); err == nil && stats != nil {
		snap.SystemMemoryTotalBytes = stats.Total
		snap.SystemMemoryUsedBytes = stats.Total - stats.Free
	}

	m.observer.UsageSnapshot(snap)
}

// buildSummary assembles final per-process statistics. A process whose
// stats were never readable still gets a record, marked Partial.
func (m *Monitor) buildSummary(
	sessionID uuid.UUID,
	appID int,
	start time.Time,
	tracked map[int32]*trackedProc,
) Summary {
	summary := Summary{
		SessionID: sessionID,
		AppID:     appID,
		Duration:  m.clock.Since(start),
	}

	for pid, tp := range tracked {
		// One last read in case the process outlived the final tick.
		m.collectUsage(pid, tp)

		summary.Processes = append(summary.Processes, ProcessStats{
			Name:                tp.name,
			PID:                 pid,
			Runtime:             tp.lastSeen.Sub(tp.startTime),
			PeakWorkingSetBytes: tp.peakRSS,
			CPUTime:             tp.cpuTime,
			Partial:             !tp.sawStats,
		})
	}
	return summary
}

// LogObserver writes usage snapshots to the structured log. It is the
// default observability side-channel.
type LogObserver struct{}

var _ Observer = (*LogObserver)(nil)

// UsageSnapshot logs one periodic usage report.
func (*LogObserver) UsageSnapshot(snap UsageSnapshot) {
	evt := log.Info().Stringer("sessionID", snap.SessionID).
		Int("appID", snap.AppID).
		Dur("elapsed", snap.Elapsed)
	if snap.SystemMemoryTotalBytes > 0 {
		evt = evt.Uint64("sysMemUsed", snap.SystemMemoryUsedBytes).
			Uint64("sysMemTotal", snap.SystemMemoryTotalBytes)
	}
	for i, p := range snap.Processes {
		evt = evt.Dict(fmt.Sprintf("proc%d", i), zerolog.Dict().
			Str("name", p.Name).
			Int32("pid", p.PID).
			Dur("runtime", p.Runtime).
			Uint64("peakRSS", p.PeakWorkingSetBytes).
			Dur("cpuTime", p.CPUTime))
	}
	evt.Msg("session usage snapshot")
}
