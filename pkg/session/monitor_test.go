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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuerier scripts per-PID liveness and usage readings. Sequences are
// consumed one entry per call with the last entry repeated; a PID with no
// usage script errors on every Usage call.
type fakeQuerier struct {
	mu         sync.Mutex
	alive      map[int32][]bool
	aliveCalls map[int32]int
	usage      map[int32][]ProcessUsage
	usageCalls map[int32]int
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{
		alive:      map[int32][]bool{},
		aliveCalls: map[int32]int{},
		usage:      map[int32][]ProcessUsage{},
		usageCalls: map[int32]int{},
	}
}

func (q *fakeQuerier) Alive(pid int32) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	seq := q.alive[pid]
	if len(seq) == 0 {
		return false
	}
	idx := q.aliveCalls[pid]
	q.aliveCalls[pid]++
	if idx >= len(seq) {
		idx = len(seq) - 1
	}
	return seq[idx]
}

func (q *fakeQuerier) Usage(pid int32) (ProcessUsage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	seq := q.usage[pid]
	if len(seq) == 0 {
		return ProcessUsage{}, errors.New("no such process")
	}
	idx := q.usageCalls[pid]
	q.usageCalls[pid]++
	if idx >= len(seq) {
		idx = len(seq) - 1
	}
	return seq[idx], nil
}

// clearingFlags reports the run flag as set until a given call index.
type clearingFlags struct {
	mu      sync.Mutex
	calls   int
	clearAt int
}

func (f *clearingFlags) IsRunningFlagSet(int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.calls
	f.calls++
	return call < f.clearAt
}

// fakeObserver records every emitted usage snapshot.
type fakeObserver struct {
	mu    sync.Mutex
	snaps []UsageSnapshot
}

func (o *fakeObserver) UsageSnapshot(snap UsageSnapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.snaps = append(o.snaps, snap)
}

func (o *fakeObserver) snapshots() []UsageSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]UsageSnapshot, len(o.snaps))
	copy(out, o.snaps)
	return out
}

type monitorResult struct {
	sum Summary
	err error
}

func startMonitor(ctx context.Context, m *Monitor, result DetectionResult) <-chan monitorResult {
	done := make(chan monitorResult, 1)
	go func() {
		sum, err := m.MonitorUntilExit(ctx, result)
		done <- monitorResult{sum: sum, err: err}
	}()
	return done
}

func processTracked(pids ...int32) DetectionResult {
	return DetectionResult{
		State:       StateRunning,
		Signal:      SignalKnownExecutable,
		AppID:       2277550,
		MatchedPIDs: pids,
	}
}

func flagTracked() DetectionResult {
	return DetectionResult{
		State:  StateRunning,
		Signal: SignalRegistryFlag,
		AppID:  2277550,
	}
}

func TestMonitorUntilExit_ProcessTracked(t *testing.T) {
	t.Parallel()

	q := newFakeQuerier()
	q.alive[4242] = []bool{true, true, false}
	q.usage[4242] = []ProcessUsage{
		{Name: "Expeditions.exe", WorkingSetBytes: 100 << 20, CPUTime: 2 * time.Second},
		{Name: "Expeditions.exe", WorkingSetBytes: 300 << 20, CPUTime: 7 * time.Second},
		{Name: "Expeditions.exe", WorkingSetBytes: 150 << 20, CPUTime: 9 * time.Second},
	}

	fc := clockwork.NewFakeClock()
	m := NewMonitor(q, neverSet(), MonitorOptions{
		Clock:        fc,
		PollInterval: 5 * time.Second,
	})

	done := startMonitor(context.Background(), m, processTracked(4242))
	advanceTicks(t, fc, 2, 5*time.Second)

	got := <-done
	require.NoError(t, got.err)
	assert.NotEqual(t, uuid.Nil, got.sum.SessionID)
	assert.Equal(t, 2277550, got.sum.AppID)
	assert.Equal(t, 10*time.Second, got.sum.Duration)

	require.Len(t, got.sum.Processes, 1)
	p := got.sum.Processes[0]
	assert.Equal(t, int32(4242), p.PID)
	assert.Equal(t, "Expeditions.exe", p.Name)
	assert.Equal(t, uint64(300<<20), p.PeakWorkingSetBytes, "peak holds across later lower readings")
	assert.Equal(t, 9*time.Second, p.CPUTime)
	assert.Equal(t, 5*time.Second, p.Runtime, "runtime ends at last tick the process was seen")
	assert.False(t, p.Partial)
}

func TestMonitorUntilExit_AlreadyExitedReturnsImmediately(t *testing.T) {
	t.Parallel()

	q := newFakeQuerier()
	q.alive[4242] = []bool{false}

	m := NewMonitor(q, neverSet(), MonitorOptions{
		Clock:        clockwork.NewFakeClock(),
		PollInterval: 5 * time.Second,
	})

	// No clock advancement: the first tick must already observe the exit.
	sum, err := m.MonitorUntilExit(context.Background(), processTracked(4242))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), sum.Duration)

	require.Len(t, sum.Processes, 1)
	assert.True(t, sum.Processes[0].Partial, "stats were never readable")
	assert.Equal(t, time.Duration(0), sum.Processes[0].Runtime)
}

func TestMonitorUntilExit_AnySurvivingProcessKeepsSession(t *testing.T) {
	t.Parallel()

	// Two matched PIDs; one dies early, the session lasts until both are
	// gone.
	q := newFakeQuerier()
	q.alive[10] = []bool{true, false}
	q.alive[11] = []bool{true, true, true, false}

	fc := clockwork.NewFakeClock()
	m := NewMonitor(q, neverSet(), MonitorOptions{
		Clock:        fc,
		PollInterval: 5 * time.Second,
	})

	done := startMonitor(context.Background(), m, processTracked(10, 11))
	advanceTicks(t, fc, 3, 5*time.Second)

	got := <-done
	require.NoError(t, got.err)
	assert.Equal(t, 15*time.Second, got.sum.Duration)
	assert.Len(t, got.sum.Processes, 2)
}

func TestMonitorUntilExit_FlagTracked(t *testing.T) {
	t.Parallel()

	fc := clockwork.NewFakeClock()
	m := NewMonitor(newFakeQuerier(), &clearingFlags{clearAt: 2}, MonitorOptions{
		Clock:        fc,
		PollInterval: 5 * time.Second,
	})

	done := startMonitor(context.Background(), m, flagTracked())
	advanceTicks(t, fc, 2, 5*time.Second)

	got := <-done
	require.NoError(t, got.err)
	assert.Equal(t, 10*time.Second, got.sum.Duration)
	assert.Empty(t, got.sum.Processes, "flag tracking names no processes")
}

func TestMonitorUntilExit_FlagAlreadyClear(t *testing.T) {
	t.Parallel()

	m := NewMonitor(newFakeQuerier(), &clearingFlags{clearAt: 0}, MonitorOptions{
		Clock:        clockwork.NewFakeClock(),
		PollInterval: 5 * time.Second,
	})

	sum, err := m.MonitorUntilExit(context.Background(), flagTracked())
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), sum.Duration)
}

func TestMonitorUntilExit_EmitsPeriodicSnapshots(t *testing.T) {
	t.Parallel()

	q := newFakeQuerier()
	q.alive[4242] = []bool{true, true, true, true, true, false}
	q.usage[4242] = []ProcessUsage{
		{Name: "Expeditions.exe", WorkingSetBytes: 200 << 20, CPUTime: time.Second},
	}

	obs := &fakeObserver{}
	fc := clockwork.NewFakeClock()
	m := NewMonitor(q, neverSet(), MonitorOptions{
		Clock:            fc,
		Observer:         obs,
		PollInterval:     5 * time.Second,
		SnapshotInterval: 10 * time.Second,
	})

	done := startMonitor(context.Background(), m, processTracked(4242))
	advanceTicks(t, fc, 5, 5*time.Second)

	got := <-done
	require.NoError(t, got.err)

	snaps := obs.snapshots()
	require.Len(t, snaps, 2, "one snapshot per elapsed snapshot interval while running")
	assert.Equal(t, 10*time.Second, snaps[0].Elapsed)
	assert.Equal(t, 20*time.Second, snaps[1].Elapsed)
	for _, snap := range snaps {
		assert.Equal(t, got.sum.SessionID, snap.SessionID)
		assert.Equal(t, 2277550, snap.AppID)
		require.Len(t, snap.Processes, 1)
		assert.Equal(t, "Expeditions.exe", snap.Processes[0].Name)
	}
}

func TestMonitorUntilExit_CancellationReturnsPartialSummary(t *testing.T) {
	t.Parallel()

	q := newFakeQuerier()
	q.alive[4242] = []bool{true}
	q.usage[4242] = []ProcessUsage{
		{Name: "Expeditions.exe", WorkingSetBytes: 64 << 20},
	}

	fc := clockwork.NewFakeClock()
	m := NewMonitor(q, neverSet(), MonitorOptions{
		Clock:        fc,
		PollInterval: 5 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := startMonitor(ctx, m, processTracked(4242))

	fc.BlockUntil(1)
	cancel()

	got := <-done
	require.ErrorIs(t, got.err, context.Canceled)
	require.Len(t, got.sum.Processes, 1)
	assert.Equal(t, "Expeditions.exe", got.sum.Processes[0].Name)
	assert.Equal(t, uint64(64<<20), got.sum.Processes[0].PeakWorkingSetBytes)
}
