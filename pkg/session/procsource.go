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
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcSource reads the OS process table via gopsutil. It implements
// both ProcessLister and ProcessQuerier.
type ProcSource struct{}

var (
	_ ProcessLister  = (*ProcSource)(nil)
	_ ProcessQuerier = (*ProcSource)(nil)
)

// NewProcSource creates the production process source.
func NewProcSource() *ProcSource {
	return &ProcSource{}
}

// Snapshot enumerates the process table. A process that disappears or
// denies access between enumeration and detail reads is omitted rather
// than failing the snapshot.
func (*ProcSource) Snapshot() ([]ProcessSnapshot, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("error enumerating processes: %w", err)
	}

	winPIDs := windowOwnerPIDs()

	out := make([]ProcessSnapshot, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}

		snap := ProcessSnapshot{
			PID:  p.Pid,
			Name: name,
		}
		if exe, err := p.Exe(); err == nil {
			snap.Path = exe
		}
		if createMs, err := p.CreateTime(); err == nil {
			snap.StartTime = time.UnixMilli(createMs)
		}
		if mi, err := p.MemoryInfo(); err == nil && mi != nil {
			snap.WorkingSetBytes = mi.RSS
		}
		if _, ok := winPIDs[p.Pid]; ok {
			snap.HasWindow = true
		}

		out = append(out, snap)
	}
	return out, nil
}

// Alive reports whether pid resolves to a running process. Query
// failures count as not alive.
func (*ProcSource) Alive(pid int32) bool {
	p, err := process.NewProcess(pid)
	if err != nil {
		return false
	}
	running, err := p.IsRunning()
	if err != nil {
		return false
	}
	return running
}

// Usage reads best-effort stats for one process. Fields that cannot be
// read are left zero; only a failure to resolve the PID is an error.
func (*ProcSource) Usage(pid int32) (ProcessUsage, error) {
	p, err := process.NewProcess(pid)
	if err != nil {
		return ProcessUsage{}, fmt.Errorf("error resolving pid %d: %w", pid, err)
	}

	var usage ProcessUsage
	if name, err := p.Name(); err == nil {
		usage.Name = name
	}
	if createMs, err := p.CreateTime(); err == nil {
		usage.StartTime = time.UnixMilli(createMs)
	}
	if mi, err := p.MemoryInfo(); err == nil && mi != nil {
		usage.WorkingSetBytes = mi.RSS
	}
	if times, err := p.Times(); err == nil && times != nil {
		usage.CPUTime = time.Duration((times.User + times.System) * float64(time.Second))
	}
	return usage, nil
}
