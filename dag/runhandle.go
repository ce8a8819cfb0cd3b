//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Stormworks Group
//
// This file is part of Drainpipe.
//
// Drainpipe is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Drainpipe is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Drainpipe. If not, see https://www.gnu.org/licenses/.

// runhandle.go - Live progress handle for the current run
package dag

import (
	"sync"
	"time"
)

// RunHandle is the process-wide view of the run currently executing on an
// Engine. It is created when Execute begins, updated as each task completes,
// and finalized when the report is sealed. Callers (a GUI feed, a status
// endpoint) poll it via Snapshot; they never receive the engine's own
// mutable state.
type RunHandle struct {
	mu       sync.RWMutex
	runID    string
	pipeline string
	started  time.Time
	running  bool
	current  string
	statuses map[string]TaskStatus
}

// RunSnapshot is a point-in-time copy of the run's progress.
type RunSnapshot struct {
	RunID    string
	Pipeline string
	Started  time.Time
	Running  bool
	Current  string
	Statuses map[string]TaskStatus
}

// Snapshot returns a copy of the current progress. Safe for concurrent use.
func (h *RunHandle) Snapshot() RunSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	statuses := make(map[string]TaskStatus, len(h.statuses))
	for k, v := range h.statuses {
		statuses[k] = v
	}
	return RunSnapshot{
		RunID:    h.runID,
		Pipeline: h.pipeline,
		Started:  h.started,
		Running:  h.running,
		Current:  h.current,
		Statuses: statuses,
	}
}

// Running reports whether a run is currently in flight.
func (h *RunHandle) Running() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

func (h *RunHandle) begin(runID, pipeline string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return false
	}
	h.runID = runID
	h.pipeline = pipeline
	h.started = time.Now()
	h.running = true
	h.current = ""
	h.statuses = make(map[string]TaskStatus)
	return true
}

func (h *RunHandle) taskStarted(name string) {
	h.mu.Lock()
	h.current = name
	h.mu.Unlock()
}

func (h *RunHandle) taskDone(name string, status TaskStatus) {
	h.mu.Lock()
	h.statuses[name] = status
	h.current = ""
	h.mu.Unlock()
}

func (h *RunHandle) finish() {
	h.mu.Lock()
	h.running = false
	h.current = ""
	h.mu.Unlock()
}
