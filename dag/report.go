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

// report.go - Execution report and per-task results
package dag

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the outcome of a single task within a run.
type TaskStatus string

const (
	// TaskSuccess means the task's callable returned without error and all
	// declared outputs were merged into the execution context.
	TaskSuccess TaskStatus = "success"
	// TaskFailed means the callable returned an error (or panicked) after
	// exhausting any configured retries.
	TaskFailed TaskStatus = "failed"
	// TaskSkipped means the task was never executed because an upstream
	// dependency did not complete successfully. Skips propagate forward
	// through the graph.
	TaskSkipped TaskStatus = "skipped"
)

// RunStatus is the aggregate outcome of a pipeline run.
type RunStatus string

const (
	// RunSuccess means every task succeeded.
	RunSuccess RunStatus = "success"
	// RunFailed means at least one task failed and no task produced output:
	// the run delivered nothing.
	RunFailed RunStatus = "failed"
	// RunPartial means the run had failures or collateral skips but at
	// least one branch completed, so some outputs were delivered.
	RunPartial RunStatus = "partial"
)

// Exit codes for CLI wrappers, so automated schedulers can distinguish
// "nothing ran" from "some things ran, some didn't".
const (
	ExitSuccess = 0
	ExitFailed  = 1
	ExitPartial = 2
)

// TaskResult records the outcome of one task attempt within a run.
type TaskResult struct {
	Name      string        `json:"name"`
	Status    TaskStatus    `json:"status"`
	StartTime time.Time     `json:"start_time,omitempty"`
	EndTime   time.Time     `json:"end_time,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Attempts  int           `json:"attempts,omitempty"`
	// Error holds the failure message; ErrorType the Go type of the error;
	// Stack a truncated stack summary when the callable panicked.
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
	Stack     string `json:"stack,omitempty"`
	// BlockedBy names the upstream task whose outcome caused a skip.
	BlockedBy string `json:"blocked_by,omitempty"`
}

// Report is the immutable result of one pipeline run: per-task results in
// execution order plus the final accumulated execution context. Exactly one
// report is produced per call to Execute.
type Report struct {
	RunID     string       `json:"run_id"`
	Pipeline  string       `json:"pipeline"`
	Status    RunStatus    `json:"status"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Results   []TaskResult `json:"results"`
	Context   Values       `json:"-"`
}

// Result returns the result recorded for a task name.
func (r *Report) Result(name string) (TaskResult, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return TaskResult{}, false
}

// Counts returns the number of succeeded, failed, and skipped tasks.
func (r *Report) Counts() (succeeded, failed, skipped int) {
	for _, res := range r.Results {
		switch res.Status {
		case TaskSuccess:
			succeeded++
		case TaskFailed:
			failed++
		case TaskSkipped:
			skipped++
		}
	}
	return
}

// ExitCode maps the run status to a conventional process exit code.
func (r *Report) ExitCode() int {
	switch r.Status {
	case RunSuccess:
		return ExitSuccess
	case RunPartial:
		return ExitPartial
	default:
		return ExitFailed
	}
}

// Summary renders a human-readable per-task table suitable for a CLI or a
// log feed. Machine consumers should marshal the Report itself.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s pipeline=%s status=%s elapsed=%s\n",
		r.RunID, r.Pipeline, r.Status, r.EndTime.Sub(r.StartTime).Round(time.Millisecond))
	for _, res := range r.Results {
		switch res.Status {
		case TaskSkipped:
			fmt.Fprintf(&b, "  %-28s %-8s blocked by %s\n", res.Name, res.Status, res.BlockedBy)
		case TaskFailed:
			fmt.Fprintf(&b, "  %-28s %-8s %s: %s\n", res.Name, res.Status, res.ErrorType, res.Error)
		default:
			fmt.Fprintf(&b, "  %-28s %-8s %s\n", res.Name, res.Status, res.Duration.Round(time.Millisecond))
		}
	}
	return b.String()
}

// finalize seals the report: sets the end time and derives the run status
// from the per-task results.
func (r *Report) finalize() {
	r.EndTime = time.Now()
	succeeded, failed, skipped := r.Counts()
	switch {
	case failed == 0 && skipped == 0:
		r.Status = RunSuccess
	case succeeded == 0:
		r.Status = RunFailed
	default:
		r.Status = RunPartial
	}
}
