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

// errors.go - Validation and execution error types
package dag

import (
	"errors"
	"fmt"
)

// Validation errors are returned before any task executes: they represent a
// programming error in pipeline assembly, not a runtime data failure, and
// are the only errors Execute propagates to the caller.

// ErrRunInProgress is returned by Execute when the engine's current run has
// not yet finished.
var ErrRunInProgress = errors.New("dag: a run is already in progress")

// DuplicateTaskError indicates two tasks were registered under the same name.
type DuplicateTaskError struct {
	Task string
}

func (e *DuplicateTaskError) Error() string {
	return fmt.Sprintf("dag: duplicate task %q", e.Task)
}

// UnknownDependencyError indicates a task depends on a name not present in
// the pipeline.
type UnknownDependencyError struct {
	Task       string
	Dependency string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("dag: task %q depends on unknown task %q", e.Task, e.Dependency)
}

// CyclicDependencyError indicates the dependency relation contains a cycle.
// Task names one task on the cycle.
type CyclicDependencyError struct {
	Task string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("dag: dependency cycle through task %q", e.Task)
}

// DuplicateOutputError indicates two tasks both declare the same output
// name. Outputs must be uniquely attributable to one producer because the
// execution context is a flat mapping.
type DuplicateOutputError struct {
	Output string
	First  string
	Second string
}

func (e *DuplicateOutputError) Error() string {
	return fmt.Sprintf("dag: output %q declared by both %q and %q", e.Output, e.First, e.Second)
}

// MissingOutputError indicates a task returned successfully but omitted one
// of its declared outputs. Recorded as a task failure, never propagated.
type MissingOutputError struct {
	Task   string
	Output string
}

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("dag: task %q did not return declared output %q", e.Task, e.Output)
}
