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

// task.go - Task definition and functional options
package dag

import "context"

// Values is the execution context currency: a flat mapping from output name
// to the value a task produced under that name. The engine only moves these
// values between tasks and never inspects them.
type Values map[string]interface{}

// Clone returns a shallow copy of the values map.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// TaskFunc is the callable a Task wraps. It receives the outputs of the
// task's declared dependencies and an opaque configuration object owned by
// the caller, and returns a mapping that must contain every output the task
// declares via Produces.
type TaskFunc func(ctx context.Context, in Values, cfg interface{}) (Values, error)

// Task is a named unit of work with declared inputs and outputs. Tasks are
// immutable once constructed; execution state lives in the engine's Report,
// never on the task itself, so a task definition is reusable across runs.
type Task struct {
	name        string
	description string
	fn          TaskFunc
	dependsOn   []string
	produces    []string
	maxRetries  int
}

// TaskOption is a functional option for configuring tasks.
type TaskOption func(*Task)

// WithDescription sets the human-readable description for a task.
func WithDescription(description string) TaskOption {
	return func(t *Task) {
		t.description = description
	}
}

// DependsOn declares the tasks whose outputs this task's callable requires.
func DependsOn(names ...string) TaskOption {
	return func(t *Task) {
		t.dependsOn = append(t.dependsOn, names...)
	}
}

// Produces declares the named outputs this task contributes to the
// execution context.
func Produces(names ...string) TaskOption {
	return func(t *Task) {
		t.produces = append(t.produces, names...)
	}
}

// WithRetries sets the number of additional attempts made after a failed
// execution before the failure is recorded. Defaults to zero.
func WithRetries(maxRetries int) TaskOption {
	return func(t *Task) {
		if maxRetries > 0 {
			t.maxRetries = maxRetries
		}
	}
}

// NewTask builds an immutable task definition.
func NewTask(name string, fn TaskFunc, opts ...TaskOption) *Task {
	t := &Task{
		name: name,
		fn:   fn,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the task's unique name.
func (t *Task) Name() string { return t.name }

// Description returns the task's human-readable description.
func (t *Task) Description() string { return t.description }

// DependsOn returns a copy of the task's declared dependencies.
func (t *Task) DependsOn() []string {
	return append([]string(nil), t.dependsOn...)
}

// Produces returns a copy of the task's declared output names.
func (t *Task) Produces() []string {
	return append([]string(nil), t.produces...)
}

// MaxRetries returns the number of retry attempts configured for the task.
func (t *Task) MaxRetries() int { return t.maxRetries }
