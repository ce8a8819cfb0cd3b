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

// executor.go - Sequential DAG execution engine
package dag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// Engine turns a validated Pipeline into a deterministic, dependency-
// respecting execution. Tasks run sequentially in topological order; the
// engine recovers from every task-level failure (catch, record, continue)
// and only propagates validation errors to the caller.
//
// The engine deliberately runs one task at a time even where the graph
// would permit parallelism: the pipelines it serves are a handful of
// I/O-bound tasks run a few times a day, and sequential execution keeps the
// execution context free of concurrent mutation.
type Engine struct {
	logger     *slog.Logger
	newBackoff func() backoff.BackOff
	run        *RunHandle
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger used during execution.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithBackoffFactory sets the strategy used to space retry attempts for
// tasks configured with retries. The factory is invoked once per task.
func WithBackoffFactory(factory func() backoff.BackOff) EngineOption {
	return func(e *Engine) {
		if factory != nil {
			e.newBackoff = factory
		}
	}
}

// NewEngine creates an execution engine. By default it logs JSON to stderr
// and spaces retries with exponential backoff.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: slog.New(slog.NewJSONHandler(os.Stderr, nil)),
		newBackoff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		run: &RunHandle{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CurrentRun returns the engine's run handle. The handle is long-lived;
// callers poll Snapshot on it to observe progress of the run in flight.
func (e *Engine) CurrentRun() *RunHandle { return e.run }

// Execute validates the pipeline and runs every task in topological order,
// threading outputs forward through a fresh execution context. Each call
// produces one independent Report; task definitions carry no execution
// state, so the same Pipeline may be executed repeatedly.
//
// A failed task never aborts the run: its transitive dependents are marked
// skipped and unrelated branches still execute. Execute returns an error
// only for an invalid pipeline definition or when a run is already in
// flight on this engine.
func (e *Engine) Execute(ctx context.Context, p *Pipeline, cfg interface{}) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	order, err := p.ExecutionOrder()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	if !e.run.begin(runID, p.Name()) {
		return nil, ErrRunInProgress
	}
	defer e.run.finish()

	report := &Report{
		RunID:     runID,
		Pipeline:  p.Name(),
		StartTime: time.Now(),
		Context:   make(Values),
	}
	statuses := make(map[string]TaskStatus, len(order))
	logger := e.logger.With("run_id", runID, "pipeline", p.Name())
	logger.Info("run started", "tasks", len(order))

	for _, name := range order {
		task, _ := p.Task(name)
		e.run.taskStarted(name)
		result := e.runTask(ctx, p, task, statuses, report.Context, cfg, logger)
		statuses[name] = result.Status
		report.Results = append(report.Results, result)
		e.run.taskDone(name, result.Status)
	}

	report.finalize()
	succeeded, failed, skipped := report.Counts()
	logger.Info("run finished",
		"status", report.Status,
		"succeeded", succeeded,
		"failed", failed,
		"skipped", skipped,
	)
	return report, nil
}

// runTask attempts a single task: skip when an upstream outcome blocks it,
// otherwise invoke the callable (with retries) and merge its declared
// outputs into the shared context.
func (e *Engine) runTask(ctx context.Context, p *Pipeline, task *Task, statuses map[string]TaskStatus, shared Values, cfg interface{}, logger *slog.Logger) TaskResult {
	name := task.Name()

	// A dependency that failed or was itself skipped blocks this task.
	// Skips therefore propagate through the whole downstream subgraph.
	for _, dep := range task.dependsOn {
		if statuses[dep] != TaskSuccess {
			logger.Warn("task skipped", "task", name, "blocked_by", dep)
			return TaskResult{Name: name, Status: TaskSkipped, BlockedBy: dep}
		}
	}

	// Assemble the input subset: exactly the outputs the declared
	// dependencies produced. A missing key means a producer broke its
	// contract; fail fast rather than hand the callable a partial view.
	input := make(Values)
	for _, dep := range task.dependsOn {
		producer, _ := p.Task(dep)
		for _, key := range producer.produces {
			val, ok := shared[key]
			if !ok {
				err := &MissingOutputError{Task: dep, Output: key}
				logger.Error("task failed", "task", name, "error", err)
				return TaskResult{
					Name:      name,
					Status:    TaskFailed,
					Error:     err.Error(),
					ErrorType: fmt.Sprintf("%T", err),
				}
			}
			input[key] = val
		}
	}

	start := time.Now()
	attempts := 0
	var out Values
	var stack string

	operation := func() error {
		attempts++
		var err error
		out, stack, err = invoke(ctx, task, input, cfg)
		return err
	}
	err := backoff.Retry(operation, backoff.WithMaxRetries(e.newBackoff(), uint64(task.maxRetries)))
	end := time.Now()

	if err != nil {
		logger.Error("task failed", "task", name, "attempts", attempts, "error", err)
		return TaskResult{
			Name:      name,
			Status:    TaskFailed,
			StartTime: start,
			EndTime:   end,
			Duration:  end.Sub(start),
			Attempts:  attempts,
			Error:     err.Error(),
			ErrorType: errorType(err, stack),
			Stack:     stack,
		}
	}

	// Merge only the declared outputs; every one of them must be present.
	for _, key := range task.produces {
		val, ok := out[key]
		if !ok {
			missing := &MissingOutputError{Task: name, Output: key}
			logger.Error("task failed", "task", name, "error", missing)
			return TaskResult{
				Name:      name,
				Status:    TaskFailed,
				StartTime: start,
				EndTime:   end,
				Duration:  end.Sub(start),
				Attempts:  attempts,
				Error:     missing.Error(),
				ErrorType: fmt.Sprintf("%T", missing),
			}
		}
		shared[key] = val
	}

	logger.Info("task succeeded", "task", name, "duration", end.Sub(start))
	return TaskResult{
		Name:      name,
		Status:    TaskSuccess,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Attempts:  attempts,
	}
}

// invoke calls the task function, converting a panic into an error with a
// truncated stack summary so one faulty task cannot take down the run.
func invoke(ctx context.Context, task *Task, input Values, cfg interface{}) (out Values, stack string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			stack = truncateStack(debug.Stack())
		}
	}()
	out, err = task.fn(ctx, input.Clone(), cfg)
	return
}

func errorType(err error, stack string) string {
	if stack != "" {
		return "panic"
	}
	return fmt.Sprintf("%T", err)
}

// truncateStack keeps the top frames of a stack trace; enough to diagnose,
// small enough to serialize into a report.
func truncateStack(stack []byte) string {
	const maxLines = 16
	lines := strings.SplitN(string(stack), "\n", maxLines+1)
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines = append(lines, "...")
	}
	return strings.Join(lines, "\n")
}
