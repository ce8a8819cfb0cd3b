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

package dag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(name string, opts ...TaskOption) *Task {
	return NewTask(name,
		func(ctx context.Context, in Values, cfg interface{}) (Values, error) {
			return Values{}, nil
		},
		opts...,
	)
}

func mustAdd(t *testing.T, p *Pipeline, tasks ...*Task) {
	t.Helper()
	for _, task := range tasks {
		require.NoError(t, p.Add(task))
	}
}

func TestAddRejectsDuplicateName(t *testing.T) {
	p := NewPipeline("test")
	require.NoError(t, p.Add(noop("extract")))

	err := p.Add(noop("extract"))
	require.Error(t, err)

	var dup *DuplicateTaskError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "extract", dup.Task)
	assert.Equal(t, 1, p.Len())
}

func TestValidateUnknownDependency(t *testing.T) {
	p := NewPipeline("test")
	mustAdd(t, p, noop("load", DependsOn("extract")))

	err := p.Validate()
	var unknown *UnknownDependencyError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "load", unknown.Task)
	assert.Equal(t, "extract", unknown.Dependency)
}

func TestValidateDuplicateOutput(t *testing.T) {
	p := NewPipeline("test")
	mustAdd(t, p,
		noop("a", Produces("rows")),
		noop("b", Produces("rows")),
	)

	err := p.Validate()
	var dup *DuplicateOutputError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "rows", dup.Output)
	assert.Equal(t, "a", dup.First)
	assert.Equal(t, "b", dup.Second)
}

func TestValidateCycle(t *testing.T) {
	p := NewPipeline("test")
	mustAdd(t, p,
		noop("a", DependsOn("c")),
		noop("b", DependsOn("a")),
		noop("c", DependsOn("b")),
	)

	err := p.Validate()
	var cyclic *CyclicDependencyError
	require.ErrorAs(t, err, &cyclic)
	assert.Contains(t, []string{"a", "b", "c"}, cyclic.Task)
}

func TestValidateSelfDependency(t *testing.T) {
	p := NewPipeline("test")
	mustAdd(t, p, noop("a", DependsOn("a")))

	var cyclic *CyclicDependencyError
	require.ErrorAs(t, p.Validate(), &cyclic)
	assert.Equal(t, "a", cyclic.Task)
}

func TestValidateAcceptsDiamond(t *testing.T) {
	p := NewPipeline("test")
	mustAdd(t, p,
		noop("a"),
		noop("b", DependsOn("a")),
		noop("c", DependsOn("a")),
		noop("d", DependsOn("b", "c")),
	)
	assert.NoError(t, p.Validate())
}

func TestExecutionOrderRespectsDependencies(t *testing.T) {
	p := NewPipeline("test")
	mustAdd(t, p,
		noop("d", DependsOn("b", "c")),
		noop("b", DependsOn("a")),
		noop("c", DependsOn("a")),
		noop("a"),
	)

	order, err := p.ExecutionOrder()
	require.NoError(t, err)

	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	assert.Less(t, pos["a"], pos["b"])
	assert.Less(t, pos["a"], pos["c"])
	assert.Less(t, pos["b"], pos["d"])
	assert.Less(t, pos["c"], pos["d"])
}

func TestExecutionOrderBreaksTiesByRegistration(t *testing.T) {
	p := NewPipeline("test")
	// b and c are both ready once a has run; b registered first.
	mustAdd(t, p,
		noop("a"),
		noop("b", DependsOn("a")),
		noop("c", DependsOn("a")),
	)

	order, err := p.ExecutionOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestExecutionOrderIsStable(t *testing.T) {
	p := NewPipeline("test")
	mustAdd(t, p,
		noop("e"),
		noop("a"),
		noop("c", DependsOn("a", "e")),
		noop("b", DependsOn("a")),
		noop("d", DependsOn("c", "b")),
	)

	first, err := p.ExecutionOrder()
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := p.ExecutionOrder()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestExecutionOrderReportsCycle(t *testing.T) {
	p := NewPipeline("test")
	mustAdd(t, p,
		noop("a", DependsOn("b")),
		noop("b", DependsOn("a")),
	)

	_, err := p.ExecutionOrder()
	var cyclic *CyclicDependencyError
	require.ErrorAs(t, err, &cyclic)
}

func TestDependents(t *testing.T) {
	p := NewPipeline("test")
	mustAdd(t, p,
		noop("a"),
		noop("b", DependsOn("a")),
		noop("c", DependsOn("a")),
		noop("d", DependsOn("b")),
	)

	assert.Equal(t, []string{"b", "c"}, p.Dependents("a"))
	assert.Equal(t, []string{"d"}, p.Dependents("b"))
	assert.Empty(t, p.Dependents("d"))
}

func TestTaskAccessorsReturnCopies(t *testing.T) {
	task := noop("a", DependsOn("x", "y"), Produces("out"))

	deps := task.DependsOn()
	deps[0] = "mutated"
	assert.Equal(t, []string{"x", "y"}, task.DependsOn())

	outs := task.Produces()
	outs[0] = "mutated"
	assert.Equal(t, []string{"out"}, task.Produces())
}
