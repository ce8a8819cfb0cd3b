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

package pipelines

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormworks/drainpipe/config"
	"github.com/stormworks/drainpipe/core"
	"github.com/stormworks/drainpipe/dag"
	"github.com/stormworks/drainpipe/warehouse"
)

func orderOf(t *testing.T, p *dag.Pipeline) map[string]int {
	t.Helper()
	order, err := p.ExecutionOrder()
	require.NoError(t, err)
	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	return pos
}

func TestFullPipelineValidates(t *testing.T) {
	p, err := NewFullPipeline()
	require.NoError(t, err)
	assert.Equal(t, PipelineFull, p.Name())
	assert.Equal(t, 12, p.Len())
}

func TestFullPipelineOrdering(t *testing.T) {
	p, err := NewFullPipeline()
	require.NoError(t, err)
	pos := orderOf(t, p)

	// Loads come after everything they persist.
	for _, extract := range []string{TaskExtractTrello, TaskExtractFloat, TaskExtractXero, TaskExtractSimpro, TaskExtractSheets} {
		assert.Less(t, pos[extract], pos[TaskLoadRaw], "%s before load_raw", extract)
	}
	assert.Less(t, pos[TaskExtractTrello], pos[TaskTransformJobs])
	assert.Less(t, pos[TaskTransformQuote], pos[TaskTransformCust])
	assert.Less(t, pos[TaskTransformJobs], pos[TaskTransformProj])
	for _, tr := range []string{TaskTransformJobs, TaskTransformQuote, TaskTransformCust, TaskTransformProj, TaskTransformLab} {
		assert.Less(t, pos[tr], pos[TaskLoadAnalytics], "%s before load_analytics", tr)
	}
}

func TestTransformsDoNotDependOnRawLoad(t *testing.T) {
	p, err := NewFullPipeline()
	require.NoError(t, err)

	// A warehouse outage during the raw load must not block analytics.
	for _, name := range []string{TaskTransformJobs, TaskTransformQuote, TaskTransformLab} {
		task, ok := p.Task(name)
		require.True(t, ok)
		assert.NotContains(t, task.DependsOn(), TaskLoadRaw)
	}
}

func TestExtractionPipelineScope(t *testing.T) {
	p, err := NewExtractionPipeline()
	require.NoError(t, err)
	assert.Equal(t, 6, p.Len())

	_, hasTransforms := p.Task(TaskTransformJobs)
	assert.False(t, hasTransforms)
}

func TestTransformPipelineScope(t *testing.T) {
	p, err := NewTransformPipeline()
	require.NoError(t, err)

	_, hasExtract := p.Task(TaskExtractTrello)
	assert.False(t, hasExtract)

	stage, ok := p.Task(TaskStageRaw)
	require.True(t, ok)
	assert.ElementsMatch(t, rawOutputs, stage.Produces())

	jobs, ok := p.Task(TaskTransformJobs)
	require.True(t, ok)
	assert.Equal(t, []string{TaskStageRaw}, jobs.DependsOn())
}

func TestNewUnknownPipeline(t *testing.T) {
	_, err := New("nightly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nightly")
}

func TestEveryTaskHasDescription(t *testing.T) {
	for _, name := range []string{PipelineFull, PipelineExtract, PipelineTransform} {
		p, err := New(name)
		require.NoError(t, err)
		for _, task := range p.Tasks() {
			assert.NotEmpty(t, task.Description(), "task %s in %s", task.Name(), name)
		}
	}
}

// TestTransformPipelineEndToEnd stages raw tables from a CSV warehouse,
// runs the business transforms, and checks the analytics tables landed.
func TestTransformPipelineEndToEnd(t *testing.T) {
	cfg := config.Default()
	cfg.CSV.Dir = t.TempDir()
	ctx := context.Background()

	store, err := warehouse.Open(ctx, cfg)
	require.NoError(t, err)

	seed := map[string]core.Table{
		OutTrelloCards: {
			{"id": "c1", "name": "DR-1042 Clear culvert at Mill Rd"},
			{"id": "c2", "name": "CCTV-7 Survey for council"},
		},
		OutFloatTasks: {
			{"name": "DR-1042", "role": "engineer", "hours": "8", "people_id": "p1"},
		},
		OutXeroQuotes: {
			{"QuoteNumber": "Q-100", "Status": "ACCEPTED", "Total": "4200"},
		},
		OutSimproQuote: {
			{"Name": "Q-200", "Status": "Sent", "Total": "1800"},
		},
		OutSheetJobs: {
			{"job_ref": "DR-1042", "crew": "Alpha", "site_address": "12 Mill Rd", "agreed_price": "4200"},
		},
	}
	for name, table := range seed {
		require.NoError(t, store.SaveTable(ctx, name, table))
	}
	require.NoError(t, store.Close())

	p, err := NewTransformPipeline()
	require.NoError(t, err)

	engine := dag.NewEngine(
		dag.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		dag.WithBackoffFactory(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	)
	report, err := engine.Execute(ctx, p, cfg)
	require.NoError(t, err)
	require.Equal(t, dag.RunSuccess, report.Status, report.Summary())

	store, err = warehouse.Open(ctx, cfg)
	require.NoError(t, err)
	defer store.Close()

	jobs, err := store.GetTable(ctx, OutJobs)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	quotes, err := store.GetTable(ctx, OutQuotes)
	require.NoError(t, err)
	assert.Len(t, quotes, 2)

	labour, err := store.GetTable(ctx, OutLabour)
	require.NoError(t, err)
	require.Len(t, labour, 1)
	assert.Equal(t, 8.0, labour[0].Float("hours"))
	assert.Equal(t, 8*65.0, labour[0].Float("cost"))

	projects, err := store.GetTable(ctx, OutProjects)
	require.NoError(t, err)
	assert.Len(t, projects, 2)
}

func TestLoadAnalyticsBlockedWithoutInputs(t *testing.T) {
	cfg := config.Default()
	cfg.CSV.Dir = t.TempDir()

	// Empty warehouse: staging fails, everything downstream is skipped.
	p, err := NewTransformPipeline()
	require.NoError(t, err)

	engine := dag.NewEngine(
		dag.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		dag.WithBackoffFactory(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	)
	report, err := engine.Execute(context.Background(), p, cfg)
	require.NoError(t, err)

	assert.Equal(t, dag.RunFailed, report.Status)
	stage, _ := report.Result(TaskStageRaw)
	assert.Equal(t, dag.TaskFailed, stage.Status)
	load, _ := report.Result(TaskLoadAnalytics)
	assert.Equal(t, dag.TaskSkipped, load.Status)
}
