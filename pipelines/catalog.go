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

// Package pipelines assembles the named pipelines the CLI runs from a
// static catalog of tasks. Each factory selects tasks explicitly; adding a
// task to the catalog never changes a pipeline that does not name it.
package pipelines

import (
	"context"
	"fmt"

	"github.com/stormworks/drainpipe/config"
	"github.com/stormworks/drainpipe/core"
	"github.com/stormworks/drainpipe/dag"
	"github.com/stormworks/drainpipe/extract"
	"github.com/stormworks/drainpipe/transform"
	"github.com/stormworks/drainpipe/validate"
	"github.com/stormworks/drainpipe/warehouse"
)

// Task names. Dependencies in the factories refer to these.
const (
	TaskExtractTrello  = "extract_trello_cards"
	TaskExtractFloat   = "extract_float_tasks"
	TaskExtractXero    = "extract_xero_quotes"
	TaskExtractSimpro  = "extract_simpro_quotes"
	TaskExtractSheets  = "extract_sheet_jobs"
	TaskLoadRaw        = "load_raw"
	TaskStageRaw       = "stage_raw"
	TaskTransformJobs  = "transform_jobs"
	TaskTransformQuote = "transform_quotes"
	TaskTransformCust  = "transform_customers"
	TaskTransformProj  = "transform_projects"
	TaskTransformLab   = "transform_labour"
	TaskLoadAnalytics  = "load_analytics"
)

// Context output names. Raw table names double as warehouse table names.
const (
	OutTrelloCards = "raw_trello_cards"
	OutFloatTasks  = "raw_float_tasks"
	OutXeroQuotes  = "raw_xero_quotes"
	OutSimproQuote = "raw_simpro_quotes"
	OutSheetJobs   = "raw_sheet_jobs"
	OutRawLoaded   = "raw_loaded"
	OutJobs        = "jobs"
	OutQuotes      = "quotes"
	OutCustomers   = "customers"
	OutProjects    = "projects"
	OutLabour      = "labour"
	OutAnalytics   = "analytics_loaded"
)

var rawOutputs = []string{OutTrelloCards, OutFloatTasks, OutXeroQuotes, OutSimproQuote, OutSheetJobs}

var analyticsRules = map[string]validate.TableRules{
	OutJobs:      {RequiredFields: []string{"title", "trello_id"}},
	OutQuotes:    {RequiredFields: []string{"quote_number", "status"}},
	OutCustomers: {RequiredFields: []string{"customer_id", "name"}},
	OutProjects:  {RequiredFields: []string{"project_code"}},
	OutLabour:    {RequiredFields: []string{"job_ref", "hours"}},
}

func runConfig(cfg interface{}) (*config.Config, error) {
	c, ok := cfg.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("pipelines: expected *config.Config, got %T", cfg)
	}
	return c, nil
}

func tableInput(in dag.Values, key string) (core.Table, error) {
	t, ok := in[key].(core.Table)
	if !ok {
		return nil, fmt.Errorf("pipelines: input %q is not a table", key)
	}
	return t, nil
}

// extractTask wraps a fetch function as a retryable extraction task
// producing a single raw table.
func extractTask(name, description, output string, fetch func(ctx context.Context, cfg *config.Config) (core.Table, error)) *dag.Task {
	return dag.NewTask(name,
		func(ctx context.Context, in dag.Values, cfg interface{}) (dag.Values, error) {
			c, err := runConfig(cfg)
			if err != nil {
				return nil, err
			}
			table, err := fetch(ctx, c)
			if err != nil {
				return nil, err
			}
			return dag.Values{output: table}, nil
		},
		dag.WithDescription(description),
		dag.Produces(output),
		dag.WithRetries(2),
	)
}

func newExtractTrello() *dag.Task {
	return extractTask(TaskExtractTrello, "Pull cards from the jobs board in Trello", OutTrelloCards,
		func(ctx context.Context, c *config.Config) (core.Table, error) {
			return extract.FetchTrelloCards(ctx, c.Trello)
		})
}

func newExtractFloat() *dag.Task {
	return extractTask(TaskExtractFloat, "Pull scheduled tasks from Float", OutFloatTasks,
		func(ctx context.Context, c *config.Config) (core.Table, error) {
			return extract.FetchFloatTasks(ctx, c.Float)
		})
}

func newExtractXero() *dag.Task {
	return extractTask(TaskExtractXero, "Pull quotes from Xero", OutXeroQuotes,
		func(ctx context.Context, c *config.Config) (core.Table, error) {
			return extract.FetchXeroQuotes(ctx, c.Xero)
		})
}

func newExtractSimpro() *dag.Task {
	return extractTask(TaskExtractSimpro, "Pull quotes from Simpro", OutSimproQuote,
		func(ctx context.Context, c *config.Config) (core.Table, error) {
			return extract.FetchSimproQuotes(ctx, c.Simpro)
		})
}

func newExtractSheets() *dag.Task {
	return extractTask(TaskExtractSheets, "Pull the hand-maintained jobs sheet", OutSheetJobs,
		func(ctx context.Context, c *config.Config) (core.Table, error) {
			return extract.FetchSheetJobs(ctx, c.Sheets)
		})
}

// newLoadRaw persists every raw table to the configured warehouse under
// its context output name.
func newLoadRaw() *dag.Task {
	return dag.NewTask(TaskLoadRaw,
		func(ctx context.Context, in dag.Values, cfg interface{}) (dag.Values, error) {
			c, err := runConfig(cfg)
			if err != nil {
				return nil, err
			}
			store, err := warehouse.Open(ctx, c)
			if err != nil {
				return nil, err
			}
			defer store.Close()

			loaded := 0
			for _, name := range rawOutputs {
				table, err := tableInput(in, name)
				if err != nil {
					return nil, err
				}
				if err := store.SaveTable(ctx, name, table); err != nil {
					return nil, err
				}
				loaded++
			}
			return dag.Values{OutRawLoaded: loaded}, nil
		},
		dag.WithDescription("Persist raw source tables to the warehouse"),
		dag.DependsOn(TaskExtractTrello, TaskExtractFloat, TaskExtractXero, TaskExtractSimpro, TaskExtractSheets),
		dag.Produces(OutRawLoaded),
	)
}

// newStageRaw reads previously loaded raw tables back from the warehouse,
// producing the same outputs the extraction tasks would. It lets the
// transform-only pipeline rerun business rules without touching the source
// systems.
func newStageRaw() *dag.Task {
	return dag.NewTask(TaskStageRaw,
		func(ctx context.Context, in dag.Values, cfg interface{}) (dag.Values, error) {
			c, err := runConfig(cfg)
			if err != nil {
				return nil, err
			}
			store, err := warehouse.Open(ctx, c)
			if err != nil {
				return nil, err
			}
			defer store.Close()

			out := make(dag.Values, len(rawOutputs))
			for _, name := range rawOutputs {
				table, err := store.GetTable(ctx, name)
				if err != nil {
					return nil, err
				}
				out[name] = table
			}
			return out, nil
		},
		dag.WithDescription("Stage raw tables from the warehouse"),
		dag.Produces(rawOutputs...),
	)
}

// transformTask wraps a pure table transform. deps name the tasks whose
// outputs feed it; in the full pipeline those are extraction tasks, in the
// transform-only pipeline the staging task.
func transformTask(name, description string, deps []string, output string, fn func(c *config.Config, in dag.Values) (core.Table, error)) *dag.Task {
	return dag.NewTask(name,
		func(ctx context.Context, in dag.Values, cfg interface{}) (dag.Values, error) {
			c, err := runConfig(cfg)
			if err != nil {
				return nil, err
			}
			table, err := fn(c, in)
			if err != nil {
				return nil, err
			}
			return dag.Values{output: table}, nil
		},
		dag.WithDescription(description),
		dag.DependsOn(deps...),
		dag.Produces(output),
	)
}

func newTransformJobs(deps ...string) *dag.Task {
	return transformTask(TaskTransformJobs, "Build the jobs table from Trello and the jobs sheet", deps, OutJobs,
		func(c *config.Config, in dag.Values) (core.Table, error) {
			cards, err := tableInput(in, OutTrelloCards)
			if err != nil {
				return nil, err
			}
			sheet, err := tableInput(in, OutSheetJobs)
			if err != nil {
				return nil, err
			}
			return transform.BuildJobs(cards, sheet), nil
		})
}

func newTransformQuotes(deps ...string) *dag.Task {
	return transformTask(TaskTransformQuote, "Merge Xero and Simpro quotes", deps, OutQuotes,
		func(c *config.Config, in dag.Values) (core.Table, error) {
			xero, err := tableInput(in, OutXeroQuotes)
			if err != nil {
				return nil, err
			}
			simpro, err := tableInput(in, OutSimproQuote)
			if err != nil {
				return nil, err
			}
			return transform.MergeQuotes(xero, simpro), nil
		})
}

func newTransformCustomers() *dag.Task {
	return transformTask(TaskTransformCust, "Derive the customer dimension from quotes",
		[]string{TaskTransformQuote}, OutCustomers,
		func(c *config.Config, in dag.Values) (core.Table, error) {
			quotes, err := tableInput(in, OutQuotes)
			if err != nil {
				return nil, err
			}
			return transform.BuildCustomers(quotes), nil
		})
}

func newTransformProjects() *dag.Task {
	return transformTask(TaskTransformProj, "Roll jobs up into projects",
		[]string{TaskTransformJobs}, OutProjects,
		func(c *config.Config, in dag.Values) (core.Table, error) {
			jobs, err := tableInput(in, OutJobs)
			if err != nil {
				return nil, err
			}
			return transform.BuildProjects(jobs), nil
		})
}

func newTransformLabour(deps ...string) *dag.Task {
	return transformTask(TaskTransformLab, "Cost scheduled labour from Float", deps, OutLabour,
		func(c *config.Config, in dag.Values) (core.Table, error) {
			tasks, err := tableInput(in, OutFloatTasks)
			if err != nil {
				return nil, err
			}
			return transform.LabourCost(tasks, c.Rate), nil
		})
}

// newLoadAnalytics validates (when enabled) and persists the analytics
// tables.
func newLoadAnalytics() *dag.Task {
	return dag.NewTask(TaskLoadAnalytics,
		func(ctx context.Context, in dag.Values, cfg interface{}) (dag.Values, error) {
			c, err := runConfig(cfg)
			if err != nil {
				return nil, err
			}
			store, err := warehouse.Open(ctx, c)
			if err != nil {
				return nil, err
			}
			defer store.Close()

			loaded := 0
			for _, name := range []string{OutJobs, OutQuotes, OutCustomers, OutProjects, OutLabour} {
				table, err := tableInput(in, name)
				if err != nil {
					return nil, err
				}
				if c.ValidateTables {
					if err := validate.Check(ctx, name, table, analyticsRules[name], core.FailFast); err != nil {
						return nil, err
					}
				}
				if err := store.SaveTable(ctx, name, table); err != nil {
					return nil, err
				}
				loaded++
			}
			return dag.Values{OutAnalytics: loaded}, nil
		},
		dag.WithDescription("Validate and persist analytics tables"),
		dag.DependsOn(TaskTransformJobs, TaskTransformQuote, TaskTransformCust, TaskTransformProj, TaskTransformLab),
		dag.Produces(OutAnalytics),
	)
}
