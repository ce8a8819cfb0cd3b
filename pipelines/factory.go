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
	"fmt"

	"github.com/stormworks/drainpipe/dag"
)

// Pipeline names accepted by the CLI.
const (
	PipelineFull      = "full"
	PipelineExtract   = "extract"
	PipelineTransform = "transform"
)

func build(name string, tasks ...*dag.Task) (*dag.Pipeline, error) {
	p := dag.NewPipeline(name)
	for _, t := range tasks {
		if err := p.Add(t); err != nil {
			return nil, err
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewFullPipeline builds extract, load raw, transform and load analytics
// end to end. Transforms feed straight from the extraction outputs, so a
// failed raw load never blocks analytics.
func NewFullPipeline() (*dag.Pipeline, error) {
	return build(PipelineFull,
		newExtractTrello(),
		newExtractFloat(),
		newExtractXero(),
		newExtractSimpro(),
		newExtractSheets(),
		newLoadRaw(),
		newTransformJobs(TaskExtractTrello, TaskExtractSheets),
		newTransformQuotes(TaskExtractXero, TaskExtractSimpro),
		newTransformCustomers(),
		newTransformProjects(),
		newTransformLabour(TaskExtractFloat),
		newLoadAnalytics(),
	)
}

// NewExtractionPipeline pulls from every source and loads raw tables only.
func NewExtractionPipeline() (*dag.Pipeline, error) {
	return build(PipelineExtract,
		newExtractTrello(),
		newExtractFloat(),
		newExtractXero(),
		newExtractSimpro(),
		newExtractSheets(),
		newLoadRaw(),
	)
}

// NewTransformPipeline stages raw tables from the warehouse and reruns the
// business transforms without touching any source system.
func NewTransformPipeline() (*dag.Pipeline, error) {
	return build(PipelineTransform,
		newStageRaw(),
		newTransformJobs(TaskStageRaw),
		newTransformQuotes(TaskStageRaw),
		newTransformCustomers(),
		newTransformProjects(),
		newTransformLabour(TaskStageRaw),
		newLoadAnalytics(),
	)
}

// New returns the named pipeline.
func New(name string) (*dag.Pipeline, error) {
	switch name {
	case PipelineFull:
		return NewFullPipeline()
	case PipelineExtract:
		return NewExtractionPipeline()
	case PipelineTransform:
		return NewTransformPipeline()
	default:
		return nil, fmt.Errorf("pipelines: unknown pipeline %q", name)
	}
}
