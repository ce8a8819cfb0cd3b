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

package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormworks/drainpipe/core"
)

func TestBuildProjectsRollsUpByCode(t *testing.T) {
	jobs := core.Table{
		{"job_ref": "DR-1042", "closed": false, "agreed_price": 4200.0},
		{"job_ref": "DR-1043", "closed": true, "agreed_price": 1800.0},
		{"job_ref": "CCTV-7", "closed": false, "agreed_price": 950.0},
	}

	projects := BuildProjects(jobs)
	require.Len(t, projects, 2)

	cctv := projects[0]
	assert.Equal(t, "CCTV", cctv.String("project_code"))
	assert.Equal(t, 1, cctv["job_count"])

	dr := projects[1]
	assert.Equal(t, "DR", dr.String("project_code"))
	assert.Equal(t, 2, dr["job_count"])
	assert.Equal(t, 1, dr["open_jobs"])
	assert.Equal(t, 6000.0, dr.Float("agreed_value"))
}

func TestBuildProjectsIgnoresUnreferencedJobs(t *testing.T) {
	jobs := core.Table{
		{"job_ref": "", "closed": false},
		{"job_ref": "DR-1", "closed": false},
	}
	projects := BuildProjects(jobs)
	require.Len(t, projects, 1)
	assert.Equal(t, "DR", projects[0].String("project_code"))
}

func TestBuildProjectsMissingClosedCountsOpen(t *testing.T) {
	jobs := core.Table{
		{"job_ref": "DR-1"},
	}
	projects := BuildProjects(jobs)
	require.Len(t, projects, 1)
	assert.Equal(t, 1, projects[0]["open_jobs"])
}
