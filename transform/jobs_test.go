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

func TestBuildJobsSplitsReference(t *testing.T) {
	cards := core.Table{
		{"id": "c1", "name": "DR-1042 Clear culvert at Mill Rd", "closed": false},
	}

	jobs := BuildJobs(cards, nil)
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, "DR-1042", job.String("job_ref"))
	assert.Equal(t, "Clear culvert at Mill Rd", job.String("title"))
	assert.Equal(t, "c1", job.String("trello_id"))
	assert.Equal(t, false, job["unreferenced"])
}

func TestBuildJobsFlagsUnreferencedCards(t *testing.T) {
	cards := core.Table{
		{"id": "c1", "name": "call supplier about pipe liners"},
	}

	jobs := BuildJobs(cards, nil)
	require.Len(t, jobs, 1)
	assert.Equal(t, "", jobs[0].String("job_ref"))
	assert.Equal(t, "call supplier about pipe liners", jobs[0].String("title"))
	assert.Equal(t, true, jobs[0]["unreferenced"])
}

func TestBuildJobsOverlaysSheetFields(t *testing.T) {
	cards := core.Table{
		{"id": "c1", "name": "DR-1042 Clear culvert"},
		{"id": "c2", "name": "DR-9999 No sheet row"},
	}
	sheet := core.Table{
		{"job_ref": "dr-1042", "crew": "Alpha", "site_address": "12 Mill Rd", "agreed_price": "4200"},
	}

	jobs := BuildJobs(cards, sheet)
	require.Len(t, jobs, 2)

	matched := jobs[0]
	assert.Equal(t, "Alpha", matched.String("crew"))
	assert.Equal(t, "12 Mill Rd", matched.String("site_address"))
	assert.Equal(t, 4200.0, matched.Float("agreed_price"))

	unmatched := jobs[1]
	assert.NotContains(t, unmatched, "crew")
}

func TestBuildJobsClosedFlag(t *testing.T) {
	cards := core.Table{
		{"id": "c1", "name": "DR-1 a", "closed": true},
		{"id": "c2", "name": "DR-2 b", "closed": false},
		{"id": "c3", "name": "DR-3 c"},
	}

	jobs := BuildJobs(cards, nil)
	assert.Equal(t, true, jobs[0]["closed"])
	assert.Equal(t, false, jobs[1]["closed"])
	assert.Equal(t, false, jobs[2]["closed"])
}

func TestSplitJobRef(t *testing.T) {
	tests := []struct {
		name  string
		ref   string
		title string
	}{
		{"DR-1042 Clear culvert", "DR-1042", "Clear culvert"},
		{"dr-1042 lower case ref", "DR-1042", "lower case ref"},
		{"CCTV-7 survey", "CCTV-7", "survey"},
		{"DR-1042", "DR-1042", ""},
		{"Fix the van", "", "Fix the van"},
		{"D-1 too short a prefix", "", "D-1 too short a prefix"},
		{"DR- trailing dash", "", "DR- trailing dash"},
		{"DR-10a2 not numeric", "", "DR-10a2 not numeric"},
		{"  DR-7 padded  ", "DR-7", "padded"},
	}
	for _, tt := range tests {
		ref, title := splitJobRef(tt.name)
		assert.Equal(t, tt.ref, ref, "ref of %q", tt.name)
		assert.Equal(t, tt.title, title, "title of %q", tt.name)
	}
}
