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
	"strings"

	"github.com/stormworks/drainpipe/core"
)

// BuildJobs maps Trello cards into the jobs table and overlays the fields
// the office maintains by hand in the jobs spreadsheet (crew, site address,
// agreed price), matched on job reference.
//
// A card title like "DR-1042 Clear culvert at Mill Rd" carries the job
// reference as its first token; cards without a reference are kept but
// flagged unreferenced so the dashboard can surface them for cleanup.
func BuildJobs(cards, sheetJobs core.Table) core.Table {
	overlay := make(map[string]core.Record, len(sheetJobs))
	for _, row := range sheetJobs {
		if ref := strings.ToUpper(row.String("job_ref")); ref != "" {
			overlay[ref] = row
		}
	}

	jobs := make(core.Table, 0, len(cards))
	for _, card := range cards {
		name := card.String("name")
		ref, title := splitJobRef(name)

		job := core.Record{
			"job_ref":       ref,
			"title":         title,
			"trello_id":     card.String("id"),
			"due":           card.String("due"),
			"last_activity": card.String("dateLastActivity"),
			"closed":        card["closed"] == true,
			"unreferenced":  ref == "",
		}
		if row, ok := overlay[ref]; ok {
			job["crew"] = row.String("crew")
			job["site_address"] = row.String("site_address")
			job["agreed_price"] = row.Float("agreed_price")
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// splitJobRef extracts a leading job reference of the form XX-NNNN from a
// card title.
func splitJobRef(name string) (ref, title string) {
	parts := strings.SplitN(strings.TrimSpace(name), " ", 2)
	head := strings.ToUpper(parts[0])
	if isJobRef(head) {
		if len(parts) == 2 {
			return head, strings.TrimSpace(parts[1])
		}
		return head, ""
	}
	return "", strings.TrimSpace(name)
}

func isJobRef(s string) bool {
	dash := strings.IndexByte(s, '-')
	if dash < 2 || dash == len(s)-1 {
		return false
	}
	for _, r := range s[:dash] {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	for _, r := range s[dash+1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
