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
	"sort"

	"github.com/stormworks/drainpipe/core"
)

// RateFunc returns the hourly cost rate for a Float role.
type RateFunc func(role string) float64

// LabourCost aggregates Float scheduled tasks into per-job labour lines:
// hours summed by job reference and role, costed at the role's hourly rate.
// Output rows are ordered by job reference then role so repeated runs load
// identical tables.
func LabourCost(floatTasks core.Table, rate RateFunc) core.Table {
	type key struct{ job, role string }
	hours := make(map[key]float64)
	people := make(map[key]map[string]bool)

	for _, task := range floatTasks {
		k := key{
			job:  task.String("name"),
			role: task.String("role"),
		}
		hours[k] += task.Float("hours")
		if people[k] == nil {
			people[k] = make(map[string]bool)
		}
		if person := task.String("people_id"); person != "" {
			people[k][person] = true
		}
	}

	keys := make([]key, 0, len(hours))
	for k := range hours {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].job != keys[j].job {
			return keys[i].job < keys[j].job
		}
		return keys[i].role < keys[j].role
	})

	out := make(core.Table, 0, len(keys))
	for _, k := range keys {
		h := hours[k]
		out = append(out, core.Record{
			"job_ref":   k.job,
			"role":      k.role,
			"hours":     h,
			"rate":      rate(k.role),
			"cost":      h * rate(k.role),
			"headcount": len(people[k]),
		})
	}
	return out
}
