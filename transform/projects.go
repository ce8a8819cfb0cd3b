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
	"strings"

	"github.com/stormworks/drainpipe/core"
)

// BuildProjects rolls jobs up into projects. Jobs share a project when
// their references share a prefix code (the part before the dash), e.g.
// DR-1042 and DR-1043 both belong to the DR drainage programme.
func BuildProjects(jobs core.Table) core.Table {
	type agg struct {
		jobs       int
		open       int
		totalPrice float64
	}
	byCode := make(map[string]*agg)

	for _, job := range jobs {
		ref := job.String("job_ref")
		if ref == "" {
			continue
		}
		code := ref
		if dash := strings.IndexByte(ref, '-'); dash > 0 {
			code = ref[:dash]
		}
		a, ok := byCode[code]
		if !ok {
			a = &agg{}
			byCode[code] = a
		}
		a.jobs++
		if job["closed"] != true {
			a.open++
		}
		a.totalPrice += job.Float("agreed_price")
	}

	codes := make([]string, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make(core.Table, 0, len(codes))
	for _, code := range codes {
		a := byCode[code]
		out = append(out, core.Record{
			"project_code": code,
			"job_count":    a.jobs,
			"open_jobs":    a.open,
			"agreed_value": a.totalPrice,
		})
	}
	return out
}
